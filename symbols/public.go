// Copyright 2024 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package symbols

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// PublicEntry is one line of a public symbol list.
type PublicEntry struct {
	Visibility Visibility
	Type       ResourceType
	Name       string
}

func (e PublicEntry) String() string {
	return fmt.Sprintf("%s %s %s", e.Visibility, e.Type, e.Name)
}

// PublicList returns one entry per symbol owned by table, sorted by type and name.  If public is
// nil every symbol is public, otherwise only the symbols public declares are.  Maybe-declared
// attrs are left out unless public confirms them.
func PublicList(table *Table, public *Table) []PublicEntry {
	var ret []PublicEntry
	for _, s := range table.Symbols() {
		listed := public != nil && public.Contains(s.Type, s.Name)
		if s.Type == Attr && s.MaybeDefinition && !listed {
			continue
		}
		visibility := Public
		if public != nil && !listed {
			visibility = Private
		}
		ret = append(ret, PublicEntry{Visibility: visibility, Type: s.Type, Name: s.Name})
	}
	return ret
}

// WritePublicList writes the entries of PublicList, one per line.
func WritePublicList(w io.Writer, table *Table, public *Table) error {
	bw := bufio.NewWriter(w)
	for _, e := range PublicList(table, public) {
		fmt.Fprintln(bw, e.String())
	}
	return bw.Flush()
}

// ReadPublicList parses the output of WritePublicList.
func ReadPublicList(r io.Reader) ([]PublicEntry, error) {
	var ret []PublicEntry
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: malformed public list entry %q", lineNum, line)
		}
		visibility := Visibility(fields[0])
		if visibility != Public && visibility != Private {
			return nil, fmt.Errorf("line %d: unknown visibility %q", lineNum, fields[0])
		}
		typ, ok := ParseResourceType(fields[1])
		if !ok {
			return nil, fmt.Errorf("line %d: unknown resource type %q", lineNum, fields[1])
		}
		ret = append(ret, PublicEntry{Visibility: visibility, Type: typ, Name: fields[2]})
	}
	return ret, scanner.Err()
}

// ReadPublicTxt parses an allowlist of public symbols.  Both the "type name" form and the
// "[pkg:]type/name [= 0xid]" form emitted by aapt2 --emit-ids are accepted.
func ReadPublicTxt(r io.Reader, pkg string) (*Table, error) {
	b := NewTableBuilder(pkg)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var typName, name string
		value := int32(0)
		if i := strings.Index(line, "/"); i != -1 {
			ref := line
			if eq := strings.Index(line, "="); eq != -1 {
				ref = strings.TrimSpace(line[:eq])
				v, err := parseValue(strings.TrimSpace(line[eq+1:]))
				if err != nil {
					return nil, fmt.Errorf("line %d: %s", lineNum, err)
				}
				value = v
			}
			if colon := strings.Index(ref, ":"); colon != -1 {
				ref = ref[colon+1:]
			}
			typName, name, _ = strings.Cut(ref, "/")
		} else {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: malformed public symbol %q", lineNum, line)
			}
			typName, name = fields[0], fields[1]
		}

		typ, ok := ParseResourceType(typName)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown resource type %q", lineNum, typName)
		}
		var s Symbol
		switch typ {
		case Attr:
			s = NewAttrSymbol(name, value, false)
		case Styleable:
			s = NewStyleableSymbol(name, nil, nil)
		default:
			s = NewNormalSymbol(typ, name, value)
		}
		if err := b.Add(s); err != nil {
			return nil, fmt.Errorf("line %d: %s", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
