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
	"sort"
	"strconv"
	"strings"
)

// The declaration format is the text symbol format written by aapt2 link --output-text-symbols,
// optionally preceded by a line holding the package name:
//
//	com.example.lib
//	int attr textSize 0x7f010000
//	int attr? inheritedAttr 0x7f010001
//	int string app_name 0x7f020000
//	int[] styleable MyView { 0x7f010000, 0x01010098 }
//	int styleable MyView_textSize 0 textSize
//	int styleable MyView_android_textColor 1 android:textColor
//
// "attr?" marks an attr that is only maybe declared.  The last column of a styleable child line is
// the child reference; plain aapt2 output omits it, in which case it is derived from the field
// name.

const maybeAttr = "attr?"

// ReadTable parses a table in the declaration format.  defaultPkg is used when the input has no
// package line.
func ReadTable(r io.Reader, defaultPkg string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1024*1024)

	pkg := ""
	var symbols []Symbol
	var current *pendingStyleable
	lineNum := 0
	first := true

	finish := func() error {
		if current == nil {
			return nil
		}
		s, err := current.symbol()
		if err != nil {
			return err
		}
		symbols = append(symbols, s)
		current = nil
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if first {
			first = false
			if len(fields) == 1 {
				pkg = fields[0]
				continue
			}
		}

		errorf := func(format string, args ...interface{}) error {
			return fmt.Errorf("line %d: %s: %q", lineNum, fmt.Sprintf(format, args...), line)
		}

		switch fields[0] {
		case "int[]":
			if err := finish(); err != nil {
				return nil, errorf("%s", err)
			}
			if len(fields) < 4 || fields[1] != string(Styleable) {
				return nil, errorf("malformed array line")
			}
			values, err := parseArray(strings.Join(fields[3:], " "))
			if err != nil {
				return nil, errorf("%s", err)
			}
			current = &pendingStyleable{name: fields[2], values: values}
		case "int":
			if len(fields) < 4 {
				return nil, errorf("malformed symbol line")
			}
			typ, name := fields[1], fields[2]
			if typ == string(Styleable) {
				if current == nil || !strings.HasPrefix(name, CanonicalName(current.name)+"_") {
					return nil, errorf("styleable child %q does not follow its styleable", name)
				}
				index, err := strconv.Atoi(fields[3])
				if err != nil {
					return nil, errorf("invalid styleable child index %q", fields[3])
				}
				child := ""
				if len(fields) > 4 {
					child = fields[4]
				} else {
					child = childFromField(strings.TrimPrefix(name, CanonicalName(current.name)+"_"))
				}
				current.children = append(current.children, pendingChild{index, child})
				continue
			}

			if err := finish(); err != nil {
				return nil, errorf("%s", err)
			}
			value, err := parseValue(fields[3])
			if err != nil {
				return nil, errorf("%s", err)
			}
			switch typ {
			case maybeAttr:
				symbols = append(symbols, NewAttrSymbol(name, value, true))
			case string(Attr):
				symbols = append(symbols, NewAttrSymbol(name, value, false))
			default:
				rt, ok := ParseResourceType(typ)
				if !ok || rt == Styleable {
					return nil, errorf("unknown resource type %q", typ)
				}
				symbols = append(symbols, NewNormalSymbol(rt, name, value))
			}
		default:
			return nil, errorf("unknown java type %q", fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}

	if pkg == "" {
		pkg = defaultPkg
	}
	if pkg == "" {
		return nil, fmt.Errorf("symbol table has no package name")
	}

	b := NewTableBuilder(pkg)
	for _, s := range symbols {
		if err := b.Add(s); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

type pendingChild struct {
	index int
	ref   string
}

type pendingStyleable struct {
	name     string
	values   []int32
	children []pendingChild
}

func (p *pendingStyleable) symbol() (Symbol, error) {
	sort.SliceStable(p.children, func(i, j int) bool {
		return p.children[i].index < p.children[j].index
	})
	var children []string
	for i, c := range p.children {
		if c.index != i {
			return Symbol{}, fmt.Errorf("styleable %s is missing child index %d", p.name, i)
		}
		children = append(children, c.ref)
	}
	return NewStyleableSymbol(p.name, p.values, children), nil
}

// childFromField recovers a child reference from the suffix of its index field.  aapt2 writes
// framework children as android_<name>; other qualified children cannot be told apart from local
// names containing underscores and are returned bare.
func childFromField(suffix string) string {
	if rest := strings.TrimPrefix(suffix, "android_"); rest != suffix {
		return "android:" + rest
	}
	return suffix
}

func parseValue(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if v > 0xffffffff || v < -0x80000000 {
		return 0, fmt.Errorf("value %q out of range", s)
	}
	return int32(uint32(v)), nil
}

func parseArray(s string) ([]int32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("array %q is not enclosed in braces", s)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		return nil, nil
	}
	var values []int32
	for _, v := range strings.Split(s, ",") {
		value, err := parseValue(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func formatValue(v int32) string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

// WriteTable writes a table in the declaration format, package line first, symbols sorted by type
// and name.  ReadTable of the output yields an equal table.
func WriteTable(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, t.Package())
	for _, s := range t.Symbols() {
		switch s.Type {
		case Styleable:
			values := make([]string, len(s.Values))
			for i, v := range s.Values {
				values[i] = formatValue(v)
			}
			if len(values) == 0 {
				fmt.Fprintf(bw, "int[] styleable %s { }\n", s.Name)
			} else {
				fmt.Fprintf(bw, "int[] styleable %s { %s }\n", s.Name, strings.Join(values, ", "))
			}
			for i, child := range s.Children {
				fmt.Fprintf(bw, "int styleable %s %d %s\n", s.ChildFieldName(child), i, child)
			}
		case Attr:
			typ := string(Attr)
			if s.MaybeDefinition {
				typ = maybeAttr
			}
			fmt.Fprintf(bw, "int %s %s %s\n", typ, s.Name, formatValue(s.Value))
		default:
			fmt.Fprintf(bw, "int %s %s %s\n", s.Type, s.Name, formatValue(s.Value))
		}
	}
	return bw.Flush()
}
