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

package namespace

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

const indentUnit = "    "

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#13;",
	)
)

// formatDocument serializes doc in a stable layout: namespace declarations first, other
// attributes sorted by name, element-only content indented by four spaces per level and content
// mixing text and elements kept as is.  Comments and processing instructions before and after the
// root element stay in place.
func formatDocument(doc *etree.Document) []byte {
	buf := &bytes.Buffer{}
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if isWhitespace(t) {
				continue
			}
			writeToken(buf, t)
		case *etree.Element:
			writeElement(buf, t, 0)
		default:
			writeToken(buf, t)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func isWhitespace(cd *etree.CharData) bool {
	return !cd.IsCData() && strings.TrimSpace(cd.Data) == ""
}

func sortedAttrs(el *etree.Element) []etree.Attr {
	attrs := append([]etree.Attr(nil), el.Attr...)
	sort.SliceStable(attrs, func(i, j int) bool {
		di, dj := isNamespaceDecl(attrs[i]), isNamespaceDecl(attrs[j])
		if di != dj {
			return di
		}
		return attrs[i].FullKey() < attrs[j].FullKey()
	})
	return attrs
}

func writeStartTag(buf *bytes.Buffer, el *etree.Element) {
	buf.WriteByte('<')
	buf.WriteString(el.FullTag())
	for _, a := range sortedAttrs(el) {
		buf.WriteByte(' ')
		buf.WriteString(a.FullKey())
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(a.Value))
		buf.WriteByte('"')
	}
}

// elementOnly tells whether the content of el can be re-indented: it has child elements or
// comments and no text other than whitespace.
func elementOnly(el *etree.Element) bool {
	hasNode := false
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if !isWhitespace(t) {
				return false
			}
		default:
			hasNode = true
		}
	}
	return hasNode
}

func writeElement(buf *bytes.Buffer, el *etree.Element, depth int) {
	writeStartTag(buf, el)
	if len(el.Child) == 0 {
		buf.WriteString(" />")
		return
	}
	buf.WriteByte('>')

	if elementOnly(el) {
		for _, tok := range el.Child {
			if cd, ok := tok.(*etree.CharData); ok && isWhitespace(cd) {
				continue
			}
			buf.WriteByte('\n')
			buf.WriteString(strings.Repeat(indentUnit, depth+1))
			if child, ok := tok.(*etree.Element); ok {
				writeElement(buf, child, depth+1)
			} else {
				writeToken(buf, tok)
			}
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indentUnit, depth))
	} else {
		writeInline(buf, el.Child)
	}

	buf.WriteString("</")
	buf.WriteString(el.FullTag())
	buf.WriteByte('>')
}

// writeInline writes content verbatim, without adding or removing whitespace.
func writeInline(buf *bytes.Buffer, content []etree.Token) {
	for _, tok := range content {
		el, ok := tok.(*etree.Element)
		if !ok {
			writeToken(buf, tok)
			continue
		}
		writeStartTag(buf, el)
		if len(el.Child) == 0 {
			buf.WriteString(" />")
			continue
		}
		buf.WriteByte('>')
		writeInline(buf, el.Child)
		buf.WriteString("</")
		buf.WriteString(el.FullTag())
		buf.WriteByte('>')
	}
}

func writeToken(buf *bytes.Buffer, tok etree.Token) {
	switch t := tok.(type) {
	case *etree.CharData:
		if t.IsCData() {
			buf.WriteString("<![CDATA[")
			buf.WriteString(t.Data)
			buf.WriteString("]]>")
		} else {
			buf.WriteString(textEscaper.Replace(t.Data))
		}
	case *etree.Comment:
		buf.WriteString("<!--")
		buf.WriteString(t.Data)
		buf.WriteString("-->")
	case *etree.Directive:
		buf.WriteString("<!")
		buf.WriteString(t.Data)
		buf.WriteByte('>')
	case *etree.ProcInst:
		buf.WriteString("<?")
		buf.WriteString(t.Target)
		if inst := strings.TrimSpace(t.Inst); inst != "" {
			buf.WriteByte(' ')
			buf.WriteString(inst)
		}
		buf.WriteString("?>")
	}
}

// parseDocument parses data, returning a MalformedXMLError if it is not a well formed document
// with a root element.
func parseDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &MalformedXMLError{Err: err}
	}
	if doc.Root() == nil {
		return nil, &MalformedXMLError{Err: errNoRoot}
	}
	return doc, nil
}

var errNoRoot = errors.New("document has no root element")
