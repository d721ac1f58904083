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
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// The binary snapshot of a table is protobuf wire format for the messages
//
//	message SymbolTable {
//	  string package = 1;
//	  repeated Symbol symbols = 2;
//	}
//
//	message Symbol {
//	  string type = 1;
//	  string name = 2;
//	  uint32 value = 3;
//	  bool maybe_definition = 4;
//	  repeated uint32 values = 5 [packed = true];
//	  repeated string children = 6;
//	}

const (
	tablePackageField = 1
	tableSymbolsField = 2

	symbolTypeField            = 1
	symbolNameField            = 2
	symbolValueField           = 3
	symbolMaybeDefinitionField = 4
	symbolValuesField          = 5
	symbolChildrenField        = 6
)

// MarshalTable returns the binary snapshot of a table.  Symbols are written in the order of
// Table.Symbols, so equal tables produce identical bytes.
func MarshalTable(t *Table) []byte {
	var b []byte
	b = protowire.AppendTag(b, tablePackageField, protowire.BytesType)
	b = protowire.AppendString(b, t.Package())
	for _, s := range t.Symbols() {
		b = protowire.AppendTag(b, tableSymbolsField, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalSymbol(s))
	}
	return b
}

func marshalSymbol(s Symbol) []byte {
	var b []byte
	b = protowire.AppendTag(b, symbolTypeField, protowire.BytesType)
	b = protowire.AppendString(b, string(s.Type))
	b = protowire.AppendTag(b, symbolNameField, protowire.BytesType)
	b = protowire.AppendString(b, s.Name)
	if s.Value != 0 {
		b = protowire.AppendTag(b, symbolValueField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(s.Value)))
	}
	if s.MaybeDefinition {
		b = protowire.AppendTag(b, symbolMaybeDefinitionField, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	if len(s.Values) > 0 {
		var packed []byte
		for _, v := range s.Values {
			packed = protowire.AppendVarint(packed, uint64(uint32(v)))
		}
		b = protowire.AppendTag(b, symbolValuesField, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	for _, c := range s.Children {
		b = protowire.AppendTag(b, symbolChildrenField, protowire.BytesType)
		b = protowire.AppendString(b, c)
	}
	return b
}

// UnmarshalTable parses a binary snapshot written by MarshalTable.  Unknown fields are skipped.
func UnmarshalTable(b []byte) (*Table, error) {
	pkg := ""
	var symbols []Symbol
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("invalid symbol table: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == tablePackageField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("invalid package name: %w", protowire.ParseError(n))
			}
			pkg = v
			b = b[n:]
		case num == tableSymbolsField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("invalid symbol: %w", protowire.ParseError(n))
			}
			s, err := unmarshalSymbol(v)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, s)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("invalid field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if pkg == "" {
		return nil, fmt.Errorf("symbol table has no package name")
	}
	builder := NewTableBuilder(pkg)
	for _, s := range symbols {
		if err := builder.Add(s); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}

func unmarshalSymbol(b []byte) (Symbol, error) {
	var s Symbol
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return s, fmt.Errorf("invalid symbol: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == symbolTypeField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			s.Type = ResourceType(v)
			b = b[n:]
		case num == symbolNameField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			s.Name = v
			b = b[n:]
		case num == symbolValueField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			s.Value = int32(uint32(v))
			b = b[n:]
		case num == symbolMaybeDefinitionField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			s.MaybeDefinition = protowire.DecodeBool(v)
			b = b[n:]
		case num == symbolValuesField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return s, protowire.ParseError(m)
				}
				s.Values = append(s.Values, int32(uint32(v)))
				packed = packed[m:]
			}
			b = b[n:]
		case num == symbolChildrenField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			s.Children = append(s.Children, v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return s, nil
}
