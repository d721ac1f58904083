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

package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// fieldRefs returns every Fieldref constant of the class, in constant pool order.
func (c *ClassFile) fieldRefs() ([]FieldRef, error) {
	var ret []FieldRef
	for i := 1; i < c.Pool.Count(); i++ {
		if c.Pool.entries[i].Tag != TagFieldref {
			continue
		}
		ref, err := c.fieldRef(uint16(i))
		if err != nil {
			return nil, err
		}
		ret = append(ret, ref)
	}
	return ret, nil
}

// thisClass returns the internal name of the class.
func (c *ClassFile) thisClass() (string, error) {
	if len(c.Rest) < 4 {
		return "", fmt.Errorf("truncated class file")
	}
	return c.Pool.ClassName(binary.BigEndian.Uint16(c.Rest[2:4]))
}

// fieldInfo describes a field declared by a class.
type fieldInfo struct {
	Access     uint16
	Name       string
	Descriptor string
	// ConstantValue is the value of an int field's ConstantValue attribute, or nil.
	ConstantValue *int32
}

// fields decodes the fields declared by the class.
func (c *ClassFile) fields() ([]fieldInfo, error) {
	r := bytes.NewReader(c.Rest)
	var header struct {
		Access, This, Super, Interfaces uint16
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("reading class header: %w", err)
	}
	if _, err := r.Seek(2*int64(header.Interfaces), io.SeekCurrent); err != nil {
		return nil, err
	}
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("reading field count: %w", err)
	}

	var ret []fieldInfo
	for i := 0; i < int(count); i++ {
		var field struct {
			Access, Name, Descriptor, Attributes uint16
		}
		if err := binary.Read(r, binary.BigEndian, &field); err != nil {
			return nil, fmt.Errorf("reading field %d: %w", i, err)
		}
		info := fieldInfo{Access: field.Access}
		var err error
		if info.Name, err = c.Pool.Utf8(field.Name); err != nil {
			return nil, err
		}
		if info.Descriptor, err = c.Pool.Utf8(field.Descriptor); err != nil {
			return nil, err
		}
		for j := 0; j < int(field.Attributes); j++ {
			var attr struct {
				Name   uint16
				Length uint32
			}
			if err := binary.Read(r, binary.BigEndian, &attr); err != nil {
				return nil, fmt.Errorf("reading attribute of field %s: %w", info.Name, err)
			}
			data := make([]byte, attr.Length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("reading attribute of field %s: %w", info.Name, err)
			}
			if name, _ := c.Pool.Utf8(attr.Name); name == "ConstantValue" && len(data) == 2 {
				constant, err := c.Pool.entryOfTag(binary.BigEndian.Uint16(data), TagInteger)
				if err != nil {
					return nil, err
				}
				v := int32(binary.BigEndian.Uint32(constant.Data))
				info.ConstantValue = &v
			}
		}
		ret = append(ret, info)
	}
	return ret, nil
}
