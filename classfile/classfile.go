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
)

// ClassFile is a parsed class file.  Only the constant pool is decoded; Rest holds everything
// from access_flags to the end of the file unchanged.
type ClassFile struct {
	Minor, Major uint16
	Pool         *ConstantPool
	Rest         []byte
}

// Parse decodes the header and constant pool of a class file.
func Parse(data []byte) (*ClassFile, error) {
	r := bytes.NewReader(data)
	var header struct {
		Magic        uint32
		Minor, Major uint16
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("reading class header: %w", err)
	}
	if header.Magic != magic {
		return nil, fmt.Errorf("bad class file magic 0x%08x", header.Magic)
	}
	pool := NewConstantPool()
	if err := pool.readFrom(r); err != nil {
		return nil, err
	}
	rest := data[len(data)-r.Len():]
	return &ClassFile{
		Minor: header.Minor,
		Major: header.Major,
		Pool:  pool,
		Rest:  append([]byte(nil), rest...),
	}, nil
}

// Bytes encodes the class file.
func (c *ClassFile) Bytes() []byte {
	buf := &bytes.Buffer{}
	buf.Write(u4(magic))
	buf.Write(u2(c.Minor))
	buf.Write(u2(c.Major))
	c.Pool.writeTo(buf)
	buf.Write(c.Rest)
	return buf.Bytes()
}

// FieldRef is the symbolic target of a Fieldref constant.
type FieldRef struct {
	// Owner is the internal name of the class declaring the field, e.g. "com/example/R$string".
	Owner      string
	Name       string
	Descriptor string
}

func (f FieldRef) String() string {
	return f.Owner + "." + f.Name + ":" + f.Descriptor
}

func (c *ClassFile) fieldRef(i uint16) (FieldRef, error) {
	data := c.Pool.entries[i].Data
	owner, err := c.Pool.ClassName(binary.BigEndian.Uint16(data[0:2]))
	if err != nil {
		return FieldRef{}, fmt.Errorf("fieldref %d: %w", i, err)
	}
	name, desc, err := c.Pool.NameAndType(binary.BigEndian.Uint16(data[2:4]))
	if err != nil {
		return FieldRef{}, fmt.Errorf("fieldref %d: %w", i, err)
	}
	return FieldRef{Owner: owner, Name: name, Descriptor: desc}, nil
}

// RedirectFields asks redirect for a new target of every Fieldref constant and points the
// constant at it.  Only redirected Fieldrefs change; the Class and NameAndType entries they need
// are appended to the pool.  It returns the number of redirected references.
func (c *ClassFile) RedirectFields(redirect func(FieldRef) (FieldRef, error)) (int, error) {
	count := c.Pool.Count()
	redirected := 0
	for i := 1; i < count; i++ {
		if c.Pool.entries[i].Tag != TagFieldref {
			continue
		}
		ref, err := c.fieldRef(uint16(i))
		if err != nil {
			return 0, err
		}
		target, err := redirect(ref)
		if err != nil {
			return 0, err
		}
		if target == ref {
			continue
		}
		classIndex, err := c.Pool.AddClass(target.Owner)
		if err != nil {
			return 0, err
		}
		nat := c.Pool.entries[i].Data[2:4]
		if target.Name != ref.Name || target.Descriptor != ref.Descriptor {
			natIndex, err := c.Pool.AddNameAndType(target.Name, target.Descriptor)
			if err != nil {
				return 0, err
			}
			nat = u2(natIndex)
		}
		data := append(u2(classIndex), nat...)
		c.Pool.entries[i] = Constant{Tag: TagFieldref, Data: data}
		redirected++
	}
	return redirected, nil
}
