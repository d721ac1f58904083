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

// Package classfile reads and writes the parts of JVM class files needed to redirect field
// references between R classes and to synthesize R classes.  Everything after the constant pool
// of a parsed class is kept as opaque bytes.
package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

const magic = 0xCAFEBABE

// Tag identifies the kind of a constant pool entry.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// payloadSize is the fixed size of each non-Utf8 constant after its tag.
var payloadSize = map[Tag]int{
	TagInteger:            4,
	TagFloat:              4,
	TagLong:               8,
	TagDouble:             8,
	TagClass:              2,
	TagString:             2,
	TagFieldref:           4,
	TagMethodref:          4,
	TagInterfaceMethodref: 4,
	TagNameAndType:        4,
	TagMethodHandle:       3,
	TagMethodType:         2,
	TagDynamic:            4,
	TagInvokeDynamic:      4,
	TagModule:             2,
	TagPackage:            2,
}

// Constant is one constant pool entry.  Data is the raw payload following the tag, for Utf8
// entries without the length prefix.  The unusable slot after a Long or Double has Tag 0.
type Constant struct {
	Tag  Tag
	Data []byte
}

// ConstantPool is a class file constant pool.  Index 0 is unused, as in the class file.
type ConstantPool struct {
	entries []Constant
	utf8s   map[string]uint16
	classes map[string]uint16
	ints    map[int32]uint16
}

func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		entries: make([]Constant, 1),
		utf8s:   make(map[string]uint16),
		classes: make(map[string]uint16),
		ints:    make(map[int32]uint16),
	}
}

// Count returns the constant_pool_count of the pool, one more than the highest index.
func (p *ConstantPool) Count() int {
	return len(p.entries)
}

// Entry returns the constant at index i.
func (p *ConstantPool) Entry(i uint16) (Constant, error) {
	if i == 0 || int(i) >= len(p.entries) {
		return Constant{}, fmt.Errorf("constant pool index %d out of range [1, %d)", i, len(p.entries))
	}
	return p.entries[i], nil
}

func (p *ConstantPool) entryOfTag(i uint16, tag Tag) (Constant, error) {
	c, err := p.Entry(i)
	if err != nil {
		return c, err
	}
	if c.Tag != tag {
		return c, fmt.Errorf("constant pool entry %d has tag %d, expected %d", i, c.Tag, tag)
	}
	return c, nil
}

// Utf8 returns the string stored in the Utf8 entry at index i.
func (p *ConstantPool) Utf8(i uint16) (string, error) {
	c, err := p.entryOfTag(i, TagUtf8)
	if err != nil {
		return "", err
	}
	return decodeModifiedUTF8(c.Data)
}

// ClassName returns the internal name of the Class entry at index i, e.g. "com/example/R$string".
func (p *ConstantPool) ClassName(i uint16) (string, error) {
	c, err := p.entryOfTag(i, TagClass)
	if err != nil {
		return "", err
	}
	return p.Utf8(binary.BigEndian.Uint16(c.Data))
}

// NameAndType returns the name and descriptor of the NameAndType entry at index i.
func (p *ConstantPool) NameAndType(i uint16) (name, descriptor string, err error) {
	c, err := p.entryOfTag(i, TagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = p.Utf8(binary.BigEndian.Uint16(c.Data[0:2])); err != nil {
		return "", "", err
	}
	if descriptor, err = p.Utf8(binary.BigEndian.Uint16(c.Data[2:4])); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

func (p *ConstantPool) add(c Constant) (uint16, error) {
	index := len(p.entries)
	slots := 1
	if c.Tag == TagLong || c.Tag == TagDouble {
		slots = 2
	}
	if index+slots > 0xffff {
		return 0, fmt.Errorf("constant pool overflow")
	}
	p.entries = append(p.entries, c)
	if slots == 2 {
		p.entries = append(p.entries, Constant{})
	}
	return uint16(index), nil
}

// AddUtf8 returns the index of a Utf8 entry holding s, appending one if none exists.
func (p *ConstantPool) AddUtf8(s string) (uint16, error) {
	if i, ok := p.utf8s[s]; ok {
		return i, nil
	}
	data := encodeModifiedUTF8(s)
	if len(data) > 0xffff {
		return 0, fmt.Errorf("string of %d bytes does not fit in a constant", len(data))
	}
	i, err := p.add(Constant{Tag: TagUtf8, Data: data})
	if err != nil {
		return 0, err
	}
	p.utf8s[s] = i
	return i, nil
}

// AddClass returns the index of a Class entry naming the internal class name, appending one if
// none exists.
func (p *ConstantPool) AddClass(name string) (uint16, error) {
	if i, ok := p.classes[name]; ok {
		return i, nil
	}
	nameIndex, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	i, err := p.add(Constant{Tag: TagClass, Data: u2(nameIndex)})
	if err != nil {
		return 0, err
	}
	p.classes[name] = i
	return i, nil
}

// AddInteger returns the index of an Integer entry holding v, appending one if none was added
// before.
func (p *ConstantPool) AddInteger(v int32) (uint16, error) {
	if i, ok := p.ints[v]; ok {
		return i, nil
	}
	i, err := p.add(Constant{Tag: TagInteger, Data: u4(uint32(v))})
	if err != nil {
		return 0, err
	}
	p.ints[v] = i
	return i, nil
}

// AddNameAndType appends a NameAndType entry.
func (p *ConstantPool) AddNameAndType(name, descriptor string) (uint16, error) {
	nameIndex, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	descIndex, err := p.AddUtf8(descriptor)
	if err != nil {
		return 0, err
	}
	return p.add(Constant{Tag: TagNameAndType, Data: append(u2(nameIndex), u2(descIndex)...)})
}

// AddFieldref appends a Fieldref entry.
func (p *ConstantPool) AddFieldref(class, name, descriptor string) (uint16, error) {
	classIndex, err := p.AddClass(class)
	if err != nil {
		return 0, err
	}
	natIndex, err := p.AddNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	return p.add(Constant{Tag: TagFieldref, Data: append(u2(classIndex), u2(natIndex)...)})
}

func (p *ConstantPool) readFrom(r *bytes.Reader) error {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return fmt.Errorf("reading constant pool count: %w", err)
	}
	for i := 1; i < int(count); i++ {
		tagByte, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("reading constant %d: %w", i, err)
		}
		tag := Tag(tagByte)
		var size int
		if tag == TagUtf8 {
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return fmt.Errorf("reading constant %d: %w", i, err)
			}
			size = int(length)
		} else if s, ok := payloadSize[tag]; ok {
			size = s
		} else {
			return fmt.Errorf("constant %d has unknown tag %d", i, tag)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return fmt.Errorf("reading constant %d: %w", i, err)
		}
		index, err := p.add(Constant{Tag: tag, Data: data})
		if err != nil {
			return err
		}
		switch tag {
		case TagLong, TagDouble:
			i++
		case TagUtf8:
			if s, err := decodeModifiedUTF8(data); err == nil {
				if _, ok := p.utf8s[s]; !ok {
					p.utf8s[s] = index
				}
			}
		}
	}
	// Class entries are indexed once all the Utf8 entries they point at are known.
	for i, c := range p.entries {
		if c.Tag != TagClass {
			continue
		}
		if name, err := p.ClassName(uint16(i)); err == nil {
			if _, ok := p.classes[name]; !ok {
				p.classes[name] = uint16(i)
			}
		}
	}
	return nil
}

func (p *ConstantPool) writeTo(buf *bytes.Buffer) {
	buf.Write(u2(uint16(len(p.entries))))
	for _, c := range p.entries[1:] {
		if c.Tag == 0 {
			continue
		}
		buf.WriteByte(byte(c.Tag))
		if c.Tag == TagUtf8 {
			buf.Write(u2(uint16(len(c.Data))))
		}
		buf.Write(c.Data)
	}
}

func u2(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func u4(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// encodeModifiedUTF8 encodes s the way the JVM stores strings: NUL as two bytes and
// supplementary characters as surrogate pairs of three bytes each.
func encodeModifiedUTF8(s string) []byte {
	var ret []byte
	for _, r := range s {
		switch {
		case r != 0 && r < 0x80:
			ret = append(ret, byte(r))
		case r < 0x800:
			ret = append(ret, byte(0xc0|r>>6), byte(0x80|r&0x3f))
		case r < 0x10000:
			ret = append(ret, byte(0xe0|r>>12), byte(0x80|(r>>6)&0x3f), byte(0x80|r&0x3f))
		default:
			hi, lo := utf16.EncodeRune(r)
			for _, c := range []rune{hi, lo} {
				ret = append(ret, byte(0xe0|c>>12), byte(0x80|(c>>6)&0x3f), byte(0x80|c&0x3f))
			}
		}
	}
	return ret
}

func decodeModifiedUTF8(b []byte) (string, error) {
	var units []uint16
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80 && c != 0:
			units = append(units, uint16(c))
			i++
		case c&0xe0 == 0xc0:
			if i+1 >= len(b) || b[i+1]&0xc0 != 0x80 {
				return "", fmt.Errorf("malformed modified UTF-8 at byte %d", i)
			}
			units = append(units, uint16(c&0x1f)<<6|uint16(b[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0:
			if i+2 >= len(b) || b[i+1]&0xc0 != 0x80 || b[i+2]&0xc0 != 0x80 {
				return "", fmt.Errorf("malformed modified UTF-8 at byte %d", i)
			}
			units = append(units, uint16(c&0x0f)<<12|uint16(b[i+1]&0x3f)<<6|uint16(b[i+2]&0x3f))
			i += 3
		default:
			return "", fmt.Errorf("malformed modified UTF-8 at byte %d", i)
		}
	}
	runes := utf16.Decode(units)
	buf := make([]byte, 0, len(runes))
	for _, r := range runes {
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf), nil
}
