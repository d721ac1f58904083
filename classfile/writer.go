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
	"fmt"
)

const (
	AccPublic = 0x0001
	AccStatic = 0x0008
	AccFinal  = 0x0010
	AccSuper  = 0x0020

	// MajorVersion is the class file version written by Class.Bytes, Java 8.
	MajorVersion = 52
)

const (
	opIconstM1  = 0x02
	opBipush    = 0x10
	opSipush    = 0x11
	opLdc       = 0x12
	opLdcW      = 0x13
	opIastore   = 0x4f
	opDup       = 0x59
	opReturn    = 0xb1
	opPutstatic = 0xb3
	opNewarray  = 0xbc

	arrayTypeInt = 10
)

// Field is a public static field of a synthesized class, either an int holding Value or, when
// IsArray is set, an int[] initialized to Values.
type Field struct {
	Name    string
	Value   int32
	IsArray bool
	Values  []int32
}

// InnerClass is one entry of the InnerClasses attribute.
type InnerClass struct {
	Inner  string
	Outer  string
	Name   string
	Access uint16
}

// Class describes a class made only of static fields, like the classes nested in an R class.
// Int fields are initialized through ConstantValue attributes and are not final, so compilers
// reading the class do not inline them.  Array fields are initialized in <clinit>.
type Class struct {
	Name         string
	Super        string
	Access       uint16
	Fields       []Field
	InnerClasses []InnerClass
}

// Bytes encodes the class.
func (c *Class) Bytes() ([]byte, error) {
	w := &classWriter{pool: NewConstantPool()}
	return w.write(c)
}

type classWriter struct {
	pool *ConstantPool
	err  error
}

func (w *classWriter) utf8(s string) uint16 {
	if w.err != nil {
		return 0
	}
	i, err := w.pool.AddUtf8(s)
	w.err = err
	return i
}

func (w *classWriter) class(name string) uint16 {
	if w.err != nil {
		return 0
	}
	i, err := w.pool.AddClass(name)
	w.err = err
	return i
}

func (w *classWriter) integer(v int32) uint16 {
	if w.err != nil {
		return 0
	}
	i, err := w.pool.AddInteger(v)
	w.err = err
	return i
}

func (w *classWriter) fieldref(class, name, descriptor string) uint16 {
	if w.err != nil {
		return 0
	}
	i, err := w.pool.AddFieldref(class, name, descriptor)
	w.err = err
	return i
}

func (w *classWriter) write(c *Class) ([]byte, error) {
	super := c.Super
	if super == "" {
		super = "java/lang/Object"
	}
	thisIndex := w.class(c.Name)
	superIndex := w.class(super)

	body := &bytes.Buffer{}
	body.Write(u2(c.Access | AccSuper))
	body.Write(u2(thisIndex))
	body.Write(u2(superIndex))
	body.Write(u2(0)) // interfaces

	body.Write(u2(uint16(len(c.Fields))))
	var arrays []Field
	for _, f := range c.Fields {
		body.Write(u2(AccPublic | AccStatic))
		body.Write(u2(w.utf8(f.Name)))
		if f.IsArray {
			body.Write(u2(w.utf8("[I")))
			body.Write(u2(0))
			arrays = append(arrays, f)
			continue
		}
		body.Write(u2(w.utf8("I")))
		body.Write(u2(1))
		body.Write(u2(w.utf8("ConstantValue")))
		body.Write(u4(2))
		body.Write(u2(w.integer(f.Value)))
	}

	if len(arrays) == 0 {
		body.Write(u2(0))
	} else {
		code, err := w.clinit(c.Name, arrays)
		if err != nil {
			return nil, err
		}
		body.Write(u2(1))
		body.Write(u2(AccStatic))
		body.Write(u2(w.utf8("<clinit>")))
		body.Write(u2(w.utf8("()V")))
		body.Write(u2(1))
		body.Write(u2(w.utf8("Code")))
		// max_stack, max_locals, code_length, code, exception_table_length, attributes_count
		body.Write(u4(uint32(2 + 2 + 4 + len(code) + 2 + 2)))
		body.Write(u2(4))
		body.Write(u2(0))
		body.Write(u4(uint32(len(code))))
		body.Write(code)
		body.Write(u2(0))
		body.Write(u2(0))
	}

	if len(c.InnerClasses) == 0 {
		body.Write(u2(0))
	} else {
		body.Write(u2(1))
		body.Write(u2(w.utf8("InnerClasses")))
		body.Write(u4(uint32(2 + 8*len(c.InnerClasses))))
		body.Write(u2(uint16(len(c.InnerClasses))))
		for _, ic := range c.InnerClasses {
			body.Write(u2(w.class(ic.Inner)))
			body.Write(u2(w.class(ic.Outer)))
			body.Write(u2(w.utf8(ic.Name)))
			body.Write(u2(ic.Access))
		}
	}

	if w.err != nil {
		return nil, fmt.Errorf("writing class %s: %w", c.Name, w.err)
	}

	out := &bytes.Buffer{}
	out.Write(u4(magic))
	out.Write(u2(0))
	out.Write(u2(MajorVersion))
	w.pool.writeTo(out)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// clinit returns the bytecode initializing every array field, followed by return.
func (w *classWriter) clinit(class string, arrays []Field) ([]byte, error) {
	code := &bytes.Buffer{}
	for _, f := range arrays {
		w.pushInt(code, int32(len(f.Values)))
		code.WriteByte(opNewarray)
		code.WriteByte(arrayTypeInt)
		for i, v := range f.Values {
			code.WriteByte(opDup)
			w.pushInt(code, int32(i))
			w.pushInt(code, v)
			code.WriteByte(opIastore)
		}
		code.WriteByte(opPutstatic)
		code.Write(u2(w.fieldref(class, f.Name, "[I")))
	}
	code.WriteByte(opReturn)
	if code.Len() > 0xffff {
		return nil, fmt.Errorf("static initializer of %s is %d bytes, more than a method can hold",
			class, code.Len())
	}
	return code.Bytes(), nil
}

func (w *classWriter) pushInt(code *bytes.Buffer, v int32) {
	switch {
	case v >= -1 && v <= 5:
		code.WriteByte(byte(opIconstM1 + 1 + v))
	case v >= -128 && v <= 127:
		code.WriteByte(opBipush)
		code.WriteByte(byte(int8(v)))
	case v >= -32768 && v <= 32767:
		code.WriteByte(opSipush)
		code.Write(u2(uint16(int16(v))))
	default:
		i := w.integer(v)
		if i < 0x100 {
			code.WriteByte(opLdc)
			code.WriteByte(byte(i))
		} else {
			code.WriteByte(opLdcW)
			code.Write(u2(i))
		}
	}
}
