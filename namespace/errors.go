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
	"fmt"

	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// UnknownSymbolError is returned when a reference does not resolve in any table reachable from
// the component being rewritten.  It aborts the artifact it was found in.
type UnknownSymbolError struct {
	Package string
	Type    symbols.ResourceType
	Name    string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("In package %s found unknown symbol of type %s and name %s.", e.Package, e.Type, e.Name)
}

// DuplicateAttributeError is returned when rewriting gives two attributes of one element the
// same qualified name, as when a res-auto prefix and a library prefix name the same attr.
type DuplicateAttributeError struct {
	Element string
	Attr    string
}

func (e *DuplicateAttributeError) Error() string {
	return fmt.Sprintf("element <%s> has attribute %s more than once after namespacing", e.Element, e.Attr)
}

// MalformedXMLError is returned when a file expected to hold XML cannot be parsed.  Files that
// fail this way are copied unchanged.
type MalformedXMLError struct {
	Err error
}

func (e *MalformedXMLError) Error() string {
	return "malformed XML: " + e.Err.Error()
}

func (e *MalformedXMLError) Unwrap() error {
	return e.Err
}
