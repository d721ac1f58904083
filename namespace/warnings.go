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
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yuweiguocn/build-system-sub001/symbols"
)

type WarningKind int

const (
	// AmbiguousOverride is a reference resolvable in more than one dependency.
	AmbiguousOverride WarningKind = iota
	// CrossTypeCollision is an unknown reference whose name is declared with another type.
	CrossTypeCollision
)

func (k WarningKind) String() string {
	switch k {
	case AmbiguousOverride:
		return "ambiguous-override"
	case CrossTypeCollision:
		return "cross-type-collision"
	default:
		panic(fmt.Errorf("unknown WarningKind %d", int(k)))
	}
}

// Warning is an advisory anomaly found while resolving references.  Processing continues.
type Warning struct {
	Kind    WarningKind
	Package string
	Type    symbols.ResourceType
	Name    string
	// Owner is the package the reference resolved to, empty for a CrossTypeCollision.
	Owner string
	// Others are the other candidate packages, in search order.  For a CrossTypeCollision they
	// are the "type/package" pairs declaring the name.
	Others []string
}

func (w Warning) String() string {
	switch w.Kind {
	case AmbiguousOverride:
		return fmt.Sprintf("In package %s multiple options found in its dependencies for resource %s %s. Using %s, other available: %s.",
			w.Package, w.Type, w.Name, w.Owner, strings.Join(w.Others, ", "))
	case CrossTypeCollision:
		return fmt.Sprintf("In package %s no resource of type %s named %s, but the name is declared as: %s.",
			w.Package, w.Type, w.Name, strings.Join(w.Others, ", "))
	}
	return w.Kind.String()
}

type warningKey struct {
	kind WarningKind
	pkg  string
	key  symbols.Key
}

// Warnings accumulates warnings from concurrent resolutions, keeping one per package and symbol.
// Every new warning is also logged.
type Warnings struct {
	logger logrus.FieldLogger

	lock sync.Mutex
	seen map[warningKey]bool
	list []Warning
}

// NewWarnings returns an empty collector logging to logger, or nowhere if logger is nil.
func NewWarnings(logger logrus.FieldLogger) *Warnings {
	if logger == nil {
		logger = discardLogger()
	}
	return &Warnings{
		logger: logger,
		seen:   make(map[warningKey]bool),
	}
}

func (w *Warnings) add(warning Warning) {
	key := warningKey{warning.Kind, warning.Package, symbols.NewKey(warning.Type, warning.Name)}

	w.lock.Lock()
	if w.seen[key] {
		w.lock.Unlock()
		return
	}
	w.seen[key] = true
	w.list = append(w.list, warning)
	w.lock.Unlock()

	w.logger.WithFields(logrus.Fields{
		"package": warning.Package,
		"type":    string(warning.Type),
		"name":    warning.Name,
	}).Warn(warning.String())
}

// List returns the accumulated warnings sorted by package, type, name and kind.
func (w *Warnings) List() []Warning {
	w.lock.Lock()
	ret := append([]Warning(nil), w.list...)
	w.lock.Unlock()

	sort.Slice(ret, func(i, j int) bool {
		a, b := ret[i], ret[j]
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Kind < b.Kind
	})
	return ret
}

func (w *Warnings) Len() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return len(w.list)
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
