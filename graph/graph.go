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

// Package graph builds the dependency graph of resource components.  Each node carries the
// component's declared id, its direct dependencies and the files of every artifact type associated
// with it.  Transitive views are derived lazily and memoized; the graph itself is immutable once
// Build returns.
package graph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yuweiguocn/build-system-sub001/android"
)

// ArtifactType names a kind of file associated with a component.
type ArtifactType string

const (
	// SymbolTables are the declaration files of a component, in the text or binary table format.
	SymbolTables ArtifactType = "symbols"
	// PublicSymbols are public.txt allowlists.
	PublicSymbols ArtifactType = "public"
	// ResourceDirs are extracted res/ directories.
	ResourceDirs ArtifactType = "res"
	// Manifests are AndroidManifest.xml files.
	Manifests ArtifactType = "manifest"
	// ClassJars are archives of compiled classes.
	ClassJars ArtifactType = "classes"
)

// Descriptor is an externally resolved component.  Key is its stable identity: two descriptors
// with the same Key are the same component no matter how they are reached.  ID is the declared id,
// which distinct components may share.
type Descriptor struct {
	Key  string
	ID   string
	Deps []*Descriptor
}

// FileSets maps each artifact type to the files of every component, by descriptor key.
type FileSets map[ArtifactType]map[string][]string

// Node is one component in the graph.  Nodes are compared by pointer.
type Node struct {
	index     int
	key       string
	id        string
	sanitized string
	deps      []*Node
	files     map[ArtifactType][]string

	// closure is the node followed by all its transitive dependencies.
	closure *android.DepSet[*Node]

	transitiveOnce sync.Once
	transitive     []*Node

	filesLock       sync.Mutex
	transitiveFiles map[ArtifactType][]string
}

func (n *Node) Key() string {
	return n.key
}

func (n *Node) ID() string {
	return n.id
}

// SanitizedName returns a name for n that is unique in its graph and safe to use as a file name.
func (n *Node) SanitizedName() string {
	return n.sanitized
}

// Deps returns the direct dependencies of n in declaration order.
func (n *Node) Deps() []*Node {
	return android.CopyOf(n.deps)
}

// Files returns the files of an artifact type associated with n itself.
func (n *Node) Files(typ ArtifactType) []string {
	return android.CopyOf(n.files[typ])
}

// TransitiveDeps returns every node reachable from n, excluding n, parents before children and
// children in declaration order, each node once.
func (n *Node) TransitiveDeps() []*Node {
	n.transitiveOnce.Do(func() {
		n.transitive = n.closure.ToList()[1:]
	})
	return android.CopyOf(n.transitive)
}

// TransitiveFiles returns the files of an artifact type of n and all its transitive dependencies,
// in the order of n followed by TransitiveDeps, duplicates removed by first occurrence.
func (n *Node) TransitiveFiles(typ ArtifactType) []string {
	n.filesLock.Lock()
	defer n.filesLock.Unlock()
	if files, ok := n.transitiveFiles[typ]; ok {
		return android.CopyOf(files)
	}

	var files []string
	files = append(files, n.files[typ]...)
	for _, dep := range n.TransitiveDeps() {
		files = append(files, dep.files[typ]...)
	}
	files = android.FirstUniqueStrings(files)

	if n.transitiveFiles == nil {
		n.transitiveFiles = make(map[ArtifactType][]string)
	}
	n.transitiveFiles[typ] = files
	return android.CopyOf(files)
}

func (n *Node) String() string {
	if n.key == n.id {
		return n.id
	}
	return fmt.Sprintf("%s (%s)", n.id, n.key)
}

// Graph is the result of Build.
type Graph struct {
	roots []*Node
	nodes []*Node
	byKey map[string]*Node
}

// Roots returns the nodes of the root descriptors, in the order they were passed to Build.
func (g *Graph) Roots() []*Node {
	return android.CopyOf(g.roots)
}

// Nodes returns every node of the graph, dependencies before the nodes that depend on them.
func (g *Graph) Nodes() []*Node {
	return android.CopyOf(g.nodes)
}

// Lookup returns the node built for the descriptor with the given key.
func (g *Graph) Lookup(key string) (*Node, bool) {
	n, ok := g.byKey[key]
	return n, ok
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// CycleError is returned by Build when the descriptors depend on each other in a cycle.
type CycleError struct {
	// Cycle lists the keys on the cycle, starting and ending with the same key.
	Cycle []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ")
}

// Build constructs the graph reachable from roots.  Descriptors are deduplicated by Key, so a
// component shared by several parents becomes a single node.  An empty roots list yields an empty
// graph.
func Build(roots []*Descriptor, files FileSets) (*Graph, error) {
	b := &builder{
		files:    files,
		nodes:    make(map[string]*Node),
		visiting: make(map[string]bool),
	}
	g := &Graph{}
	for _, root := range roots {
		n, err := b.visit(root)
		if err != nil {
			return nil, err
		}
		g.roots = append(g.roots, n)
	}
	g.nodes = b.arena
	g.byKey = b.nodes
	assignSanitizedNames(g.nodes)
	return g, nil
}

type builder struct {
	files FileSets

	arena    []*Node
	nodes    map[string]*Node
	visiting map[string]bool
	stack    []string
}

func (b *builder) visit(d *Descriptor) (*Node, error) {
	if d == nil {
		return nil, fmt.Errorf("nil dependency descriptor")
	}
	if d.Key == "" {
		return nil, fmt.Errorf("dependency descriptor %q has no key", d.ID)
	}
	if n, ok := b.nodes[d.Key]; ok {
		if n.id != d.ID {
			return nil, fmt.Errorf("descriptor %q declared with ids %q and %q", d.Key, n.id, d.ID)
		}
		return n, nil
	}
	if b.visiting[d.Key] {
		start := android.IndexList(d.Key, b.stack)
		cycle := append(android.CopyOf(b.stack[start:]), d.Key)
		return nil, &CycleError{Cycle: cycle}
	}

	b.visiting[d.Key] = true
	b.stack = append(b.stack, d.Key)

	var deps []*Node
	for _, dep := range d.Deps {
		n, err := b.visit(dep)
		if err != nil {
			return nil, err
		}
		if !android.InList(n, deps) {
			deps = append(deps, n)
		}
	}

	b.stack = b.stack[:len(b.stack)-1]
	delete(b.visiting, d.Key)

	n := &Node{
		index: len(b.arena),
		key:   d.Key,
		id:    d.ID,
		deps:  deps,
		files: make(map[ArtifactType][]string),
	}
	for typ, byKey := range b.files {
		if files := byKey[d.Key]; len(files) > 0 {
			n.files[typ] = android.CopyOf(files)
		}
	}

	closure := android.NewDepSetBuilder[*Node]().Direct(n)
	for _, dep := range deps {
		closure.Transitive(dep.closure)
	}
	n.closure = closure.Build()

	b.arena = append(b.arena, n)
	b.nodes[d.Key] = n
	return n, nil
}
