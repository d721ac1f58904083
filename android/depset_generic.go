// Copyright 2020 Google Inc. All rights reserved.
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

package android

// A DepSet holds the contents of a node and of its transitive dependencies without copying them.
// It is a DAG of DepSet nodes, each with some direct contents and the DepSets of its
// dependencies.  ToList flattens it in preorder: the direct contents first, then each dependency
// left to right, keeping the first occurrence of every element.  This is the order of Bazel's
// preordered depsets: https://docs.bazel.build/versions/master/skylark/depsets.html
//
// A DepSet is created by a DepSetBuilder and is immutable once built.
type DepSet[T comparable] struct {
	direct     []T
	transitive []*DepSet[T]
}

// DepSetBuilder is used to create an immutable DepSet.
type DepSetBuilder[T comparable] struct {
	direct     []T
	transitive []*DepSet[T]
}

func NewDepSetBuilder[T comparable]() *DepSetBuilder[T] {
	return &DepSetBuilder[T]{}
}

// Direct adds direct contents to the DepSet being built. Newly added direct contents are to the
// right of any existing direct contents.
func (b *DepSetBuilder[T]) Direct(direct ...T) *DepSetBuilder[T] {
	b.direct = append(b.direct, direct...)
	return b
}

// Transitive adds dependency DepSets to the DepSet being built, to the right of the existing
// ones.  Nil DepSets are ignored.
func (b *DepSetBuilder[T]) Transitive(transitive ...*DepSet[T]) *DepSetBuilder[T] {
	for _, t := range transitive {
		if t != nil {
			b.transitive = append(b.transitive, t)
		}
	}
	return b
}

// Build returns the DepSet being built.  The builder retains its contents for creating more
// DepSets.
func (b *DepSetBuilder[T]) Build() *DepSet[T] {
	return &DepSet[T]{
		direct:     append([]T(nil), b.direct...),
		transitive: append([]*DepSet[T](nil), b.transitive...),
	}
}

// walk calls visit with the direct contents of every DepSet node reachable from d, in preorder.
// A node shared by several dependencies is visited once.
func (d *DepSet[T]) walk(visit func([]T)) {
	visited := make(map[*DepSet[T]]bool)

	var dfs func(d *DepSet[T])
	dfs = func(d *DepSet[T]) {
		visited[d] = true
		visit(d.direct)
		for _, dep := range d.transitive {
			if !visited[dep] {
				dfs(dep)
			}
		}
	}

	dfs(d)
}

// ToList returns the DepSet flattened to a preordered list without duplicates.
func (d *DepSet[T]) ToList() []T {
	if d == nil {
		return nil
	}
	var list []T
	d.walk(func(direct []T) {
		list = append(list, direct...)
	})
	return firstUnique(list)
}

// firstUnique returns all unique elements of a slice, keeping the first copy of each.  It
// modifies the slice contents in place, and returns a subslice of the original slice.
func firstUnique[T comparable](slice []T) []T {
	// 4 was chosen based on Benchmark_firstUnique results.
	if len(slice) > 4 {
		return firstUniqueMap(slice)
	}
	return firstUniqueList(slice)
}

// firstUniqueList is an implementation of firstUnique using an O(N^2) list comparison to look for
// duplicates.
func firstUniqueList[T comparable](in []T) []T {
	writeIndex := 0
outer:
	for readIndex := 0; readIndex < len(in); readIndex++ {
		for compareIndex := 0; compareIndex < writeIndex; compareIndex++ {
			if in[readIndex] == in[compareIndex] {
				// The value at readIndex already exists somewhere in the output region
				// of the slice before writeIndex, skip it.
				continue outer
			}
		}
		if readIndex != writeIndex {
			in[writeIndex] = in[readIndex]
		}
		writeIndex++
	}
	return in[0:writeIndex]
}

// firstUniqueMap is an implementation of firstUnique using an O(N) hash set lookup to look for
// duplicates.
func firstUniqueMap[T comparable](in []T) []T {
	writeIndex := 0
	seen := make(map[T]bool, len(in))
	for readIndex := 0; readIndex < len(in); readIndex++ {
		if seen[in[readIndex]] {
			continue
		}
		seen[in[readIndex]] = true
		if readIndex != writeIndex {
			in[writeIndex] = in[readIndex]
		}
		writeIndex++
	}
	return in[0:writeIndex]
}
