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

package graph

import (
	"sort"
	"strings"
)

func isAllowedNameChar(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
		r == '.' || r == '_' || r == '-'
}

// sanitizeName replaces every character not allowed in a file name with '_'.
func sanitizeName(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		if isAllowedNameChar(r) {
			return r
		}
		return '_'
	}, id)
}

// assignSanitizedNames gives every node a unique sanitized name.  Nodes are visited sorted by
// declared id, then key, so the result does not depend on construction order.  A node whose
// sanitized id is already taken gets as many trailing '_' as needed to make it unique.
func assignSanitizedNames(nodes []*Node) {
	sorted := append([]*Node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].id != sorted[j].id {
			return sorted[i].id < sorted[j].id
		}
		return sorted[i].key < sorted[j].key
	})

	used := make(map[string]bool, len(nodes))
	for _, n := range sorted {
		name := sanitizeName(n.id)
		for used[name] {
			name += "_"
		}
		used[name] = true
		n.sanitized = name
	}
}
