// Copyright 2024 The Cockroach Authors
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

package strset

import "slices"

// Bucket is the ordered sequence of elements that share a slot of an
// OpenTable. Elements keep their insertion order. The zero value is an empty
// bucket.
type Bucket []string

// Len returns the number of elements in the bucket.
func (b Bucket) Len() int {
	return len(b)
}

// Contains reports whether value is in the bucket.
func (b Bucket) Contains(value string) bool {
	return slices.Contains(b, value)
}

// Append adds value to the end of the bucket without checking for
// duplicates.
func (b *Bucket) Append(value string) {
	*b = append(*b, value)
}

// Remove finds value and removes it, preserving the order of the remaining
// elements. It reports whether value was found.
func (b *Bucket) Remove(value string) bool {
	i := slices.Index(*b, value)
	if i < 0 {
		return false
	}
	*b = slices.Delete(*b, i, i+1)
	return true
}
