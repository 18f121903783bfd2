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

// Collection is a general container of strings that FacadeSet can adapt to
// the Set contract. A Collection may allow duplicates.
type Collection interface {
	// Add inserts value and reports whether the collection changed.
	Add(value string) bool
	// Contains reports whether value is in the collection.
	Contains(value string) bool
	// Remove removes one occurrence of value and reports whether one was
	// found.
	Remove(value string) bool
	// Len returns the number of elements in the collection.
	Len() int
}

// FacadeSet wraps a Collection and gives it set semantics, so that
// arbitrary containers can be compared with the hash tables through one
// interface. FacadeSet does no hashing of its own.
type FacadeSet struct {
	c Collection
}

// NewFacadeSet returns a FacadeSet wrapping c. Elements already in c are
// kept as they are.
func NewFacadeSet(c Collection) *FacadeSet {
	return &FacadeSet{c: c}
}

// Add inserts value unless it is already present, even if the underlying
// collection would accept duplicates.
func (f *FacadeSet) Add(value string) bool {
	if f.c.Contains(value) {
		return false
	}
	return f.c.Add(value)
}

// Contains reports whether value is in the underlying collection.
func (f *FacadeSet) Contains(value string) bool {
	return f.c.Contains(value)
}

// Delete removes value from the underlying collection.
func (f *FacadeSet) Delete(value string) bool {
	return f.c.Remove(value)
}

// Len returns the size of the underlying collection.
func (f *FacadeSet) Len() int {
	return f.c.Len()
}
