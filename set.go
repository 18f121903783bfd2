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

// Package strset implements sets of strings backed by hash tables that
// resize themselves to keep their load factor inside a configured band.
//
// Two storage strategies satisfy the same contract:
//
//   - ClosedTable stores every element directly in a flat slot array and
//     resolves collisions with quadratic (triangular) probing. Deleted slots
//     are marked with tombstones so that probe chains stay intact.
//   - OpenTable stores an ordered Bucket of elements per slot (chaining).
//
// Both tables start with a capacity of 16 and double their capacity when
// Len()/Capacity() rises above the upper load factor (0.75 by default) and
// halve it when the ratio falls below the lower load factor (0.25 by
// default). Capacity is always a power of two so that a hash can be clamped
// to a slot index with a bitmask, and it never drops below 1.
//
// A resize reallocates the entire backing store and reinserts every element,
// so Add and Delete are amortized O(1) with occasional O(n) spikes.
//
// Neither table is goroutine-safe. Callers that share a table must serialize
// all mutations (including the resizes they trigger) behind one lock.
package strset

import "github.com/pkg/errors"

// Set is the contract shared by the hash tables and by FacadeSet.
type Set interface {
	// Add inserts value and reports whether it was newly inserted. Adding a
	// value that is already present is a no-op that returns false.
	Add(value string) bool
	// Contains reports whether value is currently stored.
	Contains(value string) bool
	// Delete removes value and reports whether it was present.
	Delete(value string) bool
	// Len returns the number of elements in the set.
	Len() int
}

// HashSet is a Set backed by a resizable hash table.
type HashSet interface {
	Set
	// Capacity returns the number of slots (ClosedTable) or buckets
	// (OpenTable) currently allocated. It is always a power of two.
	Capacity() int
	// LoadFactor returns Len()/Capacity().
	LoadFactor() float64
}

var (
	// ErrInvalidLoadFactors is returned when a table is constructed with a
	// lower load factor that is not strictly below the upper one, or with a
	// factor outside [0, 1).
	ErrInvalidLoadFactors = errors.New("strset: invalid load factors")

	// ErrSaturated is returned by ClosedTable.TryAdd when a full probe
	// sequence found neither the value nor a free slot. The resize policy
	// prevents this for every valid configuration.
	ErrSaturated = errors.New("strset: table saturated")
)

var (
	_ HashSet = (*ClosedTable)(nil)
	_ HashSet = (*OpenTable)(nil)
	_ Set     = (*FacadeSet)(nil)
)
