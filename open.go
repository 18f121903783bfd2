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

import (
	"fmt"
	"slices"
	"strings"
)

// OpenTable is a set of strings stored in an array of buckets (chaining).
// Capacity is the number of buckets. A bucket whose last element is removed
// is released, so empty buckets are always nil.
//
// An OpenTable is NOT goroutine-safe.
type OpenTable struct {
	config
	// buckets is capacity in length, and capacity is always a power of two.
	buckets []Bucket
	// The number of elements across all buckets.
	used int
}

// NewOpen constructs an empty OpenTable. Without options the table has 16
// buckets and load factors of 0.75 and 0.25.
func NewOpen(options ...Option) (*OpenTable, error) {
	c, err := newConfig(options)
	if err != nil {
		return nil, err
	}
	c.logger = c.logger.Named("open")
	t := &OpenTable{config: c}
	t.reset(c.capacity)
	t.checkInvariants()
	return t, nil
}

// NewOpenFrom constructs an OpenTable and adds each element of data to it
// in order. Duplicates are ignored.
func NewOpenFrom(data []string, options ...Option) (*OpenTable, error) {
	t, err := NewOpen(options...)
	if err != nil {
		return nil, err
	}
	for _, v := range data {
		t.Add(v)
	}
	return t, nil
}

// Add inserts value if it is not already present and reports whether it was
// inserted.
func (t *OpenTable) Add(value string) bool {
	b := &t.buckets[clamp(t.hash(value), len(t.buckets))]
	if b.Contains(value) {
		return false
	}
	b.Append(value)
	t.used++

	if capacity := len(t.buckets); t.factors.shouldGrow(t.used, capacity) {
		resize(t, grownCapacity(capacity), t.logger)
	}
	t.checkInvariants()
	return true
}

// Contains reports whether value is in the set.
func (t *OpenTable) Contains(value string) bool {
	return t.buckets[clamp(t.hash(value), len(t.buckets))].Contains(value)
}

// Delete removes value from the set and reports whether it was present.
func (t *OpenTable) Delete(value string) bool {
	b := &t.buckets[clamp(t.hash(value), len(t.buckets))]
	if *b == nil || !b.Remove(value) {
		return false
	}
	if b.Len() == 0 {
		*b = nil
	}
	t.used--

	if capacity := len(t.buckets); t.factors.shouldShrink(t.used, capacity) {
		resize(t, shrunkCapacity(capacity), t.logger)
	}
	t.checkInvariants()
	return true
}

// Len returns the number of elements in the set.
func (t *OpenTable) Len() int {
	return t.used
}

// Capacity returns the number of buckets in the table.
func (t *OpenTable) Capacity() int {
	return len(t.buckets)
}

// LoadFactor returns Len()/Capacity().
func (t *OpenTable) LoadFactor() float64 {
	return loadFactor(t.used, len(t.buckets))
}

// Bucket returns the bucket at index i, or nil if it is empty. The returned
// bucket must not be modified and is only valid until the next mutation.
func (t *OpenTable) Bucket(i int) Bucket {
	return t.buckets[i]
}

// All calls yield sequentially for each element in the set, bucket by
// bucket. If yield returns false, iteration stops.
func (t *OpenTable) All(yield func(value string) bool) {
	buckets := t.buckets
	for _, b := range buckets {
		for _, v := range b {
			if !yield(v) {
				return
			}
		}
	}
}

// Close releases the backing store to the configured allocator. It is
// invalid to use a table after it has been closed, though Close itself is
// idempotent.
func (t *OpenTable) Close() {
	if t.buckets != nil {
		t.allocator.FreeBuckets(t.buckets)
		t.buckets = nil
	}
	t.used = 0
}

func (t *OpenTable) drain() []string {
	values := make([]string, 0, t.used)
	for _, b := range t.buckets {
		values = append(values, b...)
	}
	t.allocator.FreeBuckets(t.buckets)
	t.buckets = nil
	return values
}

func (t *OpenTable) reset(n int) {
	t.buckets = t.allocator.AllocBuckets(n)
	clear(t.buckets)
}

// insertUnique appends value to its bucket under the current capacity.
func (t *OpenTable) insertUnique(value string) {
	t.buckets[clamp(t.hash(value), len(t.buckets))].Append(value)
}

func (t *OpenTable) checkInvariants() {
	if !invariants {
		return
	}
	if c := len(t.buckets); c < 1 || c&(c-1) != 0 {
		panic(fmt.Sprintf("invariant failed: capacity %d is not a power of two\n%s", c, t.debugString()))
	}

	var used int
	for i, b := range t.buckets {
		if b != nil && len(b) == 0 {
			panic(fmt.Sprintf("invariant failed: bucket(%d) is empty but not released\n%s", i, t.debugString()))
		}
		for j, v := range b {
			if want := clamp(t.hash(v), len(t.buckets)); want != i {
				panic(fmt.Sprintf("invariant failed: bucket(%d): %q belongs in bucket %d\n%s",
					i, v, want, t.debugString()))
			}
			if slices.Contains(b[:j], v) {
				panic(fmt.Sprintf("invariant failed: bucket(%d): duplicate %q\n%s", i, v, t.debugString()))
			}
		}
		used += len(b)
	}
	if used != t.used {
		panic(fmt.Sprintf("invariant failed: found %d elements, but used count is %d\n%s",
			used, t.used, t.debugString()))
	}
}

func (t *OpenTable) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d\n", len(t.buckets), t.used)
	for i, b := range t.buckets {
		if b == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %4d: %q\n", i, []string(b))
	}
	return buf.String()
}
