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
	"strings"

	"github.com/pkg/errors"
)

// Each slot of a ClosedTable is in one of three states. A deleted slot
// (tombstone) holds no element but, unlike an empty slot, does not end a
// probe sequence.
type ctrl uint8

const (
	ctrlEmpty ctrl = iota
	ctrlFull
	ctrlDeleted
)

// Slot holds a single element of a ClosedTable.
type Slot struct {
	value string
	ctrl  ctrl
}

// ClosedTable is a set of strings stored in a flat array of slots with
// collisions resolved by quadratic probing. Deletion leaves a tombstone so
// that probe sequences passing through the slot are not cut short.
//
// A ClosedTable is NOT goroutine-safe.
type ClosedTable struct {
	config
	// slots is capacity in length, and capacity is always a power of two.
	slots []Slot
	// The number of full slots (i.e. the number of elements in the set).
	used int
	// The number of tombstones. Tombstones count towards the growth
	// threshold so that at least one slot is always empty, which bounds
	// unsuccessful probes.
	deleted int
}

// NewClosed constructs an empty ClosedTable. Without options the table has
// a capacity of 16 and load factors of 0.75 and 0.25.
func NewClosed(options ...Option) (*ClosedTable, error) {
	c, err := newConfig(options)
	if err != nil {
		return nil, err
	}
	c.logger = c.logger.Named("closed")
	t := &ClosedTable{config: c}
	t.reset(c.capacity)
	t.checkInvariants()
	return t, nil
}

// NewClosedFrom constructs a ClosedTable and adds each element of data to
// it in order. Duplicates are ignored.
func NewClosedFrom(data []string, options ...Option) (*ClosedTable, error) {
	t, err := NewClosed(options...)
	if err != nil {
		return nil, err
	}
	for _, v := range data {
		if _, err := t.TryAdd(v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add inserts value if it is not already present and reports whether it was
// inserted. Add panics if the table is saturated, see TryAdd.
func (t *ClosedTable) Add(value string) bool {
	added, err := t.TryAdd(value)
	if err != nil {
		panic(err)
	}
	return added
}

// TryAdd inserts value if it is not already present and reports whether it
// was inserted. It returns ErrSaturated if the probe sequence was exhausted
// without finding value or a free slot, which cannot happen unless the
// table's invariants have been broken.
func (t *ClosedTable) TryAdd(value string) (bool, error) {
	match, free := t.find(value)
	if match >= 0 {
		return false, nil
	}
	if free < 0 {
		return false, errors.Wrapf(ErrSaturated, "add(%q): capacity=%d used=%d deleted=%d",
			value, len(t.slots), t.used, t.deleted)
	}

	s := &t.slots[free]
	if s.ctrl == ctrlDeleted {
		t.deleted--
	}
	*s = Slot{value: value, ctrl: ctrlFull}
	t.used++

	switch capacity := len(t.slots); {
	case t.factors.shouldGrow(t.used, capacity):
		resize(t, grownCapacity(capacity), t.logger)
	case t.factors.shouldGrow(t.used+t.deleted, capacity):
		// The elements fit but the tombstones do not: rebuild at the same
		// capacity to turn them back into empty slots.
		resize(t, capacity, t.logger)
	}
	t.checkInvariants()
	return true, nil
}

// Contains reports whether value is in the set.
func (t *ClosedTable) Contains(value string) bool {
	match, _ := t.find(value)
	return match >= 0
}

// Delete removes value from the set and reports whether it was present.
func (t *ClosedTable) Delete(value string) bool {
	match, _ := t.find(value)
	if match < 0 {
		return false
	}

	t.slots[match] = Slot{ctrl: ctrlDeleted}
	t.used--
	t.deleted++

	if capacity := len(t.slots); t.factors.shouldShrink(t.used, capacity) {
		resize(t, shrunkCapacity(capacity), t.logger)
	}
	t.checkInvariants()
	return true
}

// Len returns the number of elements in the set.
func (t *ClosedTable) Len() int {
	return t.used
}

// Capacity returns the number of slots in the table.
func (t *ClosedTable) Capacity() int {
	return len(t.slots)
}

// LoadFactor returns Len()/Capacity().
func (t *ClosedTable) LoadFactor() float64 {
	return loadFactor(t.used, len(t.slots))
}

// All calls yield sequentially for each element in the set, in slot order.
// If yield returns false, iteration stops. The set can be mutated during
// iteration, though there is no guarantee that the mutations will be
// visible to the iteration.
func (t *ClosedTable) All(yield func(value string) bool) {
	// Snapshot the slots so that iteration remains valid if the table is
	// resized during iteration.
	slots := t.slots
	for i := range slots {
		if slots[i].ctrl == ctrlFull && !yield(slots[i].value) {
			return
		}
	}
}

// Close releases the backing store to the configured allocator. It is
// unnecessary to close a table using the default allocator. It is invalid to
// use a table after it has been closed, though Close itself is idempotent.
func (t *ClosedTable) Close() {
	if t.slots != nil {
		t.allocator.FreeSlots(t.slots)
		t.slots = nil
	}
	t.used = 0
	t.deleted = 0
}

// find walks the probe sequence for value. It returns the index of the slot
// holding value (or -1) and the index of the first slot value could be
// inserted into (or -1). The walk stops at the first empty slot, at the
// matching slot, or after visiting every slot once.
func (t *ClosedTable) find(value string) (match, free int) {
	match, free = -1, -1
	seq := makeProbeSeq(t.hash(value), len(t.slots))
	for i := 0; i < len(t.slots); i, seq = i+1, seq.next() {
		s := &t.slots[seq.offset]
		switch s.ctrl {
		case ctrlEmpty:
			if free < 0 {
				free = int(seq.offset)
			}
			return match, free
		case ctrlDeleted:
			if free < 0 {
				free = int(seq.offset)
			}
		case ctrlFull:
			if s.value == value {
				return int(seq.offset), free
			}
		}
	}
	return match, free
}

func (t *ClosedTable) drain() []string {
	values := make([]string, 0, t.used)
	t.All(func(value string) bool {
		values = append(values, value)
		return true
	})
	t.allocator.FreeSlots(t.slots)
	t.slots = nil
	return values
}

func (t *ClosedTable) reset(n int) {
	t.slots = t.allocator.AllocSlots(n)
	clear(t.slots)
	t.deleted = 0
}

// insertUnique places value in the first non-full slot of its probe
// sequence. Used by resize, where the store holds no tombstones and value
// is known to be absent.
func (t *ClosedTable) insertUnique(value string) {
	seq := makeProbeSeq(t.hash(value), len(t.slots))
	for i := 0; i < len(t.slots); i, seq = i+1, seq.next() {
		s := &t.slots[seq.offset]
		if s.ctrl != ctrlFull {
			*s = Slot{value: value, ctrl: ctrlFull}
			return
		}
	}
	panic(fmt.Sprintf("insertUnique(%q): no free slot in %d slots", value, len(t.slots)))
}

func (t *ClosedTable) checkInvariants() {
	if !invariants {
		return
	}
	if c := len(t.slots); c < 1 || c&(c-1) != 0 {
		panic(fmt.Sprintf("invariant failed: capacity %d is not a power of two\n%s", c, t.debugString()))
	}

	// For every full slot, verify we can find the value through its probe
	// sequence. Count the number of used and deleted slots.
	var used, deleted int
	for i := range t.slots {
		s := &t.slots[i]
		switch s.ctrl {
		case ctrlDeleted:
			deleted++
		case ctrlFull:
			if match, _ := t.find(s.value); match != i {
				panic(fmt.Sprintf("invariant failed: slot(%d): %q found at %d\n%s",
					i, s.value, match, t.debugString()))
			}
			used++
		}
	}
	if used != t.used {
		panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d\n%s",
			used, t.used, t.debugString()))
	}
	if deleted != t.deleted {
		panic(fmt.Sprintf("invariant failed: found %d tombstones, but deleted count is %d\n%s",
			deleted, t.deleted, t.debugString()))
	}
	if t.used+t.deleted >= len(t.slots) {
		panic(fmt.Sprintf("invariant failed: no empty slot left\n%s", t.debugString()))
	}
}

func (t *ClosedTable) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  deleted=%d\n", len(t.slots), t.used, t.deleted)
	for i := range t.slots {
		switch s := &t.slots[i]; s.ctrl {
		case ctrlEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case ctrlDeleted:
			fmt.Fprintf(&buf, "  %4d: deleted\n", i)
		default:
			fmt.Fprintf(&buf, "  %4d: %q [h=%016x]\n", i, s.value, t.hash(s.value))
		}
	}
	return buf.String()
}
