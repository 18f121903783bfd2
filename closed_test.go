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
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// constantHash sends every value to the same home slot.
func constantHash(h uint64) func(string) uint64 {
	return func(string) uint64 {
		return h
	}
}

// numericHash hashes the decimal string "n" to n.
func numericHash(value string) uint64 {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		panic(err)
	}
	return n
}

func newTestClosed(t *testing.T, options ...Option) *ClosedTable {
	tbl, err := NewClosed(options...)
	require.NoError(t, err)
	return tbl
}

func TestClosedDefaults(t *testing.T) {
	tbl := newTestClosed(t)
	require.Equal(t, DefaultCapacity, tbl.Capacity())
	require.Equal(t, 0, tbl.Len())
	require.Equal(t, loadFactors{upper: 0.75, lower: 0.25}, tbl.factors)
}

func TestClosedBasic(t *testing.T) {
	test := func(t *testing.T, tbl *ClosedTable) {
		const count = 100

		e := make(map[string]struct{})
		for i := 0; i < count; i++ {
			require.False(t, tbl.Contains(strconv.Itoa(i)))
		}

		// Insert.
		for i := 0; i < count; i++ {
			k := strconv.Itoa(i)
			require.True(t, tbl.Add(k))
			e[k] = struct{}{}
			require.True(t, tbl.Contains(k))
			require.EqualValues(t, i+1, tbl.Len())
			require.Equal(t, e, toBuiltinMap(tbl))
		}

		// Duplicates.
		for i := 0; i < count; i++ {
			require.False(t, tbl.Add(strconv.Itoa(i)))
			require.EqualValues(t, count, tbl.Len())
		}

		// Delete.
		for i := 0; i < count; i++ {
			k := strconv.Itoa(i)
			require.True(t, tbl.Delete(k))
			delete(e, k)
			require.EqualValues(t, count-i-1, tbl.Len())
			require.False(t, tbl.Contains(k))
			require.False(t, tbl.Delete(k))
			require.Equal(t, e, toBuiltinMap(tbl))
		}
	}

	t.Run("normal", func(t *testing.T) {
		test(t, newTestClosed(t))
	})

	t.Run("degenerate", func(t *testing.T) {
		for _, v := range []uint64{0, ^uint64(0)} {
			t.Run(fmt.Sprintf("%016x", v), func(t *testing.T) {
				test(t, newTestClosed(t, WithHash(constantHash(v))))
			})
		}
		for i := 0; i < 10; i++ {
			v := rand.Uint64()
			t.Run(fmt.Sprintf("%016x", v), func(t *testing.T) {
				test(t, newTestClosed(t, WithHash(constantHash(v))))
			})
		}
	})
}

func TestClosedGrowShrink(t *testing.T) {
	tbl := newTestClosed(t)
	for i := 0; i < 12; i++ {
		tbl.Add(fmt.Sprintf("v%d", i))
	}
	require.Equal(t, 16, tbl.Capacity())

	// 13/16 = 0.8125 > 0.75.
	tbl.Add("v12")
	require.Equal(t, 13, tbl.Len())
	require.Equal(t, 32, tbl.Capacity())

	// 7/32 < 0.25 shrinks to 16; 4/16 is exactly on the lower bound.
	for i := 0; i < 9; i++ {
		require.True(t, tbl.Delete(fmt.Sprintf("v%d", i)))
	}
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, 16, tbl.Capacity())

	require.True(t, tbl.Delete("v9"))
	require.Equal(t, 8, tbl.Capacity())
	for i := 10; i < 13; i++ {
		require.True(t, tbl.Contains(fmt.Sprintf("v%d", i)))
	}
}

func TestClosedCapacityFloor(t *testing.T) {
	tbl := newTestClosed(t, WithInitialCapacity(1))
	require.Equal(t, 1, tbl.Capacity())

	// 1/1 > 0.75.
	require.True(t, tbl.Add("a"))
	require.Equal(t, 2, tbl.Capacity())

	require.True(t, tbl.Delete("a"))
	require.Equal(t, 1, tbl.Capacity())

	// Nothing left to shrink.
	require.False(t, tbl.Delete("a"))
	require.Equal(t, 1, tbl.Capacity())
	require.False(t, tbl.Contains("a"))

	require.True(t, tbl.Add(""))
	require.True(t, tbl.Contains(""))
	require.Equal(t, 2, tbl.Capacity())
}

func TestClosedTombstones(t *testing.T) {
	tbl := newTestClosed(t, WithHash(constantHash(0)), WithLoadFactors(0.75, 0))

	// With a constant hash the probe sequence is 0, 1, 3, 6, ...
	for _, v := range []string{"a", "b", "c"} {
		require.True(t, tbl.Add(v))
	}
	match, _ := tbl.find("c")
	require.Equal(t, 3, match)

	// Deleting the head of the chain must not hide the rest of it.
	require.True(t, tbl.Delete("a"))
	require.Equal(t, ctrlDeleted, tbl.slots[0].ctrl)
	require.Equal(t, 1, tbl.deleted)
	require.False(t, tbl.Contains("a"))
	require.True(t, tbl.Contains("b"))
	require.True(t, tbl.Contains("c"))

	// A duplicate found past the tombstone is not inserted a second time.
	require.False(t, tbl.Add("c"))
	require.Equal(t, 2, tbl.Len())

	// A new value reuses the first tombstone on its probe sequence.
	require.True(t, tbl.Add("d"))
	match, _ = tbl.find("d")
	require.Equal(t, 0, match)
	require.Equal(t, 0, tbl.deleted)
}

func TestClosedTombstonePurge(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tbl := newTestClosed(t,
		WithHash(numericHash),
		WithLoadFactors(0.75, 0),
		WithLogger(zap.New(core)))

	// Values 0..11 occupy their home slots.
	for i := 0; i < 12; i++ {
		tbl.Add(strconv.Itoa(i))
	}
	require.Equal(t, 16, tbl.Capacity())

	// Each round leaves a tombstone behind and fills an empty slot. Once the
	// tombstones push past the upper load factor the table is rebuilt at the
	// same capacity.
	for i := 12; i < 100; i++ {
		require.True(t, tbl.Delete(strconv.Itoa(i-12)))
		require.True(t, tbl.Add(strconv.Itoa(i)))
		require.Equal(t, 12, tbl.Len())
		require.Equal(t, 16, tbl.Capacity())
		require.LessOrEqual(t, tbl.used+tbl.deleted, 12)
	}
	for i := 88; i < 100; i++ {
		require.True(t, tbl.Contains(strconv.Itoa(i)))
	}

	resizes := logs.FilterMessage("resize").AllUntimed()
	require.NotEmpty(t, resizes)
	for _, entry := range resizes {
		require.EqualValues(t, 16, entry.ContextMap()["from"])
		require.EqualValues(t, 16, entry.ContextMap()["to"])
	}
}

func TestClosedSaturated(t *testing.T) {
	tbl := newTestClosed(t, WithInitialCapacity(4))

	// Fill every slot behind the resize policy's back.
	for i := range tbl.slots {
		tbl.slots[i] = Slot{value: fmt.Sprintf("x%d", i), ctrl: ctrlFull}
	}
	tbl.used = len(tbl.slots)

	added, err := tbl.TryAdd("y")
	require.False(t, added)
	require.ErrorIs(t, err, ErrSaturated)

	// A duplicate is still reported as such.
	added, err = tbl.TryAdd("x0")
	require.NoError(t, err)
	require.False(t, added)

	require.Panics(t, func() { tbl.Add("y") })
	require.False(t, tbl.Contains("y"))
}

func TestClosedFrom(t *testing.T) {
	tbl, err := NewClosedFrom([]string{"a", "b", "a", "", "c", "b"})
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, map[string]struct{}{"a": {}, "b": {}, "c": {}, "": {}}, toBuiltinMap(tbl))

	_, err = NewClosedFrom([]string{"a"}, WithLoadFactors(0.5, 0.5))
	require.ErrorIs(t, err, ErrInvalidLoadFactors)
}

func TestClosedIterateMutate(t *testing.T) {
	tbl := newTestClosed(t)
	for i := 0; i < 100; i++ {
		tbl.Add(strconv.Itoa(i))
	}
	e := toBuiltinMap(tbl)

	// Iterate over the table, resizing it periodically. We should see all
	// of the elements that were originally in the table because All takes
	// a snapshot of the slots before iterating.
	vals := make(map[string]struct{})
	tbl.All(func(v string) bool {
		if (len(vals) % 10) == 0 {
			resize(tbl, 2*tbl.Capacity(), tbl.logger)
		}
		vals[v] = struct{}{}
		return true
	})
	require.Equal(t, e, vals)
}

func TestInvalidLoadFactors(t *testing.T) {
	testCases := []struct {
		upper, lower float64
		valid        bool
	}{
		{0.75, 0.25, true},
		{0.75, 0, true},
		{0.5, 0.25, true},
		{0.99, 0.49, true},
		{0.99, 0.5, false},
		{0.99, 0.98, false},
		{0.5, 0.5, false},
		{0.25, 0.75, false},
		{1, 0.25, false},
		{1.5, 0.25, false},
		{0.75, -0.1, false},
		{math.NaN(), 0.25, false},
		{0.75, math.NaN(), false},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprintf("upper=%g,lower=%g", c.upper, c.lower), func(t *testing.T) {
			_, errClosed := NewClosed(WithLoadFactors(c.upper, c.lower))
			_, errOpen := NewOpen(WithLoadFactors(c.upper, c.lower))
			if c.valid {
				require.NoError(t, errClosed)
				require.NoError(t, errOpen)
			} else {
				require.ErrorIs(t, errClosed, ErrInvalidLoadFactors)
				require.ErrorIs(t, errOpen, ErrInvalidLoadFactors)
			}
		})
	}
}

func TestInitialCapacity(t *testing.T) {
	testCases := []struct {
		initialCapacity  int
		expectedCapacity int
	}{
		{0, 1},
		{1, 1},
		{3, 4},
		{16, 16},
		{17, 32},
		{1000, 1024},
	}
	for _, c := range testCases {
		t.Run("", func(t *testing.T) {
			closed := newTestClosed(t, WithInitialCapacity(c.initialCapacity))
			require.Equal(t, c.expectedCapacity, closed.Capacity())
			open := newTestOpen(t, WithInitialCapacity(c.initialCapacity))
			require.Equal(t, c.expectedCapacity, open.Capacity())
		})
	}
}

type countingAllocator struct {
	defaultAllocator
	alloc int
	free  int
}

func (a *countingAllocator) AllocSlots(n int) []Slot {
	a.alloc++
	return a.defaultAllocator.AllocSlots(n)
}

func (a *countingAllocator) AllocBuckets(n int) []Bucket {
	a.alloc++
	return a.defaultAllocator.AllocBuckets(n)
}

func (a *countingAllocator) FreeSlots(_ []Slot) {
	a.free++
}

func (a *countingAllocator) FreeBuckets(_ []Bucket) {
	a.free++
}

func TestAllocator(t *testing.T) {
	for _, name := range []string{"closed", "open"} {
		t.Run(name, func(t *testing.T) {
			a := &countingAllocator{}
			var tbl interface {
				HashSet
				Close()
			}
			if name == "closed" {
				tbl = newTestClosed(t, WithAllocator(a))
			} else {
				tbl = newTestOpen(t, WithAllocator(a))
			}

			for i := 0; i < 100; i++ {
				tbl.Add(strconv.Itoa(i))
			}

			// 16 -> 32 -> 64 -> 128 -> 256
			const expected = 5
			require.EqualValues(t, expected, a.alloc)
			require.EqualValues(t, expected-1, a.free)
			require.Equal(t, 256, tbl.Capacity())

			tbl.Close()
			require.EqualValues(t, expected, a.free)
			tbl.Close()
			require.EqualValues(t, expected, a.free)
		})
	}
}
