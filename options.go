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
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const (
	// DefaultCapacity is the capacity of a newly created table.
	DefaultCapacity = 16
	// DefaultUpperLoadFactor is the load factor above which a table grows.
	DefaultUpperLoadFactor = 0.75
	// DefaultLowerLoadFactor is the load factor below which a table shrinks.
	DefaultLowerLoadFactor = 0.25
)

// Option configures a table while it is being created.
type Option interface {
	apply(c *config)
}

type config struct {
	capacity  int
	factors   loadFactors
	hash      func(string) uint64
	allocator Allocator
	logger    *zap.Logger
}

func defaultConfig() config {
	return config{
		capacity: DefaultCapacity,
		factors: loadFactors{
			upper: DefaultUpperLoadFactor,
			lower: DefaultLowerLoadFactor,
		},
		hash:      xxhash.Sum64String,
		allocator: defaultAllocator{},
		logger:    zap.NewNop(),
	}
}

// newConfig applies options over the defaults and validates the result.
func newConfig(options []Option) (config, error) {
	c := defaultConfig()
	for _, op := range options {
		op.apply(&c)
	}
	if err := c.factors.validate(); err != nil {
		return config{}, err
	}
	return c, nil
}

type optionFunc func(c *config)

func (f optionFunc) apply(c *config) {
	f(c)
}

// WithLoadFactors specifies the load factors that trigger growing and
// shrinking. Both must lie in [0, 1) and lower must be at most half of
// upper, otherwise construction fails with ErrInvalidLoadFactors.
func WithLoadFactors(upper, lower float64) Option {
	return optionFunc(func(c *config) {
		c.factors = loadFactors{upper: upper, lower: lower}
	})
}

// WithInitialCapacity specifies the initial capacity of a table. The value
// is rounded up to the next power of two, with a minimum of 1.
func WithInitialCapacity(n int) Option {
	return optionFunc(func(c *config) {
		c.capacity = normalizeCapacity(n)
	})
}

// WithHash specifies the hash function to use. The function must be
// deterministic. The default is xxhash.
func WithHash(hash func(value string) uint64) Option {
	return optionFunc(func(c *config) {
		if hash != nil {
			c.hash = hash
		}
	})
}

// WithLogger specifies a logger that receives a debug record for every
// resize. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// WithAllocator specifies the Allocator used for backing stores.
func WithAllocator(allocator Allocator) Option {
	return optionFunc(func(c *config) {
		c.allocator = allocator
	})
}

// normalizeCapacity returns the smallest power of two >= n, and 1 for n < 1.
func normalizeCapacity(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Allocator specifies an interface for allocating and releasing the backing
// stores of the tables. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// A store handed to a Free method is never touched by the table again. If
// the allocator manages memory manually then Close must be called on every
// table to release its final store.
type Allocator interface {
	// AllocSlots should return a slice equivalent to make([]Slot, n).
	AllocSlots(n int) []Slot

	// AllocBuckets should return a slice equivalent to make([]Bucket, n).
	AllocBuckets(n int) []Bucket

	// FreeSlots can optionally release the memory associated with a slice
	// returned by AllocSlots.
	FreeSlots(v []Slot)

	// FreeBuckets can optionally release the memory associated with a slice
	// returned by AllocBuckets.
	FreeBuckets(v []Bucket)
}

type defaultAllocator struct{}

func (defaultAllocator) AllocSlots(n int) []Slot {
	return make([]Slot, n)
}

func (defaultAllocator) AllocBuckets(n int) []Bucket {
	return make([]Bucket, n)
}

func (defaultAllocator) FreeSlots(v []Slot) {
}

func (defaultAllocator) FreeBuckets(v []Bucket) {
}
