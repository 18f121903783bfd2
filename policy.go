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
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// loadFactors is the resize policy shared by both tables. A table grows
// after an add that leaves Len()/Capacity() above upper, and shrinks after
// a delete that leaves it below lower.
type loadFactors struct {
	upper float64
	lower float64
}

func (f loadFactors) validate() error {
	// Written so that NaN fails every comparison and is rejected. Halving
	// a table below lower leaves it under 2*lower, which must not exceed
	// upper.
	if !(f.lower >= 0 && f.lower < f.upper && f.upper < 1 && 2*f.lower <= f.upper) {
		return errors.Wrapf(ErrInvalidLoadFactors, "upper=%g lower=%g", f.upper, f.lower)
	}
	return nil
}

func (f loadFactors) shouldGrow(used, capacity int) bool {
	return loadFactor(used, capacity) > f.upper
}

func (f loadFactors) shouldShrink(used, capacity int) bool {
	return capacity > 1 && loadFactor(used, capacity) < f.lower
}

func loadFactor(used, capacity int) float64 {
	return float64(used) / float64(capacity)
}

// grownCapacity and shrunkCapacity preserve the power-of-two invariant.
func grownCapacity(capacity int) int {
	return capacity * 2
}

func shrunkCapacity(capacity int) int {
	if capacity <= 1 {
		return 1
	}
	return capacity / 2
}

// rehasher is implemented by each table so that resize can rebuild it
// without knowing its storage layout.
type rehasher interface {
	HashSet
	// drain returns every live element and releases the current store.
	drain() []string
	// reset installs a fresh, empty store with n slots or buckets.
	reset(n int)
	// insertUnique inserts a value known not to be in the table. It must
	// not update the element count or run the resize policy.
	insertUnique(value string)
}

// resize rebuilds r with newCapacity slots, reinserting every element
// under the new capacity. Slot indices observed before the resize are
// meaningless afterwards.
func resize(r rehasher, newCapacity int, logger *zap.Logger) {
	oldCapacity := r.Capacity()
	values := r.drain()
	r.reset(newCapacity)
	for _, v := range values {
		r.insertUnique(v)
	}

	if ce := logger.Check(zap.DebugLevel, "resize"); ce != nil {
		ce.Write(
			zap.Int("from", oldCapacity),
			zap.Int("to", newCapacity),
			zap.Int("len", len(values)),
		)
	}
}
