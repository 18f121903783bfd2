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

import "fmt"

// probeSeq maintains the state for a probe sequence. The sequence is a
// triangular progression of the form
//
//	p(i) := hash + (i^2 + i)/2 (mod mask+1)
//
// It turns out that this probe sequence visits every slot exactly once if
// the number of slots is a power of two, since (i^2+i)/2 is a bijection in
// Z/(2^m). See https://en.wikipedia.org/wiki/Quadratic_probing
type probeSeq struct {
	mask   uint64
	offset uint64
	index  uint64
}

func makeProbeSeq(hash uint64, capacity int) probeSeq {
	mask := uint64(capacity) - 1
	return probeSeq{
		mask:   mask,
		offset: hash & mask,
		index:  0,
	}
}

// next advances to the following probe. The offset accumulates
// 1, 2, 3, ... which sums to the triangular number (i^2+i)/2.
func (s probeSeq) next() probeSeq {
	s.index++
	s.offset = (s.offset + s.index) & s.mask
	return s
}

func (s probeSeq) String() string {
	return fmt.Sprintf("mask=%d offset=%d index=%d", s.mask, s.offset, s.index)
}

// clamp maps a hash to an index in a table of the given power-of-two
// capacity.
func clamp(hash uint64, capacity int) int {
	return int(hash & (uint64(capacity) - 1))
}
