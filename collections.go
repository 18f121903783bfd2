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
	"container/list"
	"slices"

	"github.com/cockroachdb/swiss"
)

// SortedCollection keeps its elements in a sorted slice and searches it
// with binary search.
type SortedCollection struct {
	values []string
}

// NewSortedCollection returns an empty SortedCollection.
func NewSortedCollection() *SortedCollection {
	return &SortedCollection{}
}

func (c *SortedCollection) Add(value string) bool {
	i, found := slices.BinarySearch(c.values, value)
	if found {
		return false
	}
	c.values = slices.Insert(c.values, i, value)
	return true
}

func (c *SortedCollection) Contains(value string) bool {
	_, found := slices.BinarySearch(c.values, value)
	return found
}

func (c *SortedCollection) Remove(value string) bool {
	i, found := slices.BinarySearch(c.values, value)
	if !found {
		return false
	}
	c.values = slices.Delete(c.values, i, i+1)
	return true
}

func (c *SortedCollection) Len() int {
	return len(c.values)
}

// ListCollection is a doubly linked list of strings. It accepts duplicates
// and searches linearly.
type ListCollection struct {
	l *list.List
}

// NewListCollection returns an empty ListCollection.
func NewListCollection() *ListCollection {
	return &ListCollection{l: list.New()}
}

func (c *ListCollection) Add(value string) bool {
	c.l.PushBack(value)
	return true
}

func (c *ListCollection) Contains(value string) bool {
	return c.find(value) != nil
}

func (c *ListCollection) Remove(value string) bool {
	e := c.find(value)
	if e == nil {
		return false
	}
	c.l.Remove(e)
	return true
}

func (c *ListCollection) Len() int {
	return c.l.Len()
}

func (c *ListCollection) find(value string) *list.Element {
	for e := c.l.Front(); e != nil; e = e.Next() {
		if e.Value.(string) == value {
			return e
		}
	}
	return nil
}

// MapCollection is backed by Go's builtin map.
type MapCollection map[string]struct{}

// NewMapCollection returns an empty MapCollection.
func NewMapCollection() MapCollection {
	return make(MapCollection)
}

func (c MapCollection) Add(value string) bool {
	if _, ok := c[value]; ok {
		return false
	}
	c[value] = struct{}{}
	return true
}

func (c MapCollection) Contains(value string) bool {
	_, ok := c[value]
	return ok
}

func (c MapCollection) Remove(value string) bool {
	if _, ok := c[value]; !ok {
		return false
	}
	delete(c, value)
	return true
}

func (c MapCollection) Len() int {
	return len(c)
}

// SwissCollection is backed by a swiss.Map.
type SwissCollection struct {
	m *swiss.Map[string, struct{}]
}

// NewSwissCollection returns an empty SwissCollection.
func NewSwissCollection() *SwissCollection {
	return &SwissCollection{m: swiss.New[string, struct{}](0)}
}

func (c *SwissCollection) Add(value string) bool {
	if _, ok := c.m.Get(value); ok {
		return false
	}
	c.m.Put(value, struct{}{})
	return true
}

func (c *SwissCollection) Contains(value string) bool {
	_, ok := c.m.Get(value)
	return ok
}

func (c *SwissCollection) Remove(value string) bool {
	if _, ok := c.m.Get(value); !ok {
		return false
	}
	c.m.Delete(value)
	return true
}

func (c *SwissCollection) Len() int {
	return c.m.Len()
}
