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

// Package bench measures how long the strset tables and a set of reference
// collections take to absorb a word list and to answer membership queries.
package bench

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/strset"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config describes one harness run.
type Config struct {
	// Data1 and Data2 are paths to word lists, one string per line.
	Data1 string
	Data2 string
	// Data1Probes and Data2Probes are looked up in sets filled with the
	// corresponding list.
	Data1Probes []string
	Data2Probes []string
	// ContainsIterations is the number of timed Contains calls, preceded by
	// as many untimed warm-up calls, for regular variants.
	ContainsIterations int
	// SlowContainsIterations is the number of timed Contains calls, with no
	// warm-up, for variants marked Slow.
	SlowContainsIterations int
	// Options are passed to the strset tables.
	Options []strset.Option
}

// DefaultConfig returns the configuration of the standard comparison.
func DefaultConfig() Config {
	return Config{
		Data1:                  "data1.txt",
		Data2:                  "data2.txt",
		Data1Probes:            []string{"hi", "-13170890158"},
		Data2Probes:            []string{"23", "hi"},
		ContainsIterations:     70000,
		SlowContainsIterations: 7000,
	}
}

// Variant is one set implementation under test.
type Variant struct {
	Name string
	New  func() strset.Set
	// Slow variants have linear lookups and run fewer Contains iterations.
	Slow bool
}

// DefaultVariants returns the two strset tables followed by facades over
// the reference collections.
func DefaultVariants(options ...strset.Option) []Variant {
	mustSet := func(s strset.Set, err error) strset.Set {
		if err != nil {
			panic(err)
		}
		return s
	}
	return []Variant{
		{Name: "OpenTable", New: func() strset.Set { return mustSet(strset.NewOpen(options...)) }},
		{Name: "ClosedTable", New: func() strset.Set { return mustSet(strset.NewClosed(options...)) }},
		{Name: "SortedSlice", New: func() strset.Set { return strset.NewFacadeSet(strset.NewSortedCollection()) }},
		{Name: "LinkedList", New: func() strset.Set { return strset.NewFacadeSet(strset.NewListCollection()) }, Slow: true},
		{Name: "GoMap", New: func() strset.Set { return strset.NewFacadeSet(strset.NewMapCollection()) }},
		{Name: "SwissMap", New: func() strset.Set { return strset.NewFacadeSet(strset.NewSwissCollection()) }},
	}
}

// Result is the measurement of one variant in one test.
type Result struct {
	Variant string
	Elapsed time.Duration
	Ops     int
}

// PerOp returns the mean duration of a single operation.
func (r Result) PerOp() time.Duration {
	if r.Ops == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Ops)
}

// Kind distinguishes bulk insertion tests from lookup tests.
type Kind int

const (
	// KindAdd reports the total time to add a whole word list.
	KindAdd Kind = iota
	// KindContains reports the mean time of one Contains call.
	KindContains
)

// Test is one measurement across all variants.
type Test struct {
	Name        string
	Description string
	Kind        Kind
	Results     []Result
}

// Run loads the word lists and performs the add and contains measurements
// for every variant. It checks ctx between measurements.
func Run(ctx context.Context, cfg Config, variants []Variant, logger *zap.Logger) ([]Test, error) {
	if variants == nil {
		variants = DefaultVariants(cfg.Options...)
	}

	var data1, data2 []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data1, err = LoadWords(gctx, cfg.Data1)
		return err
	})
	g.Go(func() (err error) {
		data2, err = LoadWords(gctx, cfg.Data2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("loaded word lists",
		zap.String("data1", cfg.Data1), zap.Int("data1_len", len(data1)),
		zap.String("data2", cfg.Data2), zap.Int("data2_len", len(data2)))

	var tests []Test
	for i, list := range []struct {
		name string
		data []string
	}{{"data1", data1}, {"data2", data2}} {
		test := Test{
			Name:        fmt.Sprintf("TEST %d", len(tests)+1),
			Description: fmt.Sprintf("time to add %s to every set", list.name),
			Kind:        KindAdd,
		}
		for _, v := range variants {
			if err := ctx.Err(); err != nil {
				return tests, err
			}
			test.Results = append(test.Results, measureAdd(v, list.data))
		}
		logger.Debug("finished add test", zap.Int("list", i+1))
		tests = append(tests, test)
	}

	for _, list := range []struct {
		name   string
		data   []string
		probes []string
	}{{"data1", data1, cfg.Data1Probes}, {"data2", data2, cfg.Data2Probes}} {
		for _, probe := range list.probes {
			test := Test{
				Name:        fmt.Sprintf("TEST %d", len(tests)+1),
				Description: fmt.Sprintf("time to check whether %q is in sets initialized with %s", probe, list.name),
				Kind:        KindContains,
			}
			for _, v := range variants {
				if err := ctx.Err(); err != nil {
					return tests, err
				}
				s := v.New()
				addAll(s, list.data)
				test.Results = append(test.Results, measureContains(v, s, probe, cfg))
			}
			logger.Debug("finished contains test", zap.String("probe", probe), zap.String("list", list.name))
			tests = append(tests, test)
		}
	}
	return tests, nil
}

func addAll(s strset.Set, data []string) {
	for _, v := range data {
		s.Add(v)
	}
}

func measureAdd(v Variant, data []string) Result {
	s := v.New()
	start := time.Now()
	addAll(s, data)
	return Result{Variant: v.Name, Elapsed: time.Since(start), Ops: len(data)}
}

func measureContains(v Variant, s strset.Set, probe string, cfg Config) Result {
	n := cfg.ContainsIterations
	if v.Slow {
		n = cfg.SlowContainsIterations
	} else {
		for i := 0; i < n; i++ {
			s.Contains(probe)
		}
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		s.Contains(probe)
	}
	return Result{Variant: v.Name, Elapsed: time.Since(start), Ops: n}
}

// Print writes a human readable report of tests to w. Add tests are
// reported in milliseconds, contains tests in nanoseconds per call.
func Print(w io.Writer, tests []Test) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, test := range tests {
		fmt.Fprintf(tw, "%s: %s\n", test.Name, test.Description)
		for i, r := range test.Results {
			switch test.Kind {
			case KindAdd:
				fmt.Fprintf(tw, "(%d)\t%s\t%.3f\tms\t\n", i+1, r.Variant, float64(r.Elapsed)/float64(time.Millisecond))
			case KindContains:
				fmt.Fprintf(tw, "(%d)\t%s\t%d\tns/op\t\n", i+1, r.Variant, r.PerOp().Nanoseconds())
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
