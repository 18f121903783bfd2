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

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cockroachdb/strset"
	"github.com/cockroachdb/strset/internal/bench"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(benchCmd)

	defaults := bench.DefaultConfig()
	flags := benchCmd.Flags()
	flags.String("data1", defaults.Data1, "First word list, one string per line")
	flags.String("data2", defaults.Data2, "Second word list, one string per line")
	flags.Int("contains-iterations", defaults.ContainsIterations, "Timed Contains calls per variant")
	flags.Int("slow-contains-iterations", defaults.SlowContainsIterations, "Timed Contains calls for linear-time variants")
	flags.Float64("upper-load-factor", strset.DefaultUpperLoadFactor, "Load factor above which tables grow")
	flags.Float64("lower-load-factor", strset.DefaultLowerLoadFactor, "Load factor below which tables shrink")

	for _, name := range []string{
		"data1", "data2", "contains-iterations", "slow-contains-iterations",
		"upper-load-factor", "lower-load-factor",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compares the tables against reference collections",
	Long: `Compares the open and closed tables against a sorted slice, a linked
list, the builtin map and a swiss map. Reports the time to add two word
lists and the mean time of Contains for a few probe strings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bench.DefaultConfig()
		cfg.Data1 = viper.GetString("data1")
		cfg.Data2 = viper.GetString("data2")
		cfg.ContainsIterations = viper.GetInt("contains-iterations")
		cfg.SlowContainsIterations = viper.GetInt("slow-contains-iterations")
		cfg.Options = []strset.Option{
			strset.WithLoadFactors(viper.GetFloat64("upper-load-factor"), viper.GetFloat64("lower-load-factor")),
			strset.WithLogger(logger),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Fail early on bad load factors instead of panicking inside a variant.
		if _, err := strset.NewClosed(cfg.Options...); err != nil {
			return err
		}
		tests, err := bench.Run(ctx, cfg, nil, logger)
		if perr := bench.Print(cmd.OutOrStdout(), tests); err == nil {
			err = perr
		}
		return err
	},
}
