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
	"github.com/cockroachdb/strset"
	"github.com/cockroachdb/strset/internal/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().String("table", "closed", "Table kind to start with: closed or open")
	viper.BindPFlag("table", replCmd.Flags().Lookup("table"))
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell over a single table",
	Long:  `Interactive shell over a single table. Type help for the list of commands.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := repl.New(viper.GetString("table"), logger, strset.WithLogger(logger))
		if err != nil {
			return err
		}
		return r.Run(cmd.OutOrStdout())
	},
}
