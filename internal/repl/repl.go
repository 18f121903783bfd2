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

// Package repl implements an interactive shell over a single strset table.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/strset"
	"github.com/cockroachdb/strset/internal/bench"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrQuit is returned by Exec when the shell should exit.
var ErrQuit = errors.New("quit")

const (
	prompt      = "strset> "
	historyName = ".strset_history"
)

const helpText = `commands:
  add <value>        add value, reports whether it was new; quote as
                     a Go string ("", "a\tb") for special values
  contains <value>   report whether value is present
  delete <value>     remove value, reports whether it was present
  len                number of values
  cap                table capacity
  lf                 load factor, len/cap
  use open|closed    switch to a fresh table of the given kind
  load <file>        add every line of file
  help               show this text
  quit               leave the shell`

type table interface {
	strset.HashSet
	Close()
}

// REPL holds the table being edited.
type REPL struct {
	kind    string
	table   table
	options []strset.Option
	logger  *zap.Logger
}

// New returns a shell over a fresh table of the given kind, "open" or
// "closed". The options are applied to every table the shell creates.
func New(kind string, logger *zap.Logger, options ...strset.Option) (*REPL, error) {
	r := &REPL{options: options, logger: logger}
	if err := r.use(kind); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *REPL) use(kind string) error {
	var t table
	var err error
	switch kind {
	case "open":
		t, err = strset.NewOpen(r.options...)
	case "closed":
		t, err = strset.NewClosed(r.options...)
	default:
		return errors.Errorf("unknown table kind %q", kind)
	}
	if err != nil {
		return err
	}
	if r.table != nil {
		r.table.Close()
	}
	r.kind, r.table = kind, t
	r.logger.Debug("using table", zap.String("kind", kind))
	return nil
}

// Exec runs a single command line and returns its output. Values extend to
// the end of the line and may contain spaces. A value starting with a double
// quote is parsed as a Go string literal, so `add ""` adds the empty string.
func (r *REPL) Exec(line string) (string, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	value := func() (string, error) {
		if arg == "" {
			return "", errors.Errorf("%s: missing argument", cmd)
		}
		if !strings.HasPrefix(arg, `"`) {
			return arg, nil
		}
		v, err := strconv.Unquote(arg)
		if err != nil {
			return "", errors.Wrapf(err, "%s: malformed quoted value %s", cmd, arg)
		}
		return v, nil
	}

	switch strings.ToLower(cmd) {
	case "":
		return "", nil
	case "add":
		v, err := value()
		if err != nil {
			return "", err
		}
		return fmt.Sprint(r.table.Add(v)), nil
	case "contains":
		v, err := value()
		if err != nil {
			return "", err
		}
		return fmt.Sprint(r.table.Contains(v)), nil
	case "delete":
		v, err := value()
		if err != nil {
			return "", err
		}
		return fmt.Sprint(r.table.Delete(v)), nil
	case "len":
		return fmt.Sprint(r.table.Len()), nil
	case "cap":
		return fmt.Sprint(r.table.Capacity()), nil
	case "lf":
		return strconv.FormatFloat(r.table.LoadFactor(), 'f', 4, 64), nil
	case "use":
		if err := r.use(arg); err != nil {
			return "", err
		}
		return r.kind, nil
	case "load":
		path, err := value()
		if err != nil {
			return "", err
		}
		words, err := bench.LoadWords(context.Background(), path)
		if err != nil {
			return "", err
		}
		var added int
		for _, w := range words {
			if r.table.Add(w) {
				added++
			}
		}
		return fmt.Sprintf("added %d of %d", added, len(words)), nil
	case "help":
		return helpText, nil
	case "quit", "exit":
		return "", ErrQuit
	default:
		return "", errors.Errorf("unknown command %q, try help", cmd)
	}
}

// Run reads commands from the terminal until quit or end of input. When
// stdin is a terminal, history is kept in ~/.strset_history.
func (r *REPL) Run(out io.Writer) error {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	var historyFile string
	if isatty.IsTerminal(os.Stdin.Fd()) {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, historyName)
			if f, err := os.Open(historyFile); err == nil {
				_, _ = state.ReadHistory(f)
				f.Close()
			}
		}
	}

	defer r.table.Close()
	for {
		line, err := state.Prompt(prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			break
		} else if err != nil {
			return errors.Wrap(err, "reading command")
		}
		if strings.TrimSpace(line) != "" {
			state.AppendHistory(line)
		}

		res, err := r.Exec(line)
		if err == ErrQuit {
			break
		} else if err != nil {
			fmt.Fprintf(out, "(error) %v\n", err)
			continue
		}
		if res != "" {
			fmt.Fprintln(out, res)
		}
	}

	if historyFile != "" {
		f, err := os.Create(historyFile)
		if err != nil {
			r.logger.Warn("saving history", zap.Error(err))
			return nil
		}
		defer f.Close()
		if _, err := state.WriteHistory(f); err != nil {
			r.logger.Warn("saving history", zap.Error(err))
		}
	}
	return nil
}
