// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
)

// command is a subcommand that can add itself to the parser.
type command interface {
	Register(parser *flags.Parser) error
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	var flagErr *flags.Error
	if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
		// Help was requested, exit normally.
		_, _ = fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}

	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// run parses args and executes the selected command, writing its output to
// out.
func run(args []string, out io.Writer) error {
	cfg := defaultConfig()
	parser := newParser(cfg, out)

	_, err := parser.ParseArgs(args)

	return err
}

// newParser returns a parser for the global options in cfg with every
// command registered. Logging is set up right before a command runs.
func newParser(cfg *config, out io.Writer) *flags.Parser {
	parser := flags.NewParser(cfg, flags.HelpFlag|flags.PassDoubleDash)

	commands := []command{
		newSignCommand(cfg, out),
		newEncryptKeyCommand(cfg, out),
	}
	for _, cmd := range commands {
		if err := cmd.Register(parser); err != nil {
			// Registration only fails on malformed struct tags.
			panic(err)
		}
	}

	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}

		if err := cfg.validate(); err != nil {
			return err
		}

		if err := initLogging(cfg); err != nil {
			return err
		}
		defer closeLogRotator()

		return cmd.Execute(args)
	}

	return parser
}
