// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// errEmptyPassphrase is returned when the user enters an empty passphrase.
var errEmptyPassphrase = errors.New("passphrase must not be empty")

// passphraseFunc returns a passphrase, prompting with the given text when it
// reads from a terminal.
type passphraseFunc func(prompt string) ([]byte, error)

// newPassphraseReader returns a passphraseFunc that reads the first line of
// stdin when fromStdin is set and prompts on the terminal otherwise.
func newPassphraseReader(fromStdin bool) passphraseFunc {
	if fromStdin {
		reader := bufio.NewReader(os.Stdin)
		return func(_ string) ([]byte, error) {
			return readPassphraseLine(reader)
		}
	}

	return readTerminalPassphrase
}

// readPassphraseLine reads a single passphrase line from r.
func readPassphraseLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	passphrase := bytes.TrimRight(line, "\r\n")
	if len(passphrase) == 0 {
		return nil, errEmptyPassphrase
	}

	return passphrase, nil
}

// readTerminalPassphrase prompts for a passphrase without echoing it.
func readTerminalPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal, use " +
			"--passphrase-stdin")
	}

	_, _ = fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}

	if len(passphrase) == 0 {
		return nil, errEmptyPassphrase
	}

	return passphrase, nil
}
