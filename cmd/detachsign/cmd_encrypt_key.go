// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/detachsign/pkg/keycrypt"
	"github.com/btcsuite/detachsign/signer"
	"github.com/jessevdk/go-flags"
)

var (
	// errPassphraseMismatch is returned when the confirmation does not
	// match the passphrase.
	errPassphraseMismatch = errors.New("passphrases do not match")

	// errUncompressedKey is returned for WIF keys flagged for
	// uncompressed public keys.
	errUncompressedKey = errors.New("only keys using compressed " +
		"public keys can be encrypted")
)

type encryptKeyCommand struct {
	WIF             string `long:"wif" description:"The WIF private key to encrypt" required:"true"`
	PassphraseStdin bool   `long:"passphrase-stdin" description:"Read the passphrase from the first line of stdin instead of prompting"`
	Light           bool   `long:"light" description:"Use cheap scrypt parameters; only meant for tests"`

	cfg *config
	out io.Writer

	passphrase passphraseFunc
}

func newEncryptKeyCommand(cfg *config, out io.Writer) *encryptKeyCommand {
	return &encryptKeyCommand{
		cfg: cfg,
		out: out,
	}
}

func (x *encryptKeyCommand) Register(parser *flags.Parser) error {
	_, err := parser.AddCommand(
		"encryptkey",
		"Encrypt a private key under a passphrase",
		"Encrypt a WIF private key under a passphrase and print it in "+
			"the enc: form accepted by the sign command.",
		x,
	)
	return err
}

func (x *encryptKeyCommand) Execute(_ []string) error {
	wif, err := btcutil.DecodeWIF(x.WIF)
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if !wif.IsForNet(x.cfg.params) {
		return fmt.Errorf("%w: WIF key, network %v", errWrongNetwork,
			x.cfg.params.Name)
	}

	// Encrypted keys are always used with their compressed public key.
	if !wif.CompressPubKey {
		return errUncompressedKey
	}

	if x.passphrase == nil {
		x.passphrase = newPassphraseReader(x.PassphraseStdin)
	}
	passphrase, err := x.passphrase("New passphrase: ")
	if err != nil {
		return err
	}

	// A second line can't be read from stdin, so only confirm what was
	// typed on the terminal.
	if !x.PassphraseStdin {
		confirm, err := x.passphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if !bytes.Equal(passphrase, confirm) {
			return errPassphraseMismatch
		}
	}

	params := keycrypt.DefaultParams
	if x.Light {
		params = keycrypt.FastParams
	}

	ciphertext, err := signer.EncryptPrivKey(
		wif.PrivKey, passphrase, params,
	)
	if err != nil {
		return err
	}

	dsgnLog.Debugf("Encrypted key with scrypt N=%d r=%d p=%d", params.N,
		params.R, params.P)

	_, _ = fmt.Fprintln(
		x.out, formatEncryptedKey(wif.PrivKey.PubKey(), ciphertext),
	)

	return nil
}
