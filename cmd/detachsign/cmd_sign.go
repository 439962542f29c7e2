// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/detachsign/signer"
	"github.com/jessevdk/go-flags"
)

type signCommand struct {
	RawTx           string   `long:"rawtx" description:"The hex encoded transaction to sign" required:"true"`
	Keys            []string `long:"key" description:"The key for each input, in input order: a WIF private key, a hex public key, an extended key with a derivation path (xprv.../m/0/1) or an enc: key from the encryptkey command" required:"true"`
	PrevOuts        []string `long:"prevout" description:"The output spent by each input, in input order, as <amount in satoshi>:<pkscript hex>[:<redeem script hex>]" required:"true"`
	PSBT            bool     `long:"psbt" description:"Also print a base64 PSBT with the partial signatures and derivation paths for co-signers"`
	Verify          bool     `long:"verify" description:"Run the script engine on every input after signing"`
	PassphraseStdin bool     `long:"passphrase-stdin" description:"Read the passphrase of encrypted keys from the first line of stdin instead of prompting"`

	cfg *config
	out io.Writer

	// passphrase is set when the command is executed unless a test
	// already provided one.
	passphrase passphraseFunc
}

func newSignCommand(cfg *config, out io.Writer) *signCommand {
	return &signCommand{
		cfg: cfg,
		out: out,
	}
}

func (x *signCommand) Register(parser *flags.Parser) error {
	_, err := parser.AddCommand(
		"sign",
		"Sign a transaction with the given keys",
		"Sign every input of a transaction for which a private key is "+
			"given. Inputs without one keep an empty placeholder "+
			"so a co-signer can complete them later.",
		x,
	)
	return err
}

func (x *signCommand) Execute(_ []string) error {
	tx, err := parseTx(x.RawTx)
	if err != nil {
		return err
	}

	keys := make([]*signer.KeyPair, 0, len(x.Keys))
	for i, arg := range x.Keys {
		key, err := parseKey(arg, x.cfg.params)
		if err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		keys = append(keys, key)
	}

	prevOuts := make([]signer.PrevOutput, 0, len(x.PrevOuts))
	for i, arg := range x.PrevOuts {
		prevOut, err := parsePrevOut(arg)
		if err != nil {
			return fmt.Errorf("prevout %d: %w", i, err)
		}
		prevOuts = append(prevOuts, prevOut)
	}

	if err := x.unlockKeys(keys); err != nil {
		return err
	}
	defer func() {
		for _, key := range keys {
			key.Lock()
		}
	}()

	checkOutputs(tx)

	result, err := signer.Sign(tx, keys, prevOuts)
	if err != nil {
		return fmt.Errorf("unable to sign transaction: %w", err)
	}

	return x.printResult(result, prevOuts)
}

// unlockKeys asks for a passphrase once and unlocks every encrypted key with
// it.
func (x *signCommand) unlockKeys(keys []*signer.KeyPair) error {
	var locked []*signer.KeyPair
	for _, key := range keys {
		if key.Locked() {
			locked = append(locked, key)
		}
	}
	if len(locked) == 0 {
		return nil
	}

	if x.passphrase == nil {
		x.passphrase = newPassphraseReader(x.PassphraseStdin)
	}
	passphrase, err := x.passphrase("Key passphrase: ")
	if err != nil {
		return err
	}
	defer func() {
		for i := range passphrase {
			passphrase[i] = 0
		}
	}()

	for _, key := range locked {
		if err := key.Unlock(passphrase); err != nil {
			return fmt.Errorf("unable to unlock key %x: %w",
				key.SerializedPubKey(), err)
		}
	}

	dsgnLog.Debugf("Unlocked %d encrypted keys", len(locked))

	return nil
}

// checkOutputs warns about outputs that would not be relayed.
func checkOutputs(tx *wire.MsgTx) {
	for i, txOut := range tx.TxOut {
		err := txrules.CheckOutput(txOut, txrules.DefaultRelayFeePerKb)
		if err != nil {
			dsgnLog.Warnf("Output %d: %v", i, err)
		}
	}
}

// printResult writes the signed transaction, the status of each input and
// optionally the verification outcome and a PSBT.
func (x *signCommand) printResult(result *signer.Result,
	prevOuts []signer.PrevOutput) error {

	tx := result.Tx

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return err
	}

	summary := summarize(tx, prevOuts)
	dsgnLog.Infof("Signed tx %v: %d of %d inputs signed, weight %v",
		tx.TxHash(), len(result.Inputs)-len(result.Skipped()),
		len(result.Inputs), summary.weight)
	for _, warning := range summary.warnings() {
		dsgnLog.Warnf("Fee: %v", warning)
	}

	_, _ = fmt.Fprintf(x.out, "txid: %v\n", tx.TxHash())
	_, _ = fmt.Fprintf(x.out, "tx: %x\n", buf.Bytes())
	_, _ = fmt.Fprintf(x.out, "vsize: %v\n", summary.vsize())
	_, _ = fmt.Fprintf(x.out, "fee: %v (%v)\n", summary.fee,
		summary.feeRate)
	for _, in := range result.Inputs {
		if in.Status == signer.InputSkipped {
			_, _ = fmt.Fprintf(x.out, "input %d: %v (%v): %v\n",
				in.Index, in.Status, in.Pattern, in.Err)

			continue
		}
		_, _ = fmt.Fprintf(x.out, "input %d: %v (%v)\n", in.Index,
			in.Status, in.Pattern)
	}

	if x.Verify {
		sigErrs, err := signer.Verify(tx, prevOuts)
		if err != nil {
			return err
		}
		for _, sigErr := range sigErrs {
			_, _ = fmt.Fprintf(x.out, "input %d: incomplete: %v\n",
				sigErr.InputIndex, sigErr.Error)
		}
		if len(sigErrs) == 0 {
			_, _ = fmt.Fprintln(x.out, "verify: ok")
		}
	}

	if x.PSBT {
		packet, err := signer.NewPacket(result, prevOuts)
		if err != nil {
			return err
		}
		encoded, err := packet.B64Encode()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(x.out, "psbt: %s\n", encoded)
	}

	return nil
}
