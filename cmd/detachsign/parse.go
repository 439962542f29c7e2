// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/detachsign/signer"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// encKeyPrefix marks an encrypted key argument.
const encKeyPrefix = "enc:"

var (
	// errWrongNetwork is returned when a key belongs to a network other
	// than the selected one.
	errWrongNetwork = errors.New("key is not for the selected network")

	// errBadPrevOut is returned when a previous output argument can't be
	// parsed.
	errBadPrevOut = errors.New("previous output must be " +
		"<amount>:<pkscript hex>[:<redeem script hex>]")
)

// parseTx decodes a hex encoded transaction.
func parseTx(rawTx string) (*wire.MsgTx, error) {
	txBytes, err := hex.DecodeString(strings.TrimSpace(rawTx))
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	return tx, nil
}

// parseKey parses a key argument. It accepts a WIF private key, a hex
// encoded public key, an extended key followed by a derivation path such as
// tpub.../m/0/1, or an encrypted key produced by the encryptkey command.
func parseKey(arg string, params *chaincfg.Params) (*signer.KeyPair, error) {
	arg = strings.TrimSpace(arg)

	switch {
	case strings.HasPrefix(arg, encKeyPrefix):
		return parseEncryptedKey(strings.TrimPrefix(arg, encKeyPrefix))

	case strings.Contains(arg, "/"):
		return parseExtendedKey(arg, params)

	case isHexPubKey(arg):
		pubKey, err := hex.DecodeString(arg)
		if err != nil {
			return nil, err
		}

		return signer.ParsePubKeyPair(pubKey)
	}

	wif, err := btcutil.DecodeWIF(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	if !wif.IsForNet(params) {
		return nil, fmt.Errorf("%w: WIF key, network %v",
			errWrongNetwork, params.Name)
	}

	return signer.NewKeyPairFromWIF(wif), nil
}

// isHexPubKey reports whether arg looks like a serialized public key.
func isHexPubKey(arg string) bool {
	switch len(arg) {
	case 2 * secp256k1.PubKeyBytesLenCompressed,
		2 * secp256k1.PubKeyBytesLenUncompressed:

	default:
		return false
	}

	_, err := hex.DecodeString(arg)

	return err == nil
}

// parseExtendedKey derives the key at the path following an extended key.
func parseExtendedKey(arg string,
	params *chaincfg.Params) (*signer.KeyPair, error) {

	extKey, pathStr, _ := strings.Cut(arg, "/")

	root, err := hdkeychain.NewKeyFromString(extKey)
	if err != nil {
		return nil, fmt.Errorf("invalid extended key: %w", err)
	}
	if !root.IsForNet(params) {
		return nil, fmt.Errorf("%w: extended key, network %v",
			errWrongNetwork, params.Name)
	}

	path, err := signer.ParseDerivationPath(pathStr)
	if err != nil {
		return nil, err
	}

	return signer.DeriveKeyPair(root, path.Path)
}

// parseEncryptedKey parses the <pubkey hex>:<ciphertext hex> body of an
// encrypted key.
func parseEncryptedKey(body string) (*signer.KeyPair, error) {
	pubHex, cipherHex, ok := strings.Cut(body, ":")
	if !ok {
		return nil, fmt.Errorf("encrypted key must be %s<pubkey "+
			"hex>:<ciphertext hex>", encKeyPrefix)
	}

	pubBytes, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, fmt.Errorf("invalid public key hex: %w", err)
	}
	pubKey, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext hex: %w", err)
	}

	return signer.NewEncryptedKeyPair(pubKey, ciphertext), nil
}

// formatEncryptedKey returns the argument form of an encrypted key.
func formatEncryptedKey(pubKey *btcec.PublicKey, ciphertext []byte) string {
	return fmt.Sprintf("%s%x:%x", encKeyPrefix,
		pubKey.SerializeCompressed(), ciphertext)
}

// parsePrevOut parses a previous output argument.
func parsePrevOut(arg string) (signer.PrevOutput, error) {
	parts := strings.Split(strings.TrimSpace(arg), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return signer.PrevOutput{}, errBadPrevOut
	}

	amount, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || amount < 0 || amount > btcutil.MaxSatoshi {
		return signer.PrevOutput{}, fmt.Errorf("%w: bad amount %q",
			errBadPrevOut, parts[0])
	}

	pkScript, err := hex.DecodeString(parts[1])
	if err != nil || len(pkScript) == 0 {
		return signer.PrevOutput{}, fmt.Errorf("%w: bad pkscript %q",
			errBadPrevOut, parts[1])
	}

	prevOut := signer.PrevOutput{
		TxOut: wire.NewTxOut(amount, pkScript),
	}
	if len(parts) == 3 {
		prevOut.RedeemScript, err = hex.DecodeString(parts[2])
		if err != nil {
			return signer.PrevOutput{}, fmt.Errorf("%w: bad redeem "+
				"script %q", errBadPrevOut, parts[2])
		}
	}

	return prevOut, nil
}
