// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

// ScriptPattern is the spending pattern of a previous output script. The set
// is closed: every switch over it handles each pattern and maps anything else
// to ErrUnsupportedScript.
type ScriptPattern uint8

const (
	// PatternUnknown is the zero value and never returned alongside a nil
	// error.
	PatternUnknown ScriptPattern = iota

	// PatternPubKey is a pay-to-pubkey output.
	PatternPubKey

	// PatternPubKeyHash is a pay-to-pubkey-hash output.
	PatternPubKeyHash

	// PatternScriptHash is a pay-to-script-hash output redeemed by a
	// multisig script.
	PatternScriptHash

	// PatternWitnessPubKeyHash is a native segwit v0 pay-to-witness-
	// pubkey-hash output.
	PatternWitnessPubKeyHash
)

// String returns the name of the pattern.
func (p ScriptPattern) String() string {
	switch p {
	case PatternPubKey:
		return "p2pk"

	case PatternPubKeyHash:
		return "p2pkh"

	case PatternScriptHash:
		return "p2sh"

	case PatternWitnessPubKeyHash:
		return "p2wkh"

	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// IsWitness reports whether the pattern is spent through the witness.
func (p ScriptPattern) IsWitness() bool {
	return p == PatternWitnessPubKeyHash
}

// ClassifyScript returns the spending pattern of pkScript. Scripts outside
// the supported set are rejected with ErrUnsupportedScript.
func ClassifyScript(pkScript []byte) (ScriptPattern, error) {
	class := txscript.GetScriptClass(pkScript)
	switch class {
	case txscript.PubKeyTy:
		return PatternPubKey, nil

	case txscript.PubKeyHashTy:
		return PatternPubKeyHash, nil

	case txscript.ScriptHashTy:
		return PatternScriptHash, nil

	case txscript.WitnessV0PubKeyHashTy:
		return PatternWitnessPubKeyHash, nil

	default:
		return PatternUnknown, fmt.Errorf("%w: %v", ErrUnsupportedScript,
			class)
	}
}
