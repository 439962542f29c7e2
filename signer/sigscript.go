// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// errMalformedSigScript is returned when an unlocking script does not have
// the shape of the placeholder for its pattern.
var errMalformedSigScript = errors.New("malformed unlocking script")

// emptySigScript returns the placeholder unlocking script for desc. Every
// signature slot holds an OP_0.
func emptySigScript(desc *redeemDescriptor) ([]byte, error) {
	bldr := txscript.NewScriptBuilder()

	switch desc.pattern {
	case PatternPubKey:
		bldr.AddOp(txscript.OP_0)

	case PatternPubKeyHash:
		bldr.AddOp(txscript.OP_0)
		bldr.AddData(desc.firstKey().SerializedPubKey())

	case PatternScriptHash:
		// The leading OP_0 is consumed by the off-by-one bug in
		// OP_CHECKMULTISIG.
		bldr.AddOp(txscript.OP_0)
		for i := 0; i < desc.sigSlots; i++ {
			bldr.AddOp(txscript.OP_0)
		}
		bldr.AddData(desc.redeemScript)

	case PatternWitnessPubKeyHash:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScript,
			desc.pattern)
	}

	return bldr.Script()
}

// emptyWitness returns the placeholder witness for desc. Only the witness
// pattern has one: an empty signature followed by the public key.
func emptyWitness(desc *redeemDescriptor) (wire.TxWitness, error) {
	switch desc.pattern {
	case PatternPubKey, PatternPubKeyHash, PatternScriptHash:
		return nil, nil

	case PatternWitnessPubKeyHash:
		return wire.TxWitness{
			{}, desc.firstKey().SerializedPubKey(),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScript,
			desc.pattern)
	}
}

// sigSlotBounds returns how many pushes precede and follow the signature
// slots in the unlocking script of a legacy pattern.
func sigSlotBounds(pattern ScriptPattern) (int, int, error) {
	switch pattern {
	case PatternPubKey:
		return 0, 0, nil

	// <sig> <pubkey>
	case PatternPubKeyHash:
		return 0, 1, nil

	// OP_0 <sig>... <redeemScript>
	case PatternScriptHash:
		return 1, 1, nil

	default:
		return 0, 0, fmt.Errorf("%w: %v has no unlocking script slots",
			ErrUnsupportedScript, pattern)
	}
}

// insertSignature places sig at the given signature slot of sigScript.
// Signatures already present keep their relative order and move right to
// make room, and one placeholder is consumed. ErrNoSignatureSlot is returned
// when every slot is already filled.
func insertSignature(sigScript, sig []byte, slot int,
	pattern ScriptPattern) ([]byte, error) {

	prefix, suffix, err := sigSlotBounds(pattern)
	if err != nil {
		return nil, err
	}

	if !txscript.IsPushOnlyScript(sigScript) {
		return nil, fmt.Errorf("%w: not push only",
			errMalformedSigScript)
	}
	pushes, err := txscript.PushedData(sigScript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedSigScript, err)
	}

	total := len(pushes)
	numSlots := total - prefix - suffix
	if numSlots <= 0 || slot >= numSlots {
		return nil, fmt.Errorf("%w: %d pushes, slot %d",
			errMalformedSigScript, total, slot)
	}

	sigPushes := pushes[prefix : total-suffix]
	if len(sigPushes[numSlots-1]) != 0 {
		return nil, ErrNoSignatureSlot
	}

	result := make([][]byte, 0, total)
	result = append(result, pushes[:prefix]...)

	// Copy the signatures already in place, dropping placeholders, and
	// slip ours in once we reach its slot.
	pos := 0
	for _, push := range sigPushes {
		if pos == slot {
			result = append(result, sig)
			pos++
		}
		if len(push) != 0 {
			result = append(result, push)
			pos++
		}
	}

	// Pad the remaining slots with placeholders.
	for ; pos < numSlots; pos++ {
		if pos == slot {
			result = append(result, sig)
			continue
		}
		result = append(result, nil)
	}

	result = append(result, pushes[total-suffix:]...)

	bldr := txscript.NewScriptBuilder()
	for _, push := range result {
		bldr.AddData(push)
	}

	return bldr.Script()
}

// hasSignatureFrom reports whether a signature slot of sigScript holds a
// valid signature by pubKey over sigHash.
func hasSignatureFrom(sigScript []byte, pattern ScriptPattern, sigHash []byte,
	pubKey *btcec.PublicKey) bool {

	prefix, suffix, err := sigSlotBounds(pattern)
	if err != nil {
		return false
	}

	pushes, err := txscript.PushedData(sigScript)
	if err != nil || len(pushes) < prefix+suffix {
		return false
	}

	for _, push := range pushes[prefix : len(pushes)-suffix] {
		// Skip placeholders and anything too short to carry the
		// sighash byte.
		if len(push) < 2 {
			continue
		}

		sig, err := ecdsa.ParseDERSignature(push[:len(push)-1])
		if err != nil {
			continue
		}
		if sig.Verify(sigHash, pubKey) {
			return true
		}
	}

	return false
}
