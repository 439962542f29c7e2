// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// PrevOutput is the output an input spends.
type PrevOutput struct {
	// TxOut carries the locking script and the amount being spent. The
	// amount is committed to by segwit signatures.
	TxOut *wire.TxOut

	// RedeemScript is the multisig script a p2sh output commits to. It is
	// required for p2sh outputs and ignored otherwise.
	RedeemScript []byte

	// PrevTx is the transaction that created the output. It is optional
	// and only used when exporting legacy inputs to a PSBT.
	PrevTx *wire.MsgTx
}

// redeemDescriptor ties the keys entitled to sign an input to the script
// that is committed to in their signatures.
type redeemDescriptor struct {
	pattern ScriptPattern

	// keys are the keys entitled to sign. Only some of them may carry
	// private material.
	keys []*KeyPair

	// redeemScript is the script committed to in legacy signatures.
	redeemScript []byte

	// sigSlots is the number of signatures the unlocking script needs.
	sigSlots int

	// foreignKey is set when the key of a single key output is not the
	// one the output pays to.
	foreignKey bool
}

// newRedeemDescriptor builds the redeem descriptor for spending prevOut with
// key.
func newRedeemDescriptor(key *KeyPair,
	prevOut PrevOutput) (*redeemDescriptor, error) {

	if key == nil {
		return nil, ErrNilKey
	}
	if prevOut.TxOut == nil {
		return nil, fmt.Errorf("%w: missing previous output",
			ErrUnsupportedScript)
	}

	pkScript := prevOut.TxOut.PkScript
	pattern, err := ClassifyScript(pkScript)
	if err != nil {
		return nil, err
	}

	switch pattern {
	case PatternPubKey:
		pushes, err := txscript.PushedData(pkScript)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedScript, err)
		}
		pubKey, err := btcec.ParsePubKey(pushes[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad p2pk key: %v",
				ErrUnsupportedScript, err)
		}

		return &redeemDescriptor{
			pattern:      pattern,
			keys:         []*KeyPair{key},
			redeemScript: pkScript,
			sigSlots:     1,
			foreignKey:   !pubKey.IsEqual(key.PubKey()),
		}, nil

	case PatternPubKeyHash:
		script, err := payToPubKeyHashScript(key)
		if err != nil {
			return nil, err
		}

		return &redeemDescriptor{
			pattern:      pattern,
			keys:         []*KeyPair{key},
			redeemScript: script,
			sigSlots:     1,
			foreignKey:   !bytes.Equal(script, pkScript),
		}, nil

	case PatternWitnessPubKeyHash:
		if !key.Compressed() {
			return nil, fmt.Errorf("%w: p2wkh outputs can only be "+
				"spent with a compressed key", ErrUnsupportedScript)
		}

		script, err := payToPubKeyHashScript(key)
		if err != nil {
			return nil, err
		}

		// A p2wkh script is OP_0 <20 byte hash>.
		keyHash := btcutil.Hash160(key.SerializedPubKey())

		return &redeemDescriptor{
			pattern:      pattern,
			keys:         []*KeyPair{key},
			redeemScript: script,
			sigSlots:     1,
			foreignKey:   !bytes.Equal(pkScript[2:], keyHash),
		}, nil

	case PatternScriptHash:
		return multiSigDescriptor(key, pkScript, prevOut.RedeemScript)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScript, pattern)
	}
}

// multiSigDescriptor builds the descriptor for a p2sh output redeemed by a
// bare multisig script. The supplied key takes the place of its public key
// in the script. All other keys are public-only and are assumed to share
// its derivation path.
func multiSigDescriptor(key *KeyPair, pkScript,
	redeemScript []byte) (*redeemDescriptor, error) {

	if len(redeemScript) == 0 {
		return nil, ErrMissingRedeemScript
	}

	// A p2sh script is OP_HASH160 <20 byte hash> OP_EQUAL.
	if !bytes.Equal(pkScript[2:22], btcutil.Hash160(redeemScript)) {
		return nil, ErrRedeemScriptMismatch
	}

	if txscript.GetScriptClass(redeemScript) != txscript.MultiSigTy {
		return nil, fmt.Errorf("%w: p2sh redeem script is not multisig",
			ErrUnsupportedScript)
	}

	_, numSigs, err := txscript.CalcMultiSigStats(redeemScript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScript, err)
	}

	var keys []*KeyPair
	tokenizer := txscript.MakeScriptTokenizer(0, redeemScript)
	for tokenizer.Next() {
		data := tokenizer.Data()
		if len(data) != secp256k1.PubKeyBytesLenCompressed &&
			len(data) != secp256k1.PubKeyBytesLenUncompressed {

			continue
		}

		pubKey, err := btcec.ParsePubKey(data)
		if err != nil {
			return nil, fmt.Errorf("%w: bad multisig key: %v",
				ErrUnsupportedScript, err)
		}

		if pubKey.IsEqual(key.PubKey()) {
			keys = append(keys, key)
			continue
		}

		keys = append(keys, &KeyPair{
			pubKey: pubKey,
			compressed: len(data) ==
				secp256k1.PubKeyBytesLenCompressed,
			path: key.Path(),
		})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScript, err)
	}

	return &redeemDescriptor{
		pattern:      PatternScriptHash,
		keys:         keys,
		redeemScript: redeemScript,
		sigSlots:     numSigs,
	}, nil
}

// firstKey returns the first key of the descriptor. It is the key whose
// derivation path is shared with co-signers and whose public key shapes
// single-key placeholders.
func (r *redeemDescriptor) firstKey() *KeyPair {
	return r.keys[0]
}

// signingKey returns the first key that carries private material.
func (r *redeemDescriptor) signingKey() fn.Option[*KeyPair] {
	return fn.Find(r.keys, (*KeyPair).HasPrivKey)
}

// payToPubKeyHashScript returns the canonical p2pkh script of key.
func payToPubKeyHashScript(key *KeyPair) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(key.SerializedPubKey())).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}
