// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

var (
	// ErrNoResult is returned when a packet is requested for a signing
	// call that did not produce a result.
	ErrNoResult = errors.New("no signing result")

	// ErrPrevTxMismatch is returned when the previous transaction of an
	// input does not create the output it spends.
	ErrPrevTxMismatch = errors.New("previous transaction does not match " +
		"the spent output")
)

// NewPacket exports a signing result as a BIP174 packet so co-signers can add
// their signatures with any PSBT capable tool. Every input carries the output
// it spends, its redeem script if it is p2sh, the signature produced by this
// call as a partial signature and the recorded derivation path of its key.
//
// BIP174 wants legacy inputs to carry the whole previous transaction as a
// non-witness UTXO. That is only possible when PrevOutput.PrevTx is set. For
// legacy inputs without it the spent output is exported as a witness UTXO,
// which strict PSBT implementations refuse.
func NewPacket(result *Result, prevOuts []PrevOutput) (*psbt.Packet, error) {
	if result == nil || result.Tx == nil {
		return nil, ErrNoResult
	}

	tx := result.Tx
	if len(prevOuts) != len(tx.TxIn) || len(result.Inputs) != len(tx.TxIn) {
		return nil, fmt.Errorf("%w: %d inputs, %d results, %d previous "+
			"outputs", ErrInputCountMismatch, len(tx.TxIn),
			len(result.Inputs), len(prevOuts))
	}

	// The packet wraps the transaction without any unlocking data.
	unsignedTx := tx.Copy()
	for _, txIn := range unsignedTx.TxIn {
		txIn.SignatureScript = nil
		txIn.Witness = nil
	}

	packet, err := psbt.NewFromUnsignedTx(unsignedTx)
	if err != nil {
		return nil, err
	}

	for i, res := range result.Inputs {
		in := &packet.Inputs[i]
		prevOut := prevOuts[i]

		err := addInputInfo(
			in, tx.TxIn[i].PreviousOutPoint, prevOut, res,
		)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}

		if res.PathPubKey == nil {
			continue
		}

		pkScript := prevOut.TxOut.PkScript
		recorded := result.KeyPaths.Lookup(pkScript)
		recorded.WhenSome(func(path DerivationPath) {
			derivation := &psbt.Bip32Derivation{
				PubKey:               res.PathPubKey,
				MasterKeyFingerprint: path.MasterKeyFingerprint,
				Bip32Path:            path.Path,
			}
			in.Bip32Derivation = append(
				in.Bip32Derivation, derivation,
			)
		})
	}

	return packet, nil
}

// addInputInfo adds the UTXO, redeem script and partial signature of a
// signed input to its packet input.
func addInputInfo(in *psbt.PInput, outPoint wire.OutPoint,
	prevOut PrevOutput, res InputResult) error {

	in.SighashType = txscript.SigHashAll

	if !res.Pattern.IsWitness() && prevOut.PrevTx != nil {
		err := checkPrevTx(prevOut.PrevTx, outPoint, prevOut.TxOut)
		if err != nil {
			return err
		}
		in.NonWitnessUtxo = prevOut.PrevTx
	} else {
		in.WitnessUtxo = &wire.TxOut{
			Value:    prevOut.TxOut.Value,
			PkScript: prevOut.TxOut.PkScript,
		}
	}

	if res.Pattern == PatternScriptHash {
		in.RedeemScript = prevOut.RedeemScript
	}

	if res.Status != InputSigned {
		return nil
	}

	in.PartialSigs = append(in.PartialSigs, &psbt.PartialSig{
		PubKey:    res.PubKey,
		Signature: res.Signature,
	})

	return nil
}

// checkPrevTx makes sure prevTx is the transaction that created txOut at
// outPoint.
func checkPrevTx(prevTx *wire.MsgTx, outPoint wire.OutPoint,
	txOut *wire.TxOut) error {

	prevHash := prevTx.TxHash()
	if prevHash != outPoint.Hash {
		return fmt.Errorf("%w: got %v, input spends %v",
			ErrPrevTxMismatch, prevHash, outPoint)
	}

	if int(outPoint.Index) >= len(prevTx.TxOut) {
		return fmt.Errorf("%w: %v has no output %d", ErrPrevTxMismatch,
			prevHash, outPoint.Index)
	}

	created := prevTx.TxOut[outPoint.Index]
	if created.Value != txOut.Value ||
		!bytes.Equal(created.PkScript, txOut.PkScript) {

		return fmt.Errorf("%w: output %v differs", ErrPrevTxMismatch,
			outPoint)
	}

	return nil
}
