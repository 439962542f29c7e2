// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"github.com/btcsuite/btcd/wire"
)

// InitTemplates overwrites the unlocking script and witness of every input
// with the empty placeholder for the pattern of the output it spends. The
// placeholders have one OP_0 per signature slot, so signatures can later be
// inserted by SignInputs, by this signer or by a co-signer.
//
// An input spending an unsupported output aborts the call. Inputs before it
// keep their new placeholders.
func InitTemplates(tx *wire.MsgTx, keys []*KeyPair,
	prevOuts []PrevOutput) error {

	if err := checkInputs(tx, keys, prevOuts); err != nil {
		return err
	}

	return initTemplates(tx, keys, prevOuts)
}

// initTemplates is InitTemplates without the precondition checks.
func initTemplates(tx *wire.MsgTx, keys []*KeyPair,
	prevOuts []PrevOutput) error {

	for i, txIn := range tx.TxIn {
		desc, err := newRedeemDescriptor(keys[i], prevOuts[i])
		if err != nil {
			return inputErr(i, err)
		}

		sigScript, err := emptySigScript(desc)
		if err != nil {
			return inputErr(i, err)
		}
		witness, err := emptyWitness(desc)
		if err != nil {
			return inputErr(i, err)
		}

		txIn.SignatureScript = sigScript
		txIn.Witness = witness

		log.Tracef("Initialized %v placeholder for input %d (%v)",
			desc.pattern, i, txIn.PreviousOutPoint)
	}

	return nil
}
