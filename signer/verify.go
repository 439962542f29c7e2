// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// SignatureError records the underlying error when validating a transaction
// input signature.
type SignatureError struct {
	InputIndex uint32
	Error      error
}

// Verify executes the unlocking data of every input of tx against the output
// it spends. It returns a SignatureError for each input that does not
// validate, so an empty result means the transaction is fully signed. The
// final error return is reserved for inputs that cannot be checked at all.
func Verify(tx *wire.MsgTx, prevOuts []PrevOutput) ([]SignatureError,
	error) {

	switch {
	case tx == nil || len(tx.TxIn) == 0:
		return nil, ErrNoInputs

	case len(prevOuts) != len(tx.TxIn):
		return nil, fmt.Errorf("%w: %d inputs, %d previous outputs",
			ErrInputCountMismatch, len(tx.TxIn), len(prevOuts))
	}

	for i, prevOut := range prevOuts {
		if prevOut.TxOut == nil {
			return nil, inputErr(i, fmt.Errorf("%w: missing "+
				"previous output", ErrUnsupportedScript))
		}
	}

	fetcher, err := prevOutFetcher(tx, prevOuts)
	if err != nil {
		return nil, err
	}
	hashCache := txscript.NewTxSigHashes(tx, fetcher)

	var sigErrors []SignatureError
	for i, prevOut := range prevOuts {
		vm, err := txscript.NewEngine(
			prevOut.TxOut.PkScript, tx, i,
			txscript.StandardVerifyFlags, nil, hashCache,
			prevOut.TxOut.Value, fetcher,
		)
		if err == nil {
			err = vm.Execute()
		}
		if err != nil {
			sigErrors = append(sigErrors, SignatureError{
				InputIndex: uint32(i),
				Error:      err,
			})
		}
	}

	return sigErrors, nil
}
