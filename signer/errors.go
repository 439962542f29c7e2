// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInputs is returned when the transaction to sign has no inputs.
	ErrNoInputs = errors.New("transaction has no inputs")

	// ErrNoOutputs is returned when the transaction to sign has no
	// outputs.
	ErrNoOutputs = errors.New("transaction has no outputs")

	// ErrInputCountMismatch is returned when the key list or the previous
	// output list is not index-aligned with the transaction inputs.
	ErrInputCountMismatch = errors.New("keys and previous outputs must " +
		"match the number of inputs")

	// ErrUnsupportedScript is returned when a previous output script does
	// not match any of the spending patterns the signer understands.
	ErrUnsupportedScript = errors.New("unsupported output script")

	// ErrMissingRedeemScript is returned when a p2sh output is spent
	// without the redeem script it commits to.
	ErrMissingRedeemScript = errors.New("p2sh output requires a redeem " +
		"script")

	// ErrRedeemScriptMismatch is returned when the supplied redeem script
	// does not hash to the script hash of the p2sh output.
	ErrRedeemScriptMismatch = errors.New("redeem script does not match " +
		"script hash")

	// ErrKeyLocked is returned when the signing key for an input holds
	// encrypted private material that has not been unlocked.
	ErrKeyLocked = errors.New("signing key is locked")

	// ErrMissingSigningKey marks an input that was left unsigned because
	// none of the keys in its redeem descriptor carries private material.
	ErrMissingSigningKey = errors.New("no private key for input")

	// ErrNoSignatureSlot marks an input that was left untouched because
	// its unlocking script has no free signature placeholder.
	ErrNoSignatureSlot = errors.New("no free signature slot")

	// ErrWrongKey marks an input that was left unsigned because its key
	// is not the one the spent output pays to.
	ErrWrongKey = errors.New("key does not match output script")

	// ErrAlreadySigned marks a multisig input that was left untouched
	// because it already carries a signature by the signing key.
	ErrAlreadySigned = errors.New("input already signed by this key")

	// ErrNilKey is returned when the key list holds a nil entry.
	ErrNilKey = errors.New("nil key pair")
)

// InputError records the input at which signing was aborted.
type InputError struct {
	// Index is the index of the input being processed.
	Index int

	// Err is the underlying error.
	Err error
}

// Error returns a human readable description of the error.
//
// NOTE: Satisfies the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("input %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *InputError) Unwrap() error {
	return e.Err
}

// inputErr wraps err with the index of the input that caused it.
func inputErr(idx int, err error) error {
	return &InputError{Index: idx, Err: err}
}
