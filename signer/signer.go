// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer signs the inputs of a transaction with keys supplied by the
// caller instead of a wallet. Each input is matched by index with a key pair
// and the output it spends. Supported outputs are p2pk, p2pkh, p2sh multisig
// and p2wkh; every signature uses SIGHASH_ALL.
//
// Signing an input for which no private key is available is not an error:
// the input keeps its placeholder and the result records it as skipped. A
// locked key or an unsupported output aborts the whole call.
package signer

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// InputStatus is the outcome of signing a single input.
type InputStatus uint8

const (
	// InputSigned means a signature was inserted into the input.
	InputSigned InputStatus = iota + 1

	// InputSkipped means the input was left as it was. The reason is
	// recorded in InputResult.Err.
	InputSkipped
)

// String returns a human readable status.
func (s InputStatus) String() string {
	switch s {
	case InputSigned:
		return "signed"

	case InputSkipped:
		return "skipped"

	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// InputResult records what happened to one input.
type InputResult struct {
	// Index is the input index.
	Index int

	// Pattern is the spending pattern of the output the input spends.
	Pattern ScriptPattern

	// Status tells whether the input was signed.
	Status InputStatus

	// Err is the reason a skipped input was left unsigned.
	Err error

	// Signature is the inserted signature including its sighash byte.
	Signature []byte

	// PubKey is the serialized public key of the signing key.
	PubKey []byte

	// PathPubKey is the serialized public key whose derivation path was
	// recorded for this input, nil if none was.
	PathPubKey []byte
}

// Result is the outcome of a signing call.
type Result struct {
	// Tx is the signed transaction. It is the transaction passed in by the
	// caller, modified in place.
	Tx *wire.MsgTx

	// Inputs holds one entry per input, in input order.
	Inputs []InputResult

	// KeyPaths holds the derivation paths recorded for the output scripts
	// spent by the transaction.
	KeyPaths *KeyPathRecord
}

// Skipped returns the inputs that were left unsigned.
func (r *Result) Skipped() []InputResult {
	return fn.Filter(r.Inputs, func(in InputResult) bool {
		return in.Status == InputSkipped
	})
}

// AllSigned reports whether this call added a signature to every input. A
// multisig input may still need signatures from co-signers.
func (r *Result) AllSigned() bool {
	return len(r.Skipped()) == 0
}

// Sign signs every input of tx it holds a key for. keys and prevOuts are
// aligned by index with the inputs of tx: keys[i] is the key for input i and
// prevOuts[i] the output it spends. tx is modified in place.
//
// All unlocking data is first reset to the placeholder for its pattern and
// then filled in. Inputs without a private key are skipped and keep their
// placeholder. An unsupported output or a locked key aborts the call with an
// *InputError. Inputs processed before the failing one keep their
// signatures, the rest keep their placeholders, and the transaction should be
// discarded.
func Sign(tx *wire.MsgTx, keys []*KeyPair,
	prevOuts []PrevOutput) (*Result, error) {

	if err := checkInputs(tx, keys, prevOuts); err != nil {
		return nil, err
	}

	log.Debugf("Signing tx %v with %d inputs and %d outputs", tx.TxHash(),
		len(tx.TxIn), len(tx.TxOut))

	if err := initTemplates(tx, keys, prevOuts); err != nil {
		return nil, err
	}

	return signInputs(tx, keys, prevOuts)
}

// SignInputs adds signatures to inputs whose placeholders were already set
// up, either by InitTemplates or by a co-signer working on the same
// transaction. Legacy signatures always go into the first signature slot,
// shifting signatures already present to the right. Sorting multisig
// signatures into script order is left to whoever combines the partial
// signatures.
func SignInputs(tx *wire.MsgTx, keys []*KeyPair,
	prevOuts []PrevOutput) (*Result, error) {

	if err := checkInputs(tx, keys, prevOuts); err != nil {
		return nil, err
	}

	return signInputs(tx, keys, prevOuts)
}

// checkInputs verifies the preconditions shared by all entry points. It
// never touches the transaction.
func checkInputs(tx *wire.MsgTx, keys []*KeyPair,
	prevOuts []PrevOutput) error {

	switch {
	case tx == nil || len(tx.TxIn) == 0:
		return ErrNoInputs

	case len(tx.TxOut) == 0:
		return ErrNoOutputs

	case len(keys) != len(tx.TxIn) || len(prevOuts) != len(tx.TxIn):
		return fmt.Errorf("%w: %d inputs, %d keys, %d previous outputs",
			ErrInputCountMismatch, len(tx.TxIn), len(keys),
			len(prevOuts))
	}

	for i, prevOut := range prevOuts {
		if prevOut.TxOut == nil {
			return inputErr(i, fmt.Errorf("%w: missing previous "+
				"output", ErrUnsupportedScript))
		}
	}

	return nil
}

// prevOutFetcher returns a fetcher for the outputs spent by tx.
func prevOutFetcher(tx *wire.MsgTx,
	prevOuts []PrevOutput) (*txscript.MultiPrevOutFetcher, error) {

	prevScripts := make([][]byte, len(prevOuts))
	inputValues := make([]btcutil.Amount, len(prevOuts))
	for i, prevOut := range prevOuts {
		prevScripts[i] = prevOut.TxOut.PkScript
		inputValues[i] = btcutil.Amount(prevOut.TxOut.Value)
	}

	return txauthor.TXPrevOutFetcher(tx, prevScripts, inputValues)
}

// signInputs is SignInputs without the precondition checks.
func signInputs(tx *wire.MsgTx, keys []*KeyPair,
	prevOuts []PrevOutput) (*Result, error) {

	fetcher, err := prevOutFetcher(tx, prevOuts)
	if err != nil {
		return nil, err
	}
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	result := &Result{
		Tx:       tx,
		Inputs:   make([]InputResult, 0, len(tx.TxIn)),
		KeyPaths: NewKeyPathRecord(),
	}
	for i := range tx.TxIn {
		res, err := signInput(
			tx, i, keys[i], prevOuts[i], sigHashes, result.KeyPaths,
		)
		if err != nil {
			return nil, inputErr(i, err)
		}

		result.Inputs = append(result.Inputs, res)
	}

	log.Tracef("Signed tx %v: %v", tx.TxHash(), newLogClosure(
		func() string {
			return spew.Sdump(tx)
		}),
	)

	return result, nil
}

// signInput signs input idx of tx. A nil error with a skipped result means
// the input could not be signed but the call may go on. Any error is fatal.
func signInput(tx *wire.MsgTx, idx int, key *KeyPair, prevOut PrevOutput,
	sigHashes *txscript.TxSigHashes,
	keyPaths *KeyPathRecord) (InputResult, error) {

	desc, err := newRedeemDescriptor(key, prevOut)
	if err != nil {
		return InputResult{}, err
	}

	res := InputResult{
		Index:   idx,
		Pattern: desc.pattern,
	}

	if desc.foreignKey {
		log.Warnf("Key %x does not own the output spent by input %d",
			key.SerializedPubKey(), idx)
		return res.skip(ErrWrongKey), nil
	}

	// Co-signers of a multisig script need to know which child key we
	// used. All keys of a multisig script share one path, so the first
	// key's is enough.
	pkScript := prevOut.TxOut.PkScript
	firstKey := desc.firstKey()
	firstKey.Path().WhenSome(func(path DerivationPath) {
		keyPaths.Put(pkScript, path)
		res.PathPubKey = firstKey.SerializedPubKey()
	})

	signingKey, err := desc.signingKey().UnwrapOrErr(ErrMissingSigningKey)
	if err != nil {
		log.Warnf("No local key found for input %d", idx)
		return res.skip(err), nil
	}

	privKey, err := signingKey.PrivKey()
	if err != nil {
		return InputResult{}, err
	}

	txIn := tx.TxIn[idx]

	var sig []byte
	switch desc.pattern {
	case PatternPubKey, PatternPubKeyHash, PatternScriptHash:
		if desc.pattern == PatternScriptHash {
			sigHash, err := txscript.CalcSignatureHash(
				desc.redeemScript, txscript.SigHashAll, tx, idx,
			)
			if err != nil {
				return InputResult{}, err
			}

			signed := hasSignatureFrom(
				txIn.SignatureScript, desc.pattern, sigHash,
				privKey.PubKey(),
			)
			if signed {
				log.Debugf("Input %d already carries our "+
					"signature", idx)
				return res.skip(ErrAlreadySigned), nil
			}
		}

		sig, err = txscript.RawTxInSignature(
			tx, idx, desc.redeemScript, txscript.SigHashAll,
			privKey,
		)
		if err != nil {
			return InputResult{}, err
		}

		// We can't know our position among co-signers running on
		// their own copies of this transaction, so we always claim
		// the first slot.
		sigScript, err := insertSignature(
			txIn.SignatureScript, sig, 0, desc.pattern,
		)
		if errors.Is(err, ErrNoSignatureSlot) {
			log.Warnf("Input %d already carries all %d signatures",
				idx, desc.sigSlots)
			return res.skip(err), nil
		}
		if err != nil {
			return InputResult{}, err
		}

		txIn.SignatureScript = sigScript
		txIn.Witness = nil

	case PatternWitnessPubKeyHash:
		// The script code of a p2wkh spend is the p2pkh script of the
		// signing key rather than the witness program.
		scriptCode, err := payToPubKeyHashScript(signingKey)
		if err != nil {
			return InputResult{}, err
		}

		sig, err = txscript.RawTxInWitnessSignature(
			tx, sigHashes, idx, prevOut.TxOut.Value, scriptCode,
			txscript.SigHashAll, privKey,
		)
		if err != nil {
			return InputResult{}, err
		}

		txIn.SignatureScript = nil
		txIn.Witness = wire.TxWitness{
			sig, signingKey.SerializedPubKey(),
		}

	default:
		return InputResult{}, fmt.Errorf("%w: %v", ErrUnsupportedScript,
			desc.pattern)
	}

	log.Debugf("Signed %v input %d with key %x", desc.pattern, idx,
		signingKey.SerializedPubKey())

	res.Status = InputSigned
	res.Signature = sig
	res.PubKey = signingKey.SerializedPubKey()

	return res, nil
}

// skip marks the result as skipped for reason.
func (r InputResult) skip(reason error) InputResult {
	r.Status = InputSkipped
	r.Err = reason

	return r
}
