// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// TestNewPacket checks that a signing result is exported with its partial
// signatures and derivation paths and survives an encode/decode cycle.
func TestNewPacket(t *testing.T) {
	t.Parallel()

	// Arrange: Sign a transaction with a multisig input carrying a path,
	// a p2wkh input and an input we have no key for.
	path := DerivationPath{
		MasterKeyFingerprint: 0x01020304,
		Path:                 []uint32{0x8000002d, 1, 2},
	}
	cosigner := testKey(0x30)
	signing := testKey(0x31).WithPath(path)
	bare := testKey(0x32)
	watchOnly := NewPubKeyPair(testKey(0x33).PubKey())

	tx := spendingTx(t, 3)
	keys := []*KeyPair{signing, bare, watchOnly}
	prevOuts := []PrevOutput{
		multiSigOutput(t, 2, cosigner, testKey(0x31)),
		prevOutput(p2wkhScript(t, bare)),
		prevOutput(p2pkhScript(t, watchOnly)),
	}

	result, err := Sign(tx, keys, prevOuts)
	require.NoError(t, err)

	// Act: Export and reparse the packet.
	packet, err := NewPacket(result, prevOuts)
	require.NoError(t, err)

	encoded, err := packet.B64Encode()
	require.NoError(t, err)

	parsed, err := psbt.NewFromRawBytes(
		bytes.NewReader([]byte(encoded)), true,
	)
	require.NoError(t, err)

	// Assert: The packet wraps the same transaction without any unlocking
	// data.
	stripped := tx.Copy()
	for _, txIn := range stripped.TxIn {
		txIn.SignatureScript = nil
		txIn.Witness = nil
	}
	require.Equal(t, stripped.TxHash(), parsed.UnsignedTx.TxHash())
	for _, txIn := range parsed.UnsignedTx.TxIn {
		require.Empty(t, txIn.SignatureScript)
		require.Empty(t, txIn.Witness)
	}
	require.Len(t, parsed.Inputs, 3)

	// Assert: The multisig input has its redeem script, our signature
	// and the path under the first key of the script.
	in := parsed.Inputs[0]
	require.Equal(t, prevOuts[0].RedeemScript, in.RedeemScript)
	require.Equal(t, txscript.SigHashAll, in.SighashType)
	require.Len(t, in.PartialSigs, 1)
	require.Equal(t, result.Inputs[0].Signature, in.PartialSigs[0].Signature)
	require.Equal(t, signing.SerializedPubKey(), in.PartialSigs[0].PubKey)
	require.Len(t, in.Bip32Derivation, 1)
	require.Equal(
		t, cosigner.SerializedPubKey(), in.Bip32Derivation[0].PubKey,
	)
	require.Equal(
		t, path.MasterKeyFingerprint,
		in.Bip32Derivation[0].MasterKeyFingerprint,
	)
	require.Equal(t, path.Path, in.Bip32Derivation[0].Bip32Path)

	// Assert: The p2wkh input is signed without a path.
	in = parsed.Inputs[1]
	require.Nil(t, in.RedeemScript)
	require.Len(t, in.PartialSigs, 1)
	require.Empty(t, in.Bip32Derivation)
	require.Equal(t, prevOuts[1].TxOut.Value, in.WitnessUtxo.Value)

	// Assert: The skipped input only carries the output it spends. Without
	// its previous transaction a legacy input falls back to a witness
	// UTXO.
	in = parsed.Inputs[2]
	require.Nil(t, in.NonWitnessUtxo)
	require.Empty(t, in.PartialSigs)
	require.Equal(t, prevOuts[2].TxOut.PkScript, in.WitnessUtxo.PkScript)

	// The signing call itself left the transaction alone.
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
}

// fundedSpend returns a previous transaction creating prevOut at index 1 and
// a transaction spending it.
func fundedSpend(t *testing.T, prevOut PrevOutput) (*wire.MsgTx,
	*wire.MsgTx) {

	t.Helper()

	prevTx := wire.NewMsgTx(2)
	prevHash := chainhash.DoubleHashH([]byte("funding"))
	prevTx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	prevTx.AddTxOut(wire.NewTxOut(1, p2wkhScript(t, testKey(0xef))))
	prevTx.AddTxOut(prevOut.TxOut)

	fundingHash := prevTx.TxHash()
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&fundingHash, 1), nil, nil))
	tx.AddTxOut(wire.NewTxOut(testAmount/2, p2wkhScript(t, testKey(0xee))))

	return prevTx, tx
}

// TestNewPacketNonWitnessUtxo checks that legacy inputs with a known previous
// transaction are exported with it.
func TestNewPacketNonWitnessUtxo(t *testing.T) {
	t.Parallel()

	// Arrange: Sign a p2pkh spend of a known transaction.
	key := testKey(0x35)
	prevOut := prevOutput(p2pkhScript(t, key))
	prevTx, tx := fundedSpend(t, prevOut)
	prevOut.PrevTx = prevTx
	prevOuts := []PrevOutput{prevOut}

	result, err := Sign(tx, []*KeyPair{key}, prevOuts)
	require.NoError(t, err)

	// Act: Export and reparse the packet.
	packet, err := NewPacket(result, prevOuts)
	require.NoError(t, err)

	encoded, err := packet.B64Encode()
	require.NoError(t, err)
	parsed, err := psbt.NewFromRawBytes(
		bytes.NewReader([]byte(encoded)), true,
	)
	require.NoError(t, err)

	// Assert: The input carries the previous transaction only.
	in := parsed.Inputs[0]
	require.Nil(t, in.WitnessUtxo)
	require.NotNil(t, in.NonWitnessUtxo)
	require.Equal(t, prevTx.TxHash(), in.NonWitnessUtxo.TxHash())
	require.Len(t, in.PartialSigs, 1)
}

// TestNewPacketErrors checks that inconsistent inputs are refused instead of
// producing a broken packet.
func TestNewPacketErrors(t *testing.T) {
	t.Parallel()

	key := testKey(0x34)
	tx := spendingTx(t, 1)
	prevOuts := []PrevOutput{prevOutput(p2wkhScript(t, key))}

	result, err := Sign(tx, []*KeyPair{key}, prevOuts)
	require.NoError(t, err)

	// legacyResult spends a known output. mismatchResult spends an
	// output of mismatchTx that differs from the one it claims.
	legacyOut := prevOutput(p2pkhScript(t, key))
	_, legacyTx := fundedSpend(t, legacyOut)
	legacyResult, err := Sign(
		legacyTx, []*KeyPair{key}, []PrevOutput{legacyOut},
	)
	require.NoError(t, err)

	mismatchTx, spendTx := fundedSpend(
		t, PrevOutput{TxOut: wire.NewTxOut(
			testAmount+1, legacyOut.TxOut.PkScript,
		)},
	)
	mismatchResult, err := Sign(
		spendTx, []*KeyPair{key}, []PrevOutput{legacyOut},
	)
	require.NoError(t, err)

	withPrevTx := func(prevTx *wire.MsgTx) []PrevOutput {
		prevOut := legacyOut
		prevOut.PrevTx = prevTx

		return []PrevOutput{prevOut}
	}

	testCases := []struct {
		name      string
		result    *Result
		prevOuts  []PrevOutput
		expectErr error
	}{{
		name:      "no result",
		result:    nil,
		prevOuts:  prevOuts,
		expectErr: ErrNoResult,
	}, {
		name:      "result without transaction",
		result:    &Result{},
		prevOuts:  prevOuts,
		expectErr: ErrNoResult,
	}, {
		name:      "previous outputs of another transaction",
		result:    result,
		prevOuts:  append(prevOuts, prevOuts[0]),
		expectErr: ErrInputCountMismatch,
	}, {
		name:      "unrelated previous transaction",
		result:    legacyResult,
		prevOuts:  withPrevTx(mismatchTx),
		expectErr: ErrPrevTxMismatch,
	}, {
		name:      "previous transaction creates another output",
		result:    mismatchResult,
		prevOuts:  withPrevTx(mismatchTx),
		expectErr: ErrPrevTxMismatch,
	}}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			packet, err := NewPacket(tc.result, tc.prevOuts)
			require.ErrorIs(t, err, tc.expectErr)
			require.Nil(t, packet)
		})
	}
}
