// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTxSizeConversion checks that the conversion between weight units and
// virtual bytes is correct.
func TestTxSizeConversion(t *testing.T) {
	t.Parallel()

	// 1000 wu should be equal to 250 vb and back.
	wu := NewWeightUnit(1000)
	require.Equal(t, NewVByte(250), wu.ToVB())
	require.Equal(t, wu, NewVByte(250).ToWU())

	// Weights that are not a multiple of four round up.
	require.EqualValues(t, 169, NewWeightUnit(674).ToVB().Ceil())

	// A negative measured weight is clamped.
	require.Equal(t, NewWeightUnit(0), TxWeight(-1))
	require.Equal(t, NewWeightUnit(880), TxWeight(880))
}

// TestTxSizeStringer tests the stringer methods of the tx size types.
func TestTxSizeStringer(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1000 wu", NewWeightUnit(1000).String())
	require.Equal(t, "250 vb", NewVByte(250).String())
	require.Equal(t, "169 vb", NewWeightUnit(674).ToVB().String())
}
