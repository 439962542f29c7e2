// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
)

// baseUnit stores the canonical representation of a transaction size, which
// is weight units (wu). All other size units are derived from this.
type baseUnit struct {
	wu uint64
}

// ToWU converts the unit to a WeightUnit.
func (b baseUnit) ToWU() WeightUnit {
	return WeightUnit{b}
}

// ToVB converts the unit to a VByte.
func (b baseUnit) ToVB() VByte {
	return VByte{b}
}

// WeightUnit is the transaction size in weight units, computed as
// `Base tx size * 3 + Total tx size` where the base size excludes witness
// data.
type WeightUnit struct {
	baseUnit
}

// NewWeightUnit creates a new WeightUnit from a uint64 value.
func NewWeightUnit(val uint64) WeightUnit {
	return WeightUnit{baseUnit{wu: val}}
}

// TxWeight returns the weight of a transaction as measured by
// blockchain.GetTransactionWeight. Negative weights are treated as zero.
func TxWeight(weight int64) WeightUnit {
	if weight < 0 {
		return NewWeightUnit(0)
	}

	return NewWeightUnit(uint64(weight))
}

// String returns the string representation of the weight unit.
func (w WeightUnit) String() string {
	return fmt.Sprintf("%d wu", w.wu)
}

// VByte is the virtual size of a transaction: its weight divided by the
// witness scale factor. The weight is kept so no precision is lost until the
// size is displayed.
type VByte struct {
	baseUnit
}

// NewVByte creates a new VByte from a uint64 value.
func NewVByte(val uint64) VByte {
	return VByte{baseUnit{wu: val * blockchain.WitnessScaleFactor}}
}

// Ceil returns the virtual size rounded up to a whole vbyte, the way relay
// policy counts it.
func (v VByte) Ceil() uint64 {
	return (v.wu + blockchain.WitnessScaleFactor - 1) /
		blockchain.WitnessScaleFactor
}

// String returns the string representation of the virtual size.
func (v VByte) String() string {
	return fmt.Sprintf("%d vb", v.Ceil())
}
