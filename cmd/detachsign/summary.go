// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/detachsign/pkg/btcunit"
	"github.com/btcsuite/detachsign/signer"
)

// maxFeeRate is the fee rate in sat/vb above which we warn that the fee
// looks like a mistake.
const maxFeeRate = 1000

// txSummary describes the size and fee of a signed transaction.
type txSummary struct {
	weight btcunit.WeightUnit

	// fee is the difference between the spent and the created amounts.
	// It is negative if the outputs spend more than the inputs provide.
	fee btcutil.Amount

	feeRate btcunit.SatPerVByte
}

// summarize computes the summary of tx spending prevOuts. Inputs that are
// still unsigned make the result an underestimate.
func summarize(tx *wire.MsgTx, prevOuts []signer.PrevOutput) txSummary {
	weight := btcunit.TxWeight(
		blockchain.GetTransactionWeight(btcutil.NewTx(tx)),
	)

	var fee btcutil.Amount
	for _, prevOut := range prevOuts {
		fee += btcutil.Amount(prevOut.TxOut.Value)
	}
	for _, txOut := range tx.TxOut {
		fee -= btcutil.Amount(txOut.Value)
	}

	return txSummary{
		weight:  weight,
		fee:     fee,
		feeRate: btcunit.CalcSatPerVByte(fee, weight.ToVB()),
	}
}

// vsize returns the virtual size of the transaction.
func (s txSummary) vsize() btcunit.VByte {
	return s.weight.ToVB()
}

// warnings returns the reasons the fee looks wrong, if any.
func (s txSummary) warnings() []string {
	if s.fee < 0 {
		return []string{fmt.Sprintf("outputs exceed the spent amount "+
			"by %v", -s.fee)}
	}

	var warnings []string

	minRelay := btcunit.NewSatPerKVByte(txrules.DefaultRelayFeePerKb)
	if s.feeRate.LessThan(minRelay.ToSatPerVByte()) {
		warnings = append(warnings, fmt.Sprintf("fee rate %v is below "+
			"the minimum relay fee, at least %v is needed", s.feeRate,
			minRelay.FeeForWeight(s.weight)))
	}

	if s.feeRate.GreaterThan(btcunit.NewSatPerVByte(maxFeeRate)) {
		warnings = append(warnings, fmt.Sprintf("fee rate %v is "+
			"above %d sat/vb", s.feeRate, maxFeeRate))
	}

	return warnings
}
