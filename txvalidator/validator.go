// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txvalidator implements the transaction rules behind
// TransactionOrganizer's check, accept, and connect steps, plus the
// fee-floor and dust policy functions, grounded on mempool/policy.go's
// calcMinRequiredTxRelayFee / IsDust pair.
package txvalidator

import (
	"fmt"

	"github.com/ordata-labs/chainorg/chainorgerr"
	"github.com/ordata-labs/chainorg/wire"
)

// maxStandardTxSize bounds the serialized size this core will admit,
// generalized from mempool's standardness limits; script-level
// standardness (pubkey script shape, P2SH sigop caps) is out of scope.
const maxStandardTxSize = 100000

// Validator applies the transaction rules against configured fee and
// dust policy. The zero value is not usable; construct with New.
type Validator struct {
	byteFeeSatoshis       float64
	sigopFeeSatoshis      float64
	minimumOutputSatoshis int64
}

// New returns a Validator configured with the flat per-byte/per-sigop
// fee floor and dust threshold.
func New(byteFeeSatoshis, sigopFeeSatoshis float64, minimumOutputSatoshis int64) *Validator {
	return &Validator{
		byteFeeSatoshis:       byteFeeSatoshis,
		sigopFeeSatoshis:      sigopFeeSatoshis,
		minimumOutputSatoshis: minimumOutputSatoshis,
	}
}

// Check performs the structural, context-free checks: at least one
// input and output, size and amount bounds, no null input (coinbase
// admission is out of this core's scope; every transaction reaching
// TransactionOrganizer is non-coinbase).
func (v *Validator) Check(tx *wire.Tx, maxMoney int64) error {
	if len(tx.TxIn) == 0 {
		return chainorgerr.New(chainorgerr.ErrNoTxInputs, "transaction has no inputs")
	}
	if len(tx.TxOut) == 0 {
		return chainorgerr.New(chainorgerr.ErrNoTxOutputs, "transaction has no outputs")
	}
	if tx.SerializedSize() > maxStandardTxSize {
		return chainorgerr.New(chainorgerr.ErrTxTooBig, fmt.Sprintf(
			"transaction size of %d bytes is larger than the allowed max of %d",
			tx.SerializedSize(), maxStandardTxSize))
	}
	if tx.HasNullInput() {
		return chainorgerr.New(chainorgerr.ErrNullInput, "transaction has a null input")
	}

	var total int64
	for i, out := range tx.TxOut {
		if out.Value < 0 || out.Value > maxMoney {
			return chainorgerr.New(chainorgerr.ErrBadAmount, fmt.Sprintf(
				"transaction output %d has invalid value %d", i, out.Value))
		}
		total += out.Value
		if total > maxMoney {
			return chainorgerr.New(chainorgerr.ErrBadAmount,
				"transaction output total exceeds the maximum supply")
		}
	}

	return nil
}

// Accept performs the context-dependent checks: the declared fee
// accounting is internally consistent. Full input resolution against
// a UTXO view (verifying FeesSatoshis against actual spent amounts) is
// out of this core's scope; the caller's mempool acceptance path is
// trusted to have computed it.
func (v *Validator) Accept(tx *wire.Tx) error {
	if tx.Fees() < 0 {
		return chainorgerr.New(chainorgerr.ErrBadAmount, "transaction has negative fees")
	}
	return nil
}

// Connect attaches script metadata to tx's inputs. Script interpretation
// is an explicit Non-goal, so this is a deliberate no-op kept as the
// seam a future script engine would hook into.
func (v *Validator) Connect(tx *wire.Tx) error {
	return nil
}

// SufficientFee implements the fee floor policy: if both configured
// fees are zero, every transaction passes; otherwise
// the floor is max(1, byte_fee*size + sigop_fee*sigops) and the tx's
// declared fees must meet or exceed it.
func (v *Validator) SufficientFee(tx *wire.Tx) bool {
	if v.byteFeeSatoshis == 0 && v.sigopFeeSatoshis == 0 {
		return true
	}

	price := v.byteFeeSatoshis*float64(tx.SerializedSize()) +
		v.sigopFeeSatoshis*float64(tx.SignatureOperations())
	floored := int64(price)
	if floored < 1 {
		floored = 1
	}

	return tx.Fees() >= floored
}

// IsDusty implements the dust policy: any output below the configured
// minimum is rejected.
func (v *Validator) IsDusty(tx *wire.Tx) bool {
	for _, out := range tx.TxOut {
		if out.Value < v.minimumOutputSatoshis {
			return true
		}
	}
	return false
}
