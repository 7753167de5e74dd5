// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package headervalidator implements the stateless and context-dependent
// header rules behind HeaderOrganizer's Check and Accept steps,
// grounded on blockchain/validate.go's checkBlockHeaderSanity /
// checkBlockHeaderContext split.
package headervalidator

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ordata-labs/chainorg/chaincfg"
	"github.com/ordata-labs/chainorg/chainorgerr"
	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/headerbranch"
	"github.com/ordata-labs/chainorg/pow"
	"github.com/ordata-labs/chainorg/wire"
)

// Validator applies the header rules against a set of consensus
// parameters. The zero value is not usable; construct with New.
type Validator struct {
	params *chaincfg.Params
	now    func() time.Time
}

// New returns a Validator for params. A nil params panics, since every
// rule below reads from it.
func New(params *chaincfg.Params) *Validator {
	if params == nil {
		panic("headervalidator: nil params")
	}
	return &Validator{params: params, now: time.Now}
}

// SetTimeSource overrides the validator's notion of the present, used
// by tests to exercise the too-far-in-the-future rule deterministically.
func (v *Validator) SetTimeSource(now func() time.Time) {
	v.now = now
}

// Check performs the structural, context-free checks: the claimed
// target is in range and the header's hash satisfies it, and the
// timestamp is not absurdly far in the future. It does not require the
// organizer's lock.
func (v *Validator) Check(header *wire.Header) error {
	if err := v.checkProofOfWork(header); err != nil {
		return err
	}

	maxTimestamp := v.now().Add(v.params.MaxFutureBlockTime)
	if header.Timestamp.After(maxTimestamp) {
		return chainorgerr.New(chainorgerr.ErrTimeTooNew, fmt.Sprintf(
			"header timestamp %v is after the allowed maximum of %v",
			header.Timestamp, maxTimestamp))
	}

	return nil
}

func (v *Validator) checkProofOfWork(header *wire.Header) error {
	target := pow.CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return chainorgerr.New(chainorgerr.ErrUnexpectedDifficulty, fmt.Sprintf(
			"header target difficulty of %064x is too low", target))
	}
	if target.Cmp(v.params.PowLimit) > 0 {
		return chainorgerr.New(chainorgerr.ErrUnexpectedDifficulty, fmt.Sprintf(
			"header target difficulty of %064x is higher than max of %064x",
			target, v.params.PowLimit))
	}

	hash := header.Hash()
	hashNum := pow.HashToBig(hash)
	if hashNum.Cmp(target) > 0 {
		return chainorgerr.New(chainorgerr.ErrUnexpectedDifficulty, fmt.Sprintf(
			"header hash of %064x is higher than expected max of %064x",
			hashNum, target))
	}

	return nil
}

// Accept performs the context-dependent checks: each header's
// difficulty bits match the retarget calculation and its
// timestamp is after the median of the preceding window, promoting
// base across the branch one header at a time (each header's
// context depends on its predecessors, so this promotion is inherently
// sequential) and then fanning the independent per-header comparisons
// out across pool, grounded on dispatcher's errgroup-based GoAll.
func (v *Validator) Accept(branch *headerbranch.Branch, base *chaincfg.ChainState, pool *dispatcher.Pool) error {
	headers := branch.Headers()
	if len(headers) == 0 {
		return nil
	}

	states := make([]*chaincfg.ChainState, len(headers))
	state := base
	for i, h := range headers {
		states[i] = state
		state = state.Advance(h, v.params.Deployments, v.params.RetargetInterval)
	}

	fns := make([]func(context.Context) error, len(headers))
	for i := range headers {
		i := i
		fns[i] = func(context.Context) error {
			return v.acceptOne(headers[i], states[i])
		}
	}

	return pool.GoAll(context.Background(), fns)
}

func (v *Validator) acceptOne(header *wire.Header, state *chaincfg.ChainState) error {
	expected := v.nextRequiredBits(state, header.Timestamp)
	if header.Bits != expected {
		return chainorgerr.New(chainorgerr.ErrUnexpectedDifficulty, fmt.Sprintf(
			"header difficulty of %d is not the expected value of %d",
			header.Bits, expected))
	}

	medianTime := state.MedianTimePast()
	if !medianTime.IsZero() && !header.Timestamp.After(medianTime) {
		return chainorgerr.New(chainorgerr.ErrTimeTooOld, fmt.Sprintf(
			"header timestamp %v is not after median time past %v",
			header.Timestamp, medianTime))
	}

	return nil
}

// nextRequiredBits calculates the expected difficulty for the header
// that follows state and claims candidateTime, generalized from
// blockchain/difficulty.go's calcNextRequiredDifficulty to this
// package's simplified ChainState window (no direct ancestor walk; the
// retarget anchor time is carried on the rolling state instead).
func (v *Validator) nextRequiredBits(state *chaincfg.ChainState, candidateTime time.Time) uint32 {
	nextHeight := state.Height + 1

	if nextHeight%v.params.RetargetInterval != 0 {
		if v.params.ReduceMinDifficulty {
			last := lastTimestamp(state)
			if !last.IsZero() && candidateTime.After(last.Add(v.params.MinDiffReductionTime)) {
				return v.params.PowLimitBits
			}
		}
		return state.Bits
	}

	targetTimespan := int64(v.params.TargetTimespan / time.Second)
	minTimespan := targetTimespan / v.params.RetargetAdjustmentFactor
	maxTimespan := targetTimespan * v.params.RetargetAdjustmentFactor

	actualTimespan := targetTimespan
	if !state.RetargetAnchorTime.IsZero() {
		last := lastTimestamp(state)
		actualTimespan = int64(last.Sub(state.RetargetAnchorTime) / time.Second)
	}

	adjustedTimespan := actualTimespan
	switch {
	case actualTimespan < minTimespan:
		adjustedTimespan = minTimespan
	case actualTimespan > maxTimespan:
		adjustedTimespan = maxTimespan
	}

	newTarget := pow.CompactToBig(state.Bits)
	newTarget.Mul(newTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))
	if newTarget.Cmp(v.params.PowLimit) > 0 {
		newTarget = v.params.PowLimit
	}

	return pow.BigToCompact(newTarget)
}

func lastTimestamp(state *chaincfg.ChainState) time.Time {
	if len(state.RecentTimestamps) == 0 {
		return time.Time{}
	}
	return state.RecentTimestamps[len(state.RecentTimestamps)-1]
}
