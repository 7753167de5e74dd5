// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg carries the consensus parameters the header and
// transaction validators read (genesis, retarget interval, activation
// heights, the proof-of-work selector) and the rolling ChainState
// window used to evaluate context-dependent rules. The core reads
// these; it never mutates them.
package chaincfg

import (
	"math/big"
	"time"

	"github.com/ordata-labs/chainorg/wire"
)

var bigOne = big.NewInt(1)

// mainPowLimit is the highest proof-of-work value a header may have,
// i.e. the lowest difficulty: 2^224 - 1.
var mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

// MedianTimeBlocks is the number of previous headers used to calculate
// the median time used to validate block timestamps, mirroring the
// network-standard window.
const MedianTimeBlocks = 11

// Params defines the consensus parameters of the network the
// organization core is tracking: genesis, retarget interval,
// activation heights, and the proof-of-work selector.
type Params struct {
	// Name identifies the network (mainnet, testnet, simnet, ...).
	Name string

	// GenesisHeader is the header of height zero; every branch must
	// ultimately be rooted at it (directly or via FastChain's indexed
	// store). Held as a pointer so that copying a Params value (as
	// Config.Params and the test harnesses do) never copies the
	// header's memoized-hash cache.
	GenesisHeader *wire.Header

	// PowLimit is the highest proof-of-work value a header's target may
	// take (lowest possible difficulty).
	PowLimit *big.Int

	// PowLimitBits is PowLimit in its compact representation.
	PowLimitBits uint32

	// RetargetInterval is the number of headers between difficulty
	// adjustments.
	RetargetInterval int32

	// TargetTimespan is the desired amount of time it should take to
	// mine RetargetInterval headers.
	TargetTimespan time.Duration

	// TargetTimePerBlock is the desired amount of time it takes to mine
	// a single header.
	TargetTimePerBlock time.Duration

	// RetargetAdjustmentFactor is the adjustment factor used to limit
	// the amount of adjustment that can occur between difficulty
	// retargets.
	RetargetAdjustmentFactor int64

	// ReduceMinDifficulty indicates whether the network allows reduced,
	// minimum-difficulty headers after a span with no headers (testnet
	// style rule).
	ReduceMinDifficulty bool

	// MinDiffReductionTime is the amount of time after which the
	// minimum difficulty headers can be created when ReduceMinDifficulty
	// is true.
	MinDiffReductionTime time.Duration

	// Scrypt selects the scrypt proof-of-work function over the default
	// double-SHA256. Carried as a configuration selector; no alternate
	// hash function is wired in.
	Scrypt bool

	// Deployments maps a soft-fork rule name to the height at which it
	// activates. A simplified, height-based stand-in for full BIP9/BIP8
	// version-bits state machines, which are out of scope.
	Deployments map[string]int32

	// MaxFutureBlockTime is how far into the future, relative to the
	// validator's time source, a header's timestamp may claim to be.
	MaxFutureBlockTime time.Duration
}

// IsDeploymentActive reports whether the named soft-fork rule is active
// at the given height.
func (p *Params) IsDeploymentActive(name string, height int32) bool {
	activation, ok := p.Deployments[name]
	if !ok {
		return false
	}
	return height >= activation
}

// MainNetParams are consensus parameters matching a conventional
// mainnet-shaped network: 10 minute blocks, 2-week retarget interval.
var MainNetParams = Params{
	Name:                     "mainnet",
	GenesisHeader:            &wire.Header{},
	PowLimit:                 mainPowLimit,
	PowLimitBits:             0x1d00ffff,
	RetargetInterval:         2016,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      false,
	MaxFutureBlockTime:       time.Hour * 2,
	Deployments:              map[string]int32{},
}

// SimNetParams are consensus parameters for a fast local test network:
// near-zero difficulty, no retargeting needed.
var SimNetParams = Params{
	Name:                     "simnet",
	GenesisHeader:            &wire.Header{},
	PowLimit:                 new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne),
	PowLimitBits:             0x207fffff,
	RetargetInterval:         2016,
	TargetTimespan:           time.Hour * 24 * 14,
	TargetTimePerBlock:       time.Minute * 10,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      true,
	MinDiffReductionTime:     time.Minute * 20,
	MaxFutureBlockTime:       time.Hour * 2,
	Deployments:              map[string]int32{},
}
