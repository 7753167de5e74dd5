// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package headerbranch implements an ordered, ancestor-rooted header
// sequence with computed cumulative work and fork-point height. It is
// a pure value type constructed by headerpool and consumed for the
// duration of a single organize call.
package headerbranch

import (
	"math/big"

	"github.com/ordata-labs/chainorg/chainhash"
	"github.com/ordata-labs/chainorg/pow"
	"github.com/ordata-labs/chainorg/wire"
)

// ForkPoint identifies the indexed ancestor a branch extends from.
type ForkPoint struct {
	Height int32
	Hash   chainhash.Hash
}

// Branch is the ordered sequence [h0, h1, ..., hn] where
// h(i+1).PrevBlock == hash(h(i)), h0's parent is the indexed
// ForkPoint, and Work is the sum of each header's proof-of-work over
// the branch, computed once at construction.
type Branch struct {
	fork    ForkPoint
	headers []*wire.Header
	work    *big.Int
}

// New constructs a Branch rooted at fork containing headers in
// ancestor-to-descendant order. Work is computed immediately by
// summing pow.CalcWork(h.Bits) over every header, the same
// wide-integer cumulative work formula the network's consensus rules
// use.
func New(fork ForkPoint, headers []*wire.Header) *Branch {
	work := big.NewInt(0)
	for _, h := range headers {
		work.Add(work, pow.CalcWork(h.Bits))
	}

	return &Branch{
		fork:    fork,
		headers: headers,
		work:    work,
	}
}

// Empty returns a Branch representing "no branch": already pooled,
// already indexed, or an orphan with no known path to an indexed root.
// HeaderPool.GetBranch returns this value in those cases.
func Empty() *Branch {
	return &Branch{work: big.NewInt(0)}
}

// Headers returns the branch's headers in ancestor-to-descendant order.
func (b *Branch) Headers() []*wire.Header {
	return b.headers
}

// Top returns the branch's tip header, or nil if the branch is empty.
func (b *Branch) Top() *wire.Header {
	if len(b.headers) == 0 {
		return nil
	}
	return b.headers[len(b.headers)-1]
}

// TopHeight returns the height of the branch's tip: ForkPoint.Height
// plus the number of headers in the branch.
func (b *Branch) TopHeight() int32 {
	return b.fork.Height + int32(len(b.headers))
}

// Height returns the branch's base height: ForkPoint.Height. Branch
// heights begin at ForkPoint.Height + 1, so this is the height above
// which FastChain.GetWork must compare.
func (b *Branch) Height() int32 {
	return b.fork.Height
}

// ForkPoint returns the (height, hash) of the indexed ancestor this
// branch extends.
func (b *Branch) ForkPoint() ForkPoint {
	return b.fork
}

// Work returns the branch's cumulative proof-of-work, summed once at
// construction.
func (b *Branch) Work() *big.Int {
	return new(big.Int).Set(b.work)
}

// Empty reports whether this branch carries no headers, meaning the
// candidate is already present (pooled or indexed) or is an orphan
// with no path to an indexed ancestor.
func (b *Branch) Empty() bool {
	return len(b.headers) == 0
}
