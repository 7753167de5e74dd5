// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memchain is an in-memory FastChain used by tests and by
// daemon wiring. It keeps the candidate chain as a single flat slice,
// generalized from blockchain/chainview.go's "flat view of a specific
// branch" representation, with the confirmed chain tracked as a
// promotable prefix of it. On-disk record layout (btcd's database
// package, or pebble/leveldb) is out of scope, so this reference store
// never touches disk.
package memchain

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ordata-labs/chainorg/chaincfg"
	"github.com/ordata-labs/chainorg/chainhash"
	"github.com/ordata-labs/chainorg/fastchain"
	"github.com/ordata-labs/chainorg/pow"
	"github.com/ordata-labs/chainorg/wire"
)

// Chain is a minimal, in-memory FastChain. The candidate chain is the
// indexed header sequence HeaderOrganizer writes through Reorganize;
// the confirmed chain is the prefix of it that has been promoted by an
// explicit call to Confirm, modeling the slower block-validation
// process (out of this core's scope) that lags behind header
// organization. A flat map holds stored unconfirmed transactions.
type Chain struct {
	mu               sync.RWMutex
	headers          []*wire.Header
	confirmedHeight  int32
	heightOf         map[chainhash.Hash]int32
	blockStates      map[chainhash.Hash]fastchain.BlockState
	storedTxs        map[chainhash.Hash]*wire.Tx
	deployments      map[string]int32
	retargetInterval int32
}

// New returns a Chain indexed at height zero by genesis, both the
// candidate and confirmed tip, evaluating soft-fork activation per
// deployments (name -> activation height) and resetting the retarget
// anchor every retargetInterval headers (pass the tracked network's
// Params.RetargetInterval).
func New(genesis *wire.Header, deployments map[string]int32, retargetInterval int32) *Chain {
	hash := genesis.Hash()
	if deployments == nil {
		deployments = map[string]int32{}
	}
	return &Chain{
		headers:          []*wire.Header{genesis},
		confirmedHeight:  0,
		heightOf:         map[chainhash.Hash]int32{hash: 0},
		blockStates:      map[chainhash.Hash]fastchain.BlockState{hash: fastchain.BlockStateValid},
		storedTxs:        make(map[chainhash.Hash]*wire.Tx),
		deployments:      deployments,
		retargetInterval: retargetInterval,
	}
}

// ChainStateAt implements fastchain.FastChain by rebuilding the rolling
// window from the indexed header history up to height. This is
// adequate for the bounded chains memchain is meant for (tests and
// examples); a real FastChain backed by persistent storage would cache
// this incrementally rather than recompute it.
func (c *Chain) ChainStateAt(height int32) (*chaincfg.ChainState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if height < 0 || int(height) >= len(c.headers) {
		return nil, false
	}

	state := &chaincfg.ChainState{
		Height:            -1,
		ActiveDeployments: map[string]bool{},
	}
	for h := int32(0); h <= height; h++ {
		state = state.Advance(c.headers[h], c.deployments, c.retargetInterval)
	}
	state.Height = height
	return state, true
}

// IndexedHeight implements fastchain.FastChain and headerpool.IndexedLookup.
func (c *Chain) IndexedHeight(hash chainhash.Hash) (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.heightOf[hash]
	return h, ok
}

// GetTop implements fastchain.FastChain, returning the candidate tip
// when candidate is true and the confirmed tip otherwise.
func (c *Chain) GetTop(candidate bool) (fastchain.Checkpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.headers) == 0 {
		return fastchain.Checkpoint{}, false
	}
	height := int32(len(c.headers) - 1)
	if !candidate {
		height = c.confirmedHeight
	}
	top := c.headers[height]
	return fastchain.Checkpoint{Height: height, Hash: top.Hash()}, true
}

// GetHeader implements fastchain.FastChain. The confirmed chain is
// always a prefix of the candidate chain in this reference store, so a
// height within the confirmed range resolves to the same header
// regardless of candidate; heights above the confirmed tip are only
// valid when candidate is true.
func (c *Chain) GetHeader(height int32, candidate bool) (*wire.Header, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	top := int32(len(c.headers) - 1)
	if !candidate {
		top = c.confirmedHeight
	}
	if height < 0 || height > top {
		return nil, false
	}
	return c.headers[height], true
}

// GetWork implements fastchain.FastChain, summing over the candidate
// chain when candidate is true and over the (shorter-or-equal)
// confirmed chain otherwise, short-circuiting the sum as soon as it
// exceeds overcome.
func (c *Chain) GetWork(overcome *big.Int, aboveHeight int32, candidate bool) (*big.Int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	top := int32(len(c.headers) - 1)
	if !candidate {
		top = c.confirmedHeight
	}

	sum := big.NewInt(0)
	if aboveHeight >= top {
		return sum, true
	}

	for h := aboveHeight + 1; h <= top; h++ {
		sum.Add(sum, pow.CalcWork(c.headers[h].Bits))
		if sum.Cmp(overcome) > 0 {
			return sum, true
		}
	}
	return sum, true
}

// Reorganize implements fastchain.FastChain: atomically truncates the
// candidate chain back to fork and appends headers. The confirmed
// chain is never touched, and truncating below its tip is refused: a
// confirmed header is final.
func (c *Chain) Reorganize(fork fastchain.Checkpoint, headers []*wire.Header) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(fork.Height) >= len(c.headers) || fork.Height < 0 {
		return errors.New("memchain: fork point beyond tip")
	}
	if fork.Height < c.confirmedHeight {
		return errors.New("memchain: fork point is behind the confirmed tip")
	}
	if c.headers[fork.Height].Hash() != fork.Hash {
		return errors.New("memchain: fork point hash mismatch")
	}

	for h := int(fork.Height) + 1; h < len(c.headers); h++ {
		delete(c.heightOf, c.headers[h].Hash())
		delete(c.blockStates, c.headers[h].Hash())
	}
	c.headers = c.headers[:fork.Height+1]

	for i, h := range headers {
		hash := h.Hash()
		c.headers = append(c.headers, h)
		c.heightOf[hash] = fork.Height + 1 + int32(i)
		c.blockStates[hash] = fastchain.BlockStateValid
	}

	return nil
}

// Store implements fastchain.FastChain.
func (c *Chain) Store(tx *wire.Tx) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storedTxs[tx.Hash()] = tx
	return nil
}

// GetBlockState implements fastchain.FastChain.
func (c *Chain) GetBlockState(hash chainhash.Hash) fastchain.BlockState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.blockStates[hash]; ok {
		return s
	}
	return fastchain.BlockStateUnknown
}

// PopulateHeader implements fastchain.FastChain as a no-op; this
// reference store carries no cached context to attach.
func (c *Chain) PopulateHeader(h *wire.Header) {}

// Confirm advances the confirmed tip to height, which must lie between
// the current confirmed tip and the candidate tip. It stands in for
// the block-validation/storage pipeline that promotes header-organized
// candidate blocks to confirmed once their full contents have been
// checked, a process this core does not itself perform.
func (c *Chain) Confirm(height int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if height < c.confirmedHeight {
		return errors.New("memchain: cannot confirm backward")
	}
	if int(height) >= len(c.headers) {
		return errors.New("memchain: confirm height beyond candidate tip")
	}
	c.confirmedHeight = height
	return nil
}

// StoredTx returns a previously stored transaction, for test assertions.
func (c *Chain) StoredTx(hash chainhash.Hash) (*wire.Tx, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tx, ok := c.storedTxs[hash]
	return tx, ok
}

// HeaderAt is a test convenience wrapper over GetHeader(height, true).
func (c *Chain) HeaderAt(height int32) (*wire.Header, bool) {
	return c.GetHeader(height, true)
}
