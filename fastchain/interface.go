// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fastchain defines the FastChain interface: the persistent
// indexed store the organization core consumes. Its on-disk record
// layout is out of scope; this package only pins down the read/write
// surface the organizers and validators need.
package fastchain

import (
	"math/big"

	"github.com/ordata-labs/chainorg/chaincfg"
	"github.com/ordata-labs/chainorg/chainhash"
	"github.com/ordata-labs/chainorg/wire"
)

// BlockState mirrors blockchain/blockindex.go's blockStatus bit field,
// trimmed to the values the validators need to branch on.
type BlockState byte

const (
	// BlockStateUnknown indicates no validation state is recorded for
	// the hash.
	BlockStateUnknown BlockState = iota

	// BlockStateValid indicates the block has been fully validated.
	BlockStateValid

	// BlockStateInvalid indicates the block has failed validation.
	BlockStateInvalid

	// BlockStateInvalidAncestor indicates an ancestor of the block has
	// failed validation, so the block is also invalid.
	BlockStateInvalidAncestor
)

// Checkpoint identifies a known point in the chain by height and hash.
type Checkpoint struct {
	Height int32
	Hash   chainhash.Hash
}

// FastChain is the persistent indexed store the core reads from and
// writes to. Reads are safe for concurrent callers; writes
// (Reorganize, Store) are serialized externally by the organizers via
// prioritymutex.Mutex — single-writer under the mutex, many-reader
// without.
type FastChain interface {
	// IndexedHeight returns the height of hash if it is an indexed
	// header, and false otherwise. Consumed by headerpool.Pool to
	// locate fork points.
	IndexedHeight(hash chainhash.Hash) (height int32, ok bool)

	// GetWork returns the cumulative work of the candidate or confirmed
	// chain segment above aboveHeight, short-circuiting as soon as the
	// running sum would exceed overcome. The second return value is
	// false only when the computation could not be completed, which
	// HeaderOrganizer treats as fatal (wrapped as ErrOperationFailed);
	// ChainFacade's work cache counts it as zero work.
	GetWork(overcome *big.Int, aboveHeight int32, candidate bool) (work *big.Int, ok bool)

	// Reorganize atomically replaces the candidate chain segment above
	// fork with headers, updating the work/top caches as one unit.
	Reorganize(fork Checkpoint, headers []*wire.Header) error

	// Store commits an unconfirmed transaction.
	Store(tx *wire.Tx) error

	// GetHeader returns the header at height on the candidate or
	// confirmed chain.
	GetHeader(height int32, candidate bool) (*wire.Header, bool)

	// GetTop returns the checkpoint at the tip of the candidate or
	// confirmed chain.
	GetTop(candidate bool) (Checkpoint, bool)

	// GetBlockState returns the recorded validation state of hash.
	GetBlockState(hash chainhash.Hash) BlockState

	// PopulateHeader gives the store an opportunity to attach any
	// context a validator will need (e.g. cached median time), mirroring
	// fast_chain::populate_header. A no-op is a valid implementation.
	PopulateHeader(h *wire.Header)

	// ChainStateAt returns the rolling window of recent header metadata
	// as of height, used by HeaderValidator.Accept to evaluate
	// context-dependent rules at a branch's fork point.
	ChainStateAt(height int32) (*chaincfg.ChainState, bool)
}
