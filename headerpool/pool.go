// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package headerpool implements the transient store of
// not-yet-committed headers arranged as a forest rooted at indexed
// (committed) headers, grounded on blockchain/blockindex.go and
// blockchain/chainview.go's flat-view pattern for walking ancestor
// chains.
package headerpool

import (
	"sync"

	"github.com/decred/dcrd/lru"

	"github.com/ordata-labs/chainorg/chainhash"
	"github.com/ordata-labs/chainorg/headerbranch"
	"github.com/ordata-labs/chainorg/wire"
)

// IndexedLookup is the slice of FastChain the pool needs: whether a
// hash is an indexed header and, if so, at what height. Declared here
// rather than imported from fastchain to keep this package's
// dependency surface minimal.
type IndexedLookup interface {
	IndexedHeight(hash chainhash.Hash) (height int32, ok bool)
}

// PooledHeader is a HeaderPool entry: the header itself, its parent's
// hash (for walking), and its height once derivable. UnknownHeight
// marks a height that has not yet been computed.
type PooledHeader struct {
	Header     *wire.Header
	ParentHash chainhash.Hash
	Height     int32
}

// UnknownHeight is the sentinel PooledHeader.Height carries before a
// header's height can be derived from an indexed ancestor.
const UnknownHeight int32 = -1

// recentlyEvictedCacheSize bounds the cache of hashes recently dropped
// by Remove; it has no bearing on consensus decisions.
const recentlyEvictedCacheSize = 500

// Pool is the transient forest of pooled headers. The zero value is
// not usable; construct with New.
type Pool struct {
	mu       sync.RWMutex
	entries  map[chainhash.Hash]*PooledHeader
	children map[chainhash.Hash][]chainhash.Hash
	chain    IndexedLookup
	evicted  lru.Cache
}

// New returns an empty Pool consulting chain to resolve indexed
// ancestors.
func New(chain IndexedLookup) *Pool {
	return &Pool{
		entries:  make(map[chainhash.Hash]*PooledHeader),
		children: make(map[chainhash.Hash][]chainhash.Hash),
		chain:    chain,
		evicted:  lru.NewCache(recentlyEvictedCacheSize),
	}
}

// Add inserts header, recording height when derivable. A no-op if the
// header is already present (no entry duplicates one already present).
func (p *Pool) Add(header *wire.Header, height int32) {
	hash := header.Hash()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.entries[hash]; ok {
		return
	}

	parent := header.PrevBlock
	p.entries[hash] = &PooledHeader{
		Header:     header,
		ParentHash: parent,
		Height:     height,
	}
	p.children[parent] = append(p.children[parent], hash)

	log.Debugf("Pooled header %v at height %d", hash, height)
}

// Remove deletes hash and cascades to every descendant whose only path
// to an indexed root passed through it, preserving the forest
// property.
func (p *Pool) Remove(hash chainhash.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(hash)
}

func (p *Pool) removeLocked(hash chainhash.Hash) {
	entry, ok := p.entries[hash]
	if !ok {
		return
	}

	delete(p.entries, hash)
	p.evicted.Add(hash)

	kids := p.children[hash]
	delete(p.children, hash)
	for _, kid := range kids {
		p.removeLocked(kid)
	}

	siblings := p.children[entry.ParentHash]
	for i, h := range siblings {
		if h == hash {
			p.children[entry.ParentHash] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
}

// Exists reports whether hash is pooled. This read is safe without the
// caller holding the organizer's high-priority lock.
func (p *Pool) Exists(hash chainhash.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[hash]
	return ok
}

// Contains is an alias for Exists kept for symmetry with
// txpool.Pool.Exists.
func (p *Pool) Contains(hash chainhash.Hash) bool {
	return p.Exists(hash)
}

// WasRecentlyEvicted reports whether hash was dropped from the pool
// recently by Remove. Nothing in the organize pipeline consults it, and
// it plays no part in any consensus decision.
func (p *Pool) WasRecentlyEvicted(hash chainhash.Hash) bool {
	return p.evicted.Contains(hash)
}

// GetBranch returns the maximal ancestor-rooted branch terminating at
// header:
//
//   - if header is already indexed or already pooled at a known height,
//     returns the empty branch;
//   - otherwise walks parent links: if a step's parent is indexed, the
//     walk stops and the fork point is set from it; if the parent is
//     pooled, it is prepended and the walk continues; if the parent is
//     neither, the header is an orphan and the empty branch is
//     returned.
//
// Per the package's safety contract, GetBranch must only be called
// while the caller holds the organizer's high-priority write lock.
func (p *Pool) GetBranch(header *wire.Header) *headerbranch.Branch {
	p.mu.Lock()
	defer p.mu.Unlock()

	hash := header.Hash()

	if _, ok := p.chain.IndexedHeight(hash); ok {
		return headerbranch.Empty()
	}
	if entry, ok := p.entries[hash]; ok && entry.Height != UnknownHeight {
		return headerbranch.Empty()
	}

	headers := []*wire.Header{header}
	cursor := header

	for {
		parentHash := cursor.PrevBlock

		if height, ok := p.chain.IndexedHeight(parentHash); ok {
			fork := headerbranch.ForkPoint{Height: height, Hash: parentHash}
			return headerbranch.New(fork, headers)
		}

		entry, ok := p.entries[parentHash]
		if !ok {
			// Orphan: the parent is neither indexed nor pooled.
			return headerbranch.Empty()
		}

		headers = append([]*wire.Header{entry.Header}, headers...)
		cursor = entry.Header
	}
}

// Orphans returns the pooled headers whose parent is presently neither
// indexed nor itself pooled. The default organize pipeline never
// inserts such entries (an orphan's empty branch short-circuits before
// Add is reached), so this is empty unless a caller explicitly pools
// an orphan to await its parent's arrival (see
// Organizer.SetDistinguishOrphans).
func (p *Pool) Orphans() []*wire.Header {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var orphans []*wire.Header
	for _, entry := range p.entries {
		if _, ok := p.chain.IndexedHeight(entry.ParentHash); ok {
			continue
		}
		if _, ok := p.entries[entry.ParentHash]; ok {
			continue
		}
		orphans = append(orphans, entry.Header)
	}
	return orphans
}

// Len returns the number of pooled headers.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
