// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txpool implements a set of unconfirmed transaction hashes
// used by TransactionOrganizer for duplicate suppression, trimmed to a
// membership-only surface (orphan and fee tracking belong to the
// caller's wider mempool, out of scope here).
package txpool

import (
	"sync"

	"github.com/ordata-labs/chainorg/chainhash"
)

// Pool is the transient set of unconfirmed transaction hashes. The
// zero value is not usable; construct with New.
type Pool struct {
	mu     sync.RWMutex
	hashes map[chainhash.Hash]struct{}
}

// New returns an empty Pool.
func New() *Pool {
	return &Pool{
		hashes: make(map[chainhash.Hash]struct{}),
	}
}

// Exists reports whether tx is memory pooled. Safe for concurrent
// access without the caller holding TransactionOrganizer's
// low-priority lock.
func (p *Pool) Exists(hash chainhash.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.hashes[hash]
	return ok
}

// Add inserts hash into the pool. TransactionOrganizer calls this
// after a successful FastChain.Store, never before.
func (p *Pool) Add(hash chainhash.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hashes[hash] = struct{}{}
	log.Debugf("Pooled transaction %v", hash)
}

// Remove evicts hash from the pool. Ownership of when to call this
// belongs to ChainFacade (on confirmation), not TransactionOrganizer.
func (p *Pool) Remove(hash chainhash.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.hashes, hash)
}

// Len returns the number of pooled transactions.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.hashes)
}
