// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txorganizer implements the single-writer transaction
// organization pipeline: check -> existence -> accept -> connect ->
// store, with pool insertion deferred until after a successful store.
package txorganizer

import (
	"sync/atomic"

	"github.com/ordata-labs/chainorg/chainorgerr"
	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/fastchain"
	"github.com/ordata-labs/chainorg/prioritymutex"
	"github.com/ordata-labs/chainorg/txpool"
	"github.com/ordata-labs/chainorg/txvalidator"
	"github.com/ordata-labs/chainorg/wire"
)

// Result is delivered to Handler exactly once per Organize call. Err
// is nil on success, or a chainorgerr.RuleError identifying the
// rejection, transient condition, or fatal failure. CommitSeq is
// assigned under the low-priority lock on every successful store, so
// ChainFacade can deliver subscriber notifications in commit order.
type Result struct {
	Err       error
	Tx        *wire.Tx
	CommitSeq uint64
}

// Handler is invoked exactly once per Organize call with the result.
type Handler func(Result)

// Organizer is the transaction admission pipeline. The zero value is
// not usable; construct with New.
type Organizer struct {
	pool      *txpool.Pool
	chain     fastchain.FastChain
	validator *txvalidator.Validator
	mu        *prioritymutex.Mutex
	fanout    *dispatcher.Pool
	stopped   atomic.Bool
	commitSeq uint64
}

// New returns an Organizer driving pool and chain, handing acceptance
// work to fanout, serialized against HeaderOrganizer by mu under
// low-priority acquisition.
func New(pool *txpool.Pool, chain fastchain.FastChain, validator *txvalidator.Validator, mu *prioritymutex.Mutex, fanout *dispatcher.Pool) *Organizer {
	return &Organizer{
		pool:      pool,
		chain:     chain,
		validator: validator,
		mu:        mu,
		fanout:    fanout,
	}
}

// Stop marks the organizer stopped; subsequent Organize calls short
// circuit with ErrServiceStopped without touching storage.
func (o *Organizer) Stop() {
	o.stopped.Store(true)
}

// Organize runs tx through the check/accept/connect/store pipeline and
// invokes handler exactly once with the outcome.
func (o *Organizer) Organize(tx *wire.Tx, handler Handler, maxMoney int64) {
	if err := o.validator.Check(tx, maxMoney); err != nil {
		handler(Result{Err: err, Tx: tx})
		return
	}

	o.mu.LockLow()

	if o.stopped.Load() {
		o.mu.UnlockLow()
		handler(Result{Err: chainorgerr.New(chainorgerr.ErrServiceStopped, "transaction organizer stopped"), Tx: tx})
		return
	}

	hash := tx.Hash()
	if o.pool.Exists(hash) {
		o.mu.UnlockLow()
		handler(Result{Err: chainorgerr.New(chainorgerr.ErrDuplicateTransaction, "transaction is already pooled"), Tx: tx})
		return
	}

	// The organize call rents the calling goroutine as the serializing
	// thread: it blocks on this single-use completion signal while the
	// fan-out pool runs the actual acceptance chain.
	done := make(chan error, 1)
	o.fanout.Go(func() {
		done <- o.acceptConnectStore(tx)
	})
	err := <-done

	var seq uint64
	if err == nil {
		// Admitted to the pool only once FastChain.Store has actually
		// committed it.
		o.pool.Add(hash)
		seq = atomic.AddUint64(&o.commitSeq, 1)
	}

	o.mu.UnlockLow()
	handler(Result{Err: err, Tx: tx, CommitSeq: seq})
}

// acceptConnectStore runs the acceptance callback chain: acceptance,
// then fee/dust policy, then connect, then store. Each step
// short-circuits on error, and stopped is rechecked after each
// validator callback returns, since Stop may be called while one of
// them is running on the fanout pool.
func (o *Organizer) acceptConnectStore(tx *wire.Tx) error {
	if err := o.validator.Accept(tx); err != nil {
		return err
	}

	if o.stopped.Load() {
		return chainorgerr.New(chainorgerr.ErrServiceStopped, "transaction organizer stopped")
	}

	if !o.validator.SufficientFee(tx) {
		return chainorgerr.New(chainorgerr.ErrInsufficientFee,
			"transaction fee does not meet the configured byte/sigop floor")
	}

	if o.validator.IsDusty(tx) {
		return chainorgerr.New(chainorgerr.ErrDustyTransaction,
			"transaction has an output below the minimum standard value")
	}

	if err := o.validator.Connect(tx); err != nil {
		return err
	}

	if o.stopped.Load() {
		return chainorgerr.New(chainorgerr.ErrServiceStopped, "transaction organizer stopped")
	}

	if err := o.chain.Store(tx); err != nil {
		log.Criticalf("FastChain.Store failed, store is now corrupted: %v", err)
		return chainorgerr.New(chainorgerr.ErrStoreFailed, err.Error())
	}

	return nil
}
