// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package headerorganizer implements the single-writer header
// organization pipeline: check -> branch -> accept -> compare
// cumulative work -> reorganize-or-pool.
package headerorganizer

import (
	"sync/atomic"

	"github.com/ordata-labs/chainorg/chainorgerr"
	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/fastchain"
	"github.com/ordata-labs/chainorg/headerpool"
	"github.com/ordata-labs/chainorg/headervalidator"
	"github.com/ordata-labs/chainorg/prioritymutex"
	"github.com/ordata-labs/chainorg/wire"
)

// Result is delivered to Handler exactly once per Organize call. Err is
// nil on success, or a chainorgerr.RuleError identifying the
// rejection, transient condition, or fatal failure. Incoming and
// Outgoing are only populated on success, carrying the data
// ChainFacade forwards to subscribers on every successful reorganize.
type Result struct {
	Err        error
	Incoming   []*wire.Header
	Outgoing   []*wire.Header
	ForkHeight int32

	// CommitSeq is a monotonically increasing number assigned under the
	// high-priority lock to every successful commit, letting ChainFacade
	// deliver subscriber notifications in commit order even though the
	// handler itself runs outside the lock. Zero on a non-success
	// Result.
	CommitSeq uint64
}

// Handler is invoked exactly once per Organize call with the result.
type Handler func(Result)

// Organizer is the header organization pipeline. The zero value is not
// usable; construct with New.
type Organizer struct {
	pool               *headerpool.Pool
	chain              fastchain.FastChain
	validator          *headervalidator.Validator
	mu                 *prioritymutex.Mutex
	fanout             *dispatcher.Pool
	stopped            atomic.Bool
	distinguishOrphans atomic.Bool
	commitSeq          uint64
}

// New returns an Organizer driving pool and chain, fanning the
// validator's per-header branch checks out across fanout, serialized
// against TransactionOrganizer by mu.
func New(pool *headerpool.Pool, chain fastchain.FastChain, validator *headervalidator.Validator, mu *prioritymutex.Mutex, fanout *dispatcher.Pool) *Organizer {
	return &Organizer{
		pool:      pool,
		chain:     chain,
		validator: validator,
		mu:        mu,
		fanout:    fanout,
	}
}

// Stop marks the organizer stopped; subsequent Organize calls short
// circuit with ErrServiceStopped without touching storage. Stop never
// rolls back an in-flight write.
func (o *Organizer) Stop() {
	o.stopped.Store(true)
}

// SetDistinguishOrphans controls whether a header whose parent is
// neither indexed nor pooled is reported as ErrOrphanBlock (and pooled
// to await its parent) rather than folded into ErrDuplicateBlock. Off
// by default.
func (o *Organizer) SetDistinguishOrphans(enabled bool) {
	o.distinguishOrphans.Store(enabled)
}

// Organize runs header through the check/branch/accept/reorganize
// pipeline and invokes handler exactly once with the outcome.
func (o *Organizer) Organize(header *wire.Header, handler Handler) {
	if o.stopped.Load() {
		handler(Result{Err: chainorgerr.New(chainorgerr.ErrServiceStopped, "header organizer stopped")})
		return
	}

	if err := o.validator.Check(header); err != nil {
		handler(Result{Err: err})
		return
	}

	o.mu.LockHigh()
	result := o.organizeLocked(header)
	o.mu.UnlockHigh()

	handler(result)
}

// organizeLocked performs the branch/accept/compare-work/reorganize
// steps under the high-priority lock. No blocking wait occurs inside
// this section: the validator's own fan-out is parallel, but Accept
// only returns once every header in the branch has been checked.
func (o *Organizer) organizeLocked(header *wire.Header) Result {
	branch := o.pool.GetBranch(header)
	if branch.Empty() {
		hash := header.Hash()
		_, indexed := o.chain.IndexedHeight(hash)
		alreadyKnown := indexed || o.pool.Exists(hash)

		if o.distinguishOrphans.Load() && !alreadyKnown {
			o.pool.Add(header, headerpool.UnknownHeight)
			return Result{Err: chainorgerr.New(chainorgerr.ErrOrphanBlock,
				"header's parent is neither indexed nor pooled")}
		}

		return Result{Err: chainorgerr.New(chainorgerr.ErrDuplicateBlock,
			"header is already pooled or indexed, or its parent is unknown")}
	}

	base, ok := o.chain.ChainStateAt(branch.Height())
	if !ok {
		return Result{Err: chainorgerr.New(chainorgerr.ErrOperationFailed,
			"could not load chain state at the branch fork point")}
	}

	if err := o.validator.Accept(branch, base, o.fanout); err != nil {
		// The rejected tip is deliberately not pooled: an accept failure
		// releases the lock and reports the validator's code as-is.
		return Result{Err: err}
	}

	if o.stopped.Load() {
		return Result{Err: chainorgerr.New(chainorgerr.ErrServiceStopped, "header organizer stopped")}
	}

	requiredWork, ok := o.chain.GetWork(branch.Work(), branch.Height(), true)
	if !ok {
		log.Criticalf("FastChain.GetWork failed, store is now corrupted")
		return Result{Err: chainorgerr.New(chainorgerr.ErrOperationFailed,
			"could not compute the candidate chain's cumulative work")}
	}

	if branch.Work().Cmp(requiredWork) <= 0 {
		o.pool.Add(branch.Top(), branch.TopHeight())
		return Result{Err: chainorgerr.New(chainorgerr.ErrInsufficientWork,
			"branch work does not exceed the candidate chain's work above the fork point")}
	}

	outgoing := o.collectOutgoing(branch.ForkPoint().Height)

	fork := fastchain.Checkpoint{Height: branch.ForkPoint().Height, Hash: branch.ForkPoint().Hash}
	if err := o.chain.Reorganize(fork, branch.Headers()); err != nil {
		log.Criticalf("FastChain.Reorganize failed, store is now corrupted: %v", err)
		return Result{Err: chainorgerr.New(chainorgerr.ErrReorganizeFailed, err.Error())}
	}

	return Result{
		Incoming:   branch.Headers(),
		Outgoing:   outgoing,
		ForkHeight: branch.ForkPoint().Height,
		CommitSeq:  atomic.AddUint64(&o.commitSeq, 1),
	}
}

// collectOutgoing reads the candidate headers presently stored above
// forkHeight, before Reorganize overwrites them, so subscribers can be
// told what was displaced.
func (o *Organizer) collectOutgoing(forkHeight int32) []*wire.Header {
	var outgoing []*wire.Header
	for h := forkHeight + 1; ; h++ {
		header, ok := o.chain.GetHeader(h, true)
		if !ok {
			break
		}
		outgoing = append(outgoing, header)
	}
	return outgoing
}
