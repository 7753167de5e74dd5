// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainfacade provides a lock-free read surface and
// fork-point/cumulative-work caches in front of a HeaderOrganizer and
// TransactionOrganizer pair, and delivers subscriber notifications in
// commit order regardless of which goroutine finishes first.
package chainfacade

import (
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/fastchain"
	"github.com/ordata-labs/chainorg/headerorganizer"
	"github.com/ordata-labs/chainorg/headerpool"
	"github.com/ordata-labs/chainorg/headervalidator"
	"github.com/ordata-labs/chainorg/prioritymutex"
	"github.com/ordata-labs/chainorg/txorganizer"
	"github.com/ordata-labs/chainorg/txpool"
	"github.com/ordata-labs/chainorg/txvalidator"
	"github.com/ordata-labs/chainorg/wire"
)

// HeaderSubscriber is notified with the incoming/outgoing header lists
// and fork height after every successful header reorganize.
type HeaderSubscriber func(incoming, outgoing []*wire.Header, forkHeight int32)

// TxSubscriber is notified with the transaction after every successful
// store.
type TxSubscriber func(tx *wire.Tx)

// workSnapshot is the atomically-swapped read cache: fork point,
// candidate work, and confirmed work.
type workSnapshot struct {
	forkPoint     fastchain.Checkpoint
	candidateWork *big.Int
	confirmedWork *big.Int
}

// ChainFacade owns C1-C5 and the subscriber lists, exposing a
// lock-free read surface and funneling writes through the two
// organizers. The zero value is not usable; construct with New.
type ChainFacade struct {
	chain     fastchain.FastChain
	headerOrg *headerorganizer.Organizer
	txOrg     *txorganizer.Organizer
	general   *dispatcher.Pool
	maxMoney  int64

	snapshot atomic.Pointer[workSnapshot]

	headerNotify *notifier
	txNotify     *notifier

	subMu     sync.RWMutex
	headerSub map[int]HeaderSubscriber
	txSub     map[int]TxSubscriber
	nextSubID int
}

// New returns a ChainFacade wired over chain, dispatching organize
// invocations and subscriber notifications through general, with
// headerPool/txPool and headerValidator/txValidator handed to freshly
// constructed HeaderOrganizer/TransactionOrganizer instances sharing
// mu.
func New(
	chain fastchain.FastChain,
	headerPool *headerpool.Pool,
	txPool *txpool.Pool,
	headerValidator *headervalidator.Validator,
	txValidator *txvalidator.Validator,
	mu *prioritymutex.Mutex,
	fanout *dispatcher.Pool,
	general *dispatcher.Pool,
	maxMoney int64,
) *ChainFacade {
	f := &ChainFacade{
		chain:        chain,
		headerOrg:    headerorganizer.New(headerPool, chain, headerValidator, mu, fanout),
		txOrg:        txorganizer.New(txPool, chain, txValidator, mu, fanout),
		general:      general,
		maxMoney:     maxMoney,
		headerNotify: newNotifier(),
		txNotify:     newNotifier(),
		headerSub:    make(map[int]HeaderSubscriber),
		txSub:        make(map[int]TxSubscriber),
	}
	f.refreshSnapshot()
	return f
}

// Stop stops both organizers; pending organize calls yield
// ErrServiceStopped.
func (f *ChainFacade) Stop() {
	f.headerOrg.Stop()
	f.txOrg.Stop()
}

// SetDistinguishOrphans configures whether OrganizeHeader reports a
// header with an unknown parent as ErrOrphanBlock instead of folding
// it into ErrDuplicateBlock.
func (f *ChainFacade) SetDistinguishOrphans(enabled bool) {
	f.headerOrg.SetDistinguishOrphans(enabled)
}

// ForkPoint returns the cached fork point above which candidate work
// and confirmed work are measured. Lock-free.
func (f *ChainFacade) ForkPoint() fastchain.Checkpoint {
	return f.snapshot.Load().forkPoint
}

// CandidateWork returns the cumulative work of the best valid
// candidate branch above the cached fork point.
func (f *ChainFacade) CandidateWork() *big.Int {
	return f.snapshot.Load().candidateWork
}

// ConfirmedWork returns the cumulative work of the confirmed chain
// above the cached fork point.
func (f *ChainFacade) ConfirmedWork() *big.Int {
	return f.snapshot.Load().confirmedWork
}

// IsReorganizable reports whether the candidate branch's cumulative
// work exceeds the confirmed chain's.
func (f *ChainFacade) IsReorganizable() bool {
	s := f.snapshot.Load()
	return s.candidateWork.Cmp(s.confirmedWork) > 0
}

// refreshSnapshot recomputes the work cache from the current
// confirmed top and swaps it in. Called after every successful
// header commit; the swap is a single atomic store, so concurrent
// readers never observe a torn snapshot, only a possibly stale one.
func (f *ChainFacade) refreshSnapshot() {
	top, ok := f.chain.GetTop(false)
	if !ok {
		f.snapshot.Store(&workSnapshot{candidateWork: big.NewInt(0), confirmedWork: big.NewInt(0)})
		return
	}

	confirmed, ok := f.chain.GetWork(new(big.Int).Lsh(big.NewInt(1), 256), top.Height, false)
	if !ok {
		confirmed = big.NewInt(0)
	}
	candidate, ok := f.chain.GetWork(new(big.Int).Lsh(big.NewInt(1), 256), top.Height, true)
	if !ok {
		candidate = big.NewInt(0)
	}

	f.snapshot.Store(&workSnapshot{
		forkPoint:     top,
		candidateWork: candidate,
		confirmedWork: confirmed,
	})
}

// SubscribeHeaders registers sub to be called, in commit order, after
// every successful header reorganize. The returned func removes the
// subscription.
func (f *ChainFacade) SubscribeHeaders(sub HeaderSubscriber) (unsubscribe func()) {
	f.subMu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.headerSub[id] = sub
	f.subMu.Unlock()

	return func() {
		f.subMu.Lock()
		delete(f.headerSub, id)
		f.subMu.Unlock()
	}
}

// SubscribeTransactions registers sub to be called, in commit order,
// after every successful transaction store. The returned func removes
// the subscription.
func (f *ChainFacade) SubscribeTransactions(sub TxSubscriber) (unsubscribe func()) {
	f.subMu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.txSub[id] = sub
	f.subMu.Unlock()

	return func() {
		f.subMu.Lock()
		delete(f.txSub, id)
		f.subMu.Unlock()
	}
}

// OrganizeHeader dispatches header through HeaderOrganizer on the
// general pool, refreshing the work cache and notifying header
// subscribers in commit order on success before invoking handler with
// the resulting error code.
func (f *ChainFacade) OrganizeHeader(header *wire.Header, handler func(error)) {
	f.general.Go(func() {
		f.headerOrg.Organize(header, func(r headerorganizer.Result) {
			if r.Err == nil {
				f.refreshSnapshot()
				f.headerNotify.deliver(r.CommitSeq, func() {
					f.notifyHeaderSubscribers(r.Incoming, r.Outgoing, r.ForkHeight)
				})
			}
			handler(r.Err)
		})
	})
}

// OrganizeTransaction dispatches tx through TransactionOrganizer on
// the general pool, notifying transaction subscribers in commit order
// on success before invoking handler with the resulting error code.
func (f *ChainFacade) OrganizeTransaction(tx *wire.Tx, handler func(error)) {
	f.general.Go(func() {
		f.txOrg.Organize(tx, func(r txorganizer.Result) {
			if r.Err == nil {
				f.txNotify.deliver(r.CommitSeq, func() {
					f.notifyTxSubscribers(r.Tx)
				})
			}
			handler(r.Err)
		}, f.maxMoney)
	})
}

func (f *ChainFacade) notifyHeaderSubscribers(incoming, outgoing []*wire.Header, forkHeight int32) {
	f.subMu.RLock()
	subs := make([]HeaderSubscriber, 0, len(f.headerSub))
	for _, sub := range f.headerSub {
		subs = append(subs, sub)
	}
	f.subMu.RUnlock()

	for _, sub := range subs {
		sub(incoming, outgoing, forkHeight)
	}
}

func (f *ChainFacade) notifyTxSubscribers(tx *wire.Tx) {
	f.subMu.RLock()
	subs := make([]TxSubscriber, 0, len(f.txSub))
	for _, sub := range f.txSub {
		subs = append(subs, sub)
	}
	f.subMu.RUnlock()

	for _, sub := range subs {
		sub(tx)
	}
}
