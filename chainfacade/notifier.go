// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainfacade

import "sync"

// notifier buffers callbacks keyed by a monotonic commit sequence
// number and runs them in order, even though the organizer handlers
// that produce them may run on different goroutines and arrive out of
// order. This keeps subscriber notifications in commit order for each
// subscription without blocking the organizer's own commit path on
// notification delivery.
//
// deliver never blocks waiting for a missing lower sequence number: a
// goroutine whose seq is not yet next simply records its callback and
// returns. Whichever goroutine eventually arrives with the missing
// seq flushes the whole consecutive run, including callbacks stored
// by earlier callers.
type notifier struct {
	mu      sync.Mutex
	nextSeq uint64
	pending map[uint64]func()
}

// newNotifier returns a notifier ready to deliver starting at
// sequence 1, matching the organizers' CommitSeq numbering (the first
// successful commit is assigned 1, not 0).
func newNotifier() *notifier {
	return &notifier{
		nextSeq: 1,
		pending: make(map[uint64]func()),
	}
}

// deliver runs fn, and any consecutively-sequenced callbacks already
// pending, once seq becomes the next expected sequence number.
func (n *notifier) deliver(seq uint64, fn func()) {
	n.mu.Lock()
	n.pending[seq] = fn

	for {
		ready, ok := n.pending[n.nextSeq]
		if !ok {
			break
		}
		delete(n.pending, n.nextSeq)
		n.nextSeq++

		n.mu.Unlock()
		ready()
		n.mu.Lock()
	}

	n.mu.Unlock()
}
