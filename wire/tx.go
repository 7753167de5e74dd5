// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"sync/atomic"

	"github.com/ordata-labs/chainorg/chainhash"
)

// TxOut defines a transaction output, carrying just the fields the
// admission pipeline's dust policy needs.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// TxIn defines a transaction input, carrying just the fields the
// admission pipeline's null-input check needs.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// OutPoint identifies a previously spent transaction output.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// Tx is the unconfirmed transaction record carried through
// TransactionPool and TransactionOrganizer. Script interpretation and
// full serialization are out of scope; the core only needs size,
// sigop count and fee accounting, all of which are populated by the
// caller (the mempool acceptance path upstream of this core, analogous
// to btcutil.Tx wrapping wire.MsgTx).
type Tx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32

	// SerializedSizeBytes and SigOpCount are precomputed by the caller;
	// this core treats them as opaque inputs to policy, not something
	// it derives from script evaluation.
	SerializedSizeBytes int64
	SigOpCount          int64

	// FeesSatoshis is the sum of input value minus output value, supplied
	// by the caller (utxo lookup is out of scope here).
	FeesSatoshis int64

	cachedHash atomic.Pointer[chainhash.Hash]
}

// Hash returns the transaction's identity, double-SHA256 of a minimal
// deterministic encoding of its fields sufficient for uniqueness within
// this core (full wire-format transaction serialization is out of
// scope). The result is memoized behind an atomic pointer since Hash
// is called concurrently from the acceptance fan-out; a concurrent
// miss just recomputes the same value rather than racing.
func (t *Tx) Hash() chainhash.Hash {
	if cached := t.cachedHash.Load(); cached != nil {
		return *cached
	}
	h := t.deriveHash()
	t.cachedHash.Store(&h)
	return h
}

func (t *Tx) deriveHash() chainhash.Hash {
	var buf []byte
	for _, in := range t.TxIn {
		buf = append(buf, in.PreviousOutPoint.Hash[:]...)
		var idx [4]byte
		idx[0] = byte(in.PreviousOutPoint.Index)
		idx[1] = byte(in.PreviousOutPoint.Index >> 8)
		idx[2] = byte(in.PreviousOutPoint.Index >> 16)
		idx[3] = byte(in.PreviousOutPoint.Index >> 24)
		buf = append(buf, idx[:]...)
	}
	for _, out := range t.TxOut {
		var v [8]byte
		for i := 0; i < 8; i++ {
			v[i] = byte(out.Value >> (8 * i))
		}
		buf = append(buf, v[:]...)
		buf = append(buf, out.PkScript...)
	}
	return chainhash.DoubleHashH(buf)
}

// SerializedSize returns the precomputed serialized size in bytes.
func (t *Tx) SerializedSize() int64 {
	return t.SerializedSizeBytes
}

// SignatureOperations returns the precomputed sigop count.
func (t *Tx) SignatureOperations() int64 {
	return t.SigOpCount
}

// Fees returns the precomputed fee, in satoshis.
func (t *Tx) Fees() int64 {
	return t.FeesSatoshis
}

// HasNullInput reports whether any input spends the null outpoint, the
// hallmark of a (disallowed, outside of coinbase) null input.
func (t *Tx) HasNullInput() bool {
	var zero chainhash.Hash
	for _, in := range t.TxIn {
		if in.PreviousOutPoint.Hash == zero && in.PreviousOutPoint.Index == 0xffffffff {
			return true
		}
	}
	return false
}
