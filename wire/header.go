// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire defines the minimal on-the-wire shapes the chain
// organization core operates on: block headers and unconfirmed
// transactions. Serialization beyond what the core needs to derive a
// hash and a size is out of scope; the networking wire format is not
// implemented here.
package wire

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/ordata-labs/chainorg/chainhash"
)

// HeaderSize is the number of bytes in the fixed-size portion of a
// serialized Header: 4 (version) + 32 (prev) + 32 (merkle root) + 4
// (timestamp) + 4 (bits) + 4 (nonce).
const HeaderSize = 80

// Header is the immutable, bitstring-addressable candidate or confirmed
// block header record. It is shared by many referents (pool entries,
// branches, subscribers) and is never mutated once published.
type Header struct {
	// Version is the block version.
	Version int32

	// PrevBlock is the hash of the previous header in the chain this
	// header claims to extend.
	PrevBlock chainhash.Hash

	// MerkleRoot commits to the block's transaction set. Not validated
	// by this core beyond being carried opaquely.
	MerkleRoot chainhash.Hash

	// Timestamp is the block's claimed creation time.
	Timestamp time.Time

	// Bits is the compact-form proof-of-work target.
	Bits uint32

	// Nonce is the miner-chosen value used to satisfy the target.
	Nonce uint32

	cachedHash atomic.Pointer[chainhash.Hash]
}

// Hash returns the header's identity: the double-SHA256 digest of its
// fixed-size serialized form. The result is memoized since headers are
// immutable once constructed; the cache is an atomic pointer since
// Hash is called concurrently from the validator fan-out, and a
// concurrent miss just recomputes the same value rather than racing.
func (h *Header) Hash() chainhash.Hash {
	if cached := h.cachedHash.Load(); cached != nil {
		return *cached
	}
	sum := chainhash.DoubleHashH(h.serialize())
	h.cachedHash.Store(&sum)
	return sum
}

func (h *Header) serialize() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PrevBlock[:])
	copy(buf[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[68:72], uint32(h.Timestamp.Unix()))
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)
	return buf
}
