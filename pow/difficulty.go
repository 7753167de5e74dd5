// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pow implements the compact-target encoding and cumulative
// work formula used to compare candidate branches against the
// confirmed chain, grounded on blockchain/difficulty.go's CompactToBig
// / CalcWork pair.
package pow

import "math/big"

var (
	bigOne     = big.NewInt(1)
	oneLsh256  = new(big.Int).Lsh(bigOne, 256)
)

// CompactToBig converts a compact representation of a whole number N,
// held in an unsigned 32-bit number, to a big integer. The
// representation is similar to IEEE754 floating point numbers.
//
// Like IEEE754 floating point, there are three basic components: the
// sign, the exponent, and the mantissa. They are broken out as follows:
//
//   - the most significant 8 bits represent the unsigned base 256 exponent
//   - bit 23 (the 24th bit) represents the sign bit
//   - the least significant 23 bits represent the mantissa
//
// The formula to calculate N is:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := compact >> 24

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, uint(8*(exponent-3)))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}

	return bn
}

// BigToCompact converts a whole number N to a compact representation
// using an unsigned 32-bit number. The compact representation only
// provides 23 bits of precision, so values larger than (2^23 - 1) only
// encode the most significant digits of the number.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var isNegative bool
	var mantissa uint32
	exponent := uint(len(n.Bytes()))

	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if isNegative {
		compact |= 0x00800000
	}
	return compact
}

// CalcWork calculates a work value from difficulty bits:
//
//	work = floor(2^256 / (target + 1))
//
// A lower target difficulty value equates to higher actual difficulty,
// so the work value accumulated is the inverse of the target; adding 1
// to the denominator avoids division by zero for a (degenerate,
// never-valid) zero target.
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}

	denominator := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(oneLsh256, denominator)
}

// HashToBig converts a chainhash-style 32-byte digest, interpreted as a
// little-endian unsigned integer, into a big.Int so it can be compared
// against a target.
func HashToBig(hash [32]byte) *big.Int {
	var buf [32]byte
	for i := 0; i < 32; i++ {
		buf[i] = hash[32-1-i]
	}
	return new(big.Int).SetBytes(buf[:])
}
