package headervalidator

import (
	"testing"
	"time"

	"github.com/ordata-labs/chainorg/chaincfg"
	"github.com/ordata-labs/chainorg/chainorgerr"
	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/headerbranch"
	"github.com/ordata-labs/chainorg/pow"
	"github.com/ordata-labs/chainorg/wire"
	"github.com/stretchr/testify/require"
)

func testParams() *chaincfg.Params {
	p := chaincfg.SimNetParams
	return &p
}

// header builds a header and searches nonces until its hash meets the
// target encoded by bits, so it satisfies Check's proof-of-work rule.
func header(t time.Time, bits uint32) *wire.Header {
	target := pow.CompactToBig(bits)
	for nonce := uint32(0); ; nonce++ {
		h := &wire.Header{
			Version:   1,
			Timestamp: t,
			Bits:      bits,
			Nonce:     nonce,
		}
		if pow.HashToBig(h.Hash()).Cmp(target) <= 0 {
			return h
		}
	}
}

func TestCheckRejectsFutureTimestamp(t *testing.T) {
	params := testParams()
	v := New(params)
	now := time.Unix(1700000000, 0)
	v.SetTimeSource(func() time.Time { return now })

	h := header(now.Add(3*time.Hour), params.PowLimitBits)
	err := v.Check(h)
	require.Error(t, err)
	code, ok := chainorgerr.Code(err)
	require.True(t, ok)
	require.Equal(t, chainorgerr.ErrTimeTooNew, code)
}

func TestCheckAcceptsWellFormedHeader(t *testing.T) {
	params := testParams()
	v := New(params)
	now := time.Unix(1700000000, 0)
	v.SetTimeSource(func() time.Time { return now })

	h := header(now.Add(-time.Minute), params.PowLimitBits)
	require.NoError(t, v.Check(h))
}

func TestCheckRejectsDifficultyAboveLimit(t *testing.T) {
	params := testParams()
	v := New(params)
	now := time.Unix(1700000000, 0)
	v.SetTimeSource(func() time.Time { return now })

	// 0x2100ffff exceeds the simnet pow limit's exponent.
	h := header(now.Add(-time.Minute), 0x2100ffff)
	err := v.Check(h)
	require.Error(t, err)
	code, _ := chainorgerr.Code(err)
	require.Equal(t, chainorgerr.ErrUnexpectedDifficulty, code)
}

func TestAcceptRejectsStaleTimestamp(t *testing.T) {
	params := testParams()
	v := New(params)
	base := time.Unix(1700000000, 0)

	state := &chaincfg.ChainState{
		Height:             99,
		Bits:               params.PowLimitBits,
		RecentTimestamps:   []time.Time{base.Add(-10 * time.Minute), base.Add(-5 * time.Minute), base},
		RetargetAnchorTime: base.Add(-99 * time.Minute),
		ActiveDeployments:  map[string]bool{},
	}

	// Not a retarget boundary for simnet's 2016 interval, so bits carry
	// forward unchanged; the timestamp is not after the median though.
	stale := header(base.Add(-20*time.Minute), params.PowLimitBits)

	branch := headerbranch.New(headerbranch.ForkPoint{Height: 99}, []*wire.Header{stale})

	pool := dispatcher.New("test", 4)
	err := v.Accept(branch, state, pool)
	require.Error(t, err)
	code, _ := chainorgerr.Code(err)
	require.Equal(t, chainorgerr.ErrTimeTooOld, code)
}

func TestAcceptAllowsHeaderAfterMedian(t *testing.T) {
	params := testParams()
	v := New(params)
	base := time.Unix(1700000000, 0)

	state := &chaincfg.ChainState{
		Height:             99,
		Bits:               params.PowLimitBits,
		RecentTimestamps:   []time.Time{base.Add(-10 * time.Minute), base.Add(-5 * time.Minute), base},
		RetargetAnchorTime: base.Add(-99 * time.Minute),
		ActiveDeployments:  map[string]bool{},
	}

	fresh := header(base.Add(time.Minute), params.PowLimitBits)
	branch := headerbranch.New(headerbranch.ForkPoint{Height: 99}, []*wire.Header{fresh})

	pool := dispatcher.New("test", 4)
	require.NoError(t, v.Accept(branch, state, pool))
}
