// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"sort"
	"time"

	"github.com/ordata-labs/chainorg/wire"
)

// ChainState is the rolling window of recent header metadata: enough
// history to evaluate retarget, median-time-past, and soft-fork
// activation without re-walking the whole chain. HeaderValidator reads
// it; the organization core never mutates it directly (FastChain
// produces it for each accept call).
type ChainState struct {
	// Height is the height of the tip this snapshot was taken at.
	Height int32

	// Bits is the tip's proof-of-work target in compact form.
	Bits uint32

	// RecentTimestamps holds up to MedianTimeBlocks timestamps of the
	// most recent headers, newest last, used to compute median-time-past.
	RecentTimestamps []time.Time

	// RetargetAnchorTime is the timestamp of the header at the start of
	// the current retarget interval.
	RetargetAnchorTime time.Time

	// ActiveDeployments holds the names of soft-fork rules active at
	// Height, precomputed by FastChain via Params.IsDeploymentActive.
	ActiveDeployments map[string]bool
}

// MedianTimePast returns the median of RecentTimestamps, the timestamp
// a header's own Timestamp must exceed per the time-too-old rule.
func (s *ChainState) MedianTimePast() time.Time {
	if len(s.RecentTimestamps) == 0 {
		return time.Time{}
	}

	sorted := make([]time.Time, len(s.RecentTimestamps))
	copy(sorted, s.RecentTimestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	return sorted[len(sorted)/2]
}

// Advance returns the ChainState that results from promoting h onto the
// tip of s, used by HeaderValidator.Accept to evaluate each header of a
// branch in turn against the context built up by its predecessors.
// retargetInterval is the network's Params.RetargetInterval; the anchor
// only resets at multiples of that interval, not a hardcoded one.
func (s *ChainState) Advance(h *wire.Header, deployments map[string]int32, retargetInterval int32) *ChainState {
	next := &ChainState{
		Height: s.Height + 1,
		Bits:   h.Bits,
	}

	timestamps := s.RecentTimestamps
	if len(timestamps) >= MedianTimeBlocks {
		timestamps = timestamps[len(timestamps)-MedianTimeBlocks+1:]
	}
	next.RecentTimestamps = append(append([]time.Time{}, timestamps...), h.Timestamp)

	next.RetargetAnchorTime = s.RetargetAnchorTime
	if retargetInterval > 0 && next.Height%retargetInterval == 0 {
		next.RetargetAnchorTime = h.Timestamp
	}

	next.ActiveDeployments = make(map[string]bool, len(deployments))
	for name, height := range deployments {
		next.ActiveDeployments[name] = next.Height >= height
	}

	return next
}
