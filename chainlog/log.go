// Copyright (c) 2018-2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainlog centralizes the btclog.Logger plumbing shared by
// every package in the chain organization core, grounded on
// fees/log.go's UseLogger/DisableLog pattern repeated per-package in
// btcd.
package chainlog

import (
	"github.com/btcsuite/btclog"
)

// Logger is the interface every package-level logger in this module
// satisfies.
type Logger = btclog.Logger

// Disabled is a logger that discards all output, used as the default
// until a caller supplies a real one via UseLogger.
var Disabled = btclog.Disabled

// NewBackend constructs a btclog backend writing to w, for use by
// cmd/chainorgd when wiring UseLogger into every subsystem package at
// startup.
func NewBackend(w interface {
	Write(p []byte) (int, error)
}) *btclog.Backend {
	return btclog.NewBackend(w)
}
