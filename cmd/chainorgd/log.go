// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/ordata-labs/chainorg/chainfacade"
	"github.com/ordata-labs/chainorg/headerorganizer"
	"github.com/ordata-labs/chainorg/headerpool"
	"github.com/ordata-labs/chainorg/headervalidator"
	"github.com/ordata-labs/chainorg/txorganizer"
	"github.com/ordata-labs/chainorg/txpool"
	"github.com/ordata-labs/chainorg/txvalidator"
)

// logWriter outputs to both standard output and the write end of the
// log rotator, grounded on internal/log/log.go's logWriter.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	logRotator.Write(p)
	return len(p), nil
}

var (
	backendLog = btclog.NewBackend(logWriter{})
	logRotator *rotator.Rotator

	chainorgdLog   = backendLog.Logger("CHRG")
	headerPoolLog  = backendLog.Logger("HPOL")
	headerOrgLog   = backendLog.Logger("HORG")
	headerValLog   = backendLog.Logger("HVAL")
	txPoolLog      = backendLog.Logger("TPOL")
	txOrgLog       = backendLog.Logger("TORG")
	txValLog       = backendLog.Logger("TVAL")
	chainFacadeLog = backendLog.Logger("FCAD")
)

// subsystemLoggers maps each subsystem identifier to its logger, for
// SetLogLevels to iterate over.
var subsystemLoggers = map[string]btclog.Logger{
	"CHRG": chainorgdLog,
	"HPOL": headerPoolLog,
	"HORG": headerOrgLog,
	"HVAL": headerValLog,
	"TPOL": txPoolLog,
	"TORG": txOrgLog,
	"TVAL": txValLog,
	"FCAD": chainFacadeLog,
}

// useLoggers wires the UseLogger of every subsystem package that has a
// logger in subsystemLoggers, mirroring internal/log/log.go's init-time
// wiring. The dispatcher package has none, so its logger stays
// disabled.
func useLoggers() {
	headerpool.UseLogger(headerPoolLog)
	headerorganizer.UseLogger(headerOrgLog)
	headervalidator.UseLogger(headerValLog)
	txpool.UseLogger(txPoolLog)
	txorganizer.UseLogger(txOrgLog)
	txvalidator.UseLogger(txValLog)
	chainfacade.UseLogger(chainFacadeLog)
}

// initLogRotator initializes the rotating log file at logFile. It must
// be called before any subsystem logger is used.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// setLogLevels configures every logger in subsystemLoggers to level.
func setLogLevels(level string) {
	lvl, _ := btclog.LevelFromString(level)
	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}
}
