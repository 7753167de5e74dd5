// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command chainorgd is a minimal daemon wiring chainorgcfg.Config to a
// chainfacade.ChainFacade backed by an in-memory FastChain, grounded on
// btcd.go's load-config / init-logging / run-until-signal shape.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ordata-labs/chainorg/chainfacade"
	"github.com/ordata-labs/chainorg/chainorgcfg"
	"github.com/ordata-labs/chainorg/dispatcher"
	"github.com/ordata-labs/chainorg/fastchain/memchain"
	"github.com/ordata-labs/chainorg/headerpool"
	"github.com/ordata-labs/chainorg/headervalidator"
	"github.com/ordata-labs/chainorg/prioritymutex"
	"github.com/ordata-labs/chainorg/txpool"
	"github.com/ordata-labs/chainorg/txvalidator"
)

const maxMoney = 21000000 * 1e8

func chainorgdMain() error {
	cfg, _, err := chainorgcfg.Load()
	if err != nil {
		return err
	}

	if err := initLogRotator(filepath.Join(cfg.LogDir, "chainorgd.log")); err != nil {
		return err
	}
	useLoggers()
	setLogLevels(cfg.DebugLevel)

	params, err := cfg.Params()
	if err != nil {
		chainorgdLog.Errorf("%v", err)
		return err
	}

	chain := memchain.New(params.GenesisHeader, params.Deployments, params.RetargetInterval)
	hPool := headerpool.New(chain)
	tPool := txpool.New()

	headerVal := headervalidator.New(params)
	txVal := txvalidator.New(cfg.ByteFeeSatoshis, cfg.SigopFeeSatoshis, cfg.MinimumOutputSatoshis)

	mu := prioritymutex.New()
	fanout := dispatcher.New("priority", int64(runtime.NumCPU()))
	general := dispatcher.New("general", int64(runtime.NumCPU()))

	facade := chainfacade.New(chain, hPool, tPool, headerVal, txVal, mu, fanout, general, maxMoney)
	facade.SetDistinguishOrphans(cfg.DistinguishOrphans)
	defer facade.Stop()

	chainorgdLog.Infof("chainorgd running on network %s (data dir %s)", params.Name, cfg.DataDir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	chainorgdLog.Infof("shutdown complete")
	return nil
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := chainorgdMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
