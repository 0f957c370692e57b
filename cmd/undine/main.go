// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"path/filepath"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/undinefi/undine/api"
	"github.com/undinefi/undine/bcroots"
	"github.com/undinefi/undine/clproofs"
	"github.com/undinefi/undine/exitbus"
	"github.com/ethereum/go-ethereum/log"
	"github.com/undinefi/undine/lvldb"
	"github.com/undinefi/undine/metrics"
	"github.com/undinefi/undine/pdg"
	"github.com/undinefi/undine/pool"
	"github.com/undinefi/undine/record"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/undine"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Undine",
		Usage:     "Undine liquid staking ledger node",
		Copyright: "2025 The Undine developers",
		Flags: []cli.Flag{
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startHTTPServer(ctx.String(metricsAddrFlag.Name), metrics.HTTPHandler())
		if err != nil {
			return err
		}
		defer closeFunc()
		log.Info("metrics service started", "url", url)
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return err
	}
	db, err := lvldb.New(filepath.Join(dataDir, "state.db"), lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return err
	}
	defer func() { log.Info("closing state database..."); db.Close() }()

	st := state.New(db)

	ledgerPool := pool.New(undine.PoolAddress, st, nil, nil, nil, nil)
	deliveries := exitbus.NewDeliveryLog(record.NewContext(undine.ExitBusAddress, st))
	verifier := clproofs.NewVerifier(bcroots.New(st), deliveries, nil, undine.MainnetSpec)
	guarantee := pdg.New(undine.GuaranteeAddress, st, verifier)

	handler := api.New(ledgerPool, guarantee, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	url, closeFunc, err := startHTTPServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); closeFunc() }()
	log.Info("API service started", "url", url, "version", fullVersion())

	<-handleExitSignal()
	return nil
}
