// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// vepowerd runs the vote-escrow power accounting service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/escrownet/vepower/api"
	"github.com/escrownet/vepower/log"
	"github.com/escrownet/vepower/lvldb"
	"github.com/escrownet/vepower/metrics"
	"github.com/escrownet/vepower/staking"
	"github.com/escrownet/vepower/staking/schedule"
)

const defaultEpochDuration = 24 * time.Hour

var (
	version   string
	gitCommit string
	gitTag    string

	flags = []cli.Flag{
		dataDirFlag,
		apiAddrFlag,
		apiCorsFlag,
		scheduleFlag,
		genesisFlag,
		epochDurationFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".vepower")
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

func loadSchedule(ctx *cli.Context) (*schedule.Schedule, error) {
	cfg := schedule.DefaultConfig()
	if path := ctx.String(scheduleFlag.Name); path != "" {
		var err error
		if cfg, err = schedule.FromFile(path); err != nil {
			return nil, errors.Wrap(err, "-schedule")
		}
	}
	return schedule.New(cfg)
}

func handleExitSignal() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func run(ctx *cli.Context) error {
	initLogger(ctx)

	sched, err := loadSchedule(ctx)
	if err != nil {
		return err
	}

	genesis, err := time.Parse(time.RFC3339, ctx.String(genesisFlag.Name))
	if err != nil {
		return errors.Wrap(err, "-genesis")
	}
	clock := staking.NewSystemClock(genesis, ctx.Duration(epochDurationFlag.Name))

	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return errors.New("-data-dir required")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	db, err := lvldb.New(filepath.Join(dataDir, "power.db"), lvldb.Options{})
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()

	registry := staking.NewRegistry()
	engine := staking.NewEngine(db, sched, clock, staking.NewMemVault(), registry)
	registry.SetTransferCallback(engine.TransferStake)

	exitSignal := handleExitSignal()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		log.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	apiHandler := api.New(engine, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	url, closeFunc, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return errors.Wrap(err, "start API server")
	}
	log.Info("API server started", "url", url, "epoch", clock.CurrentEpoch())
	defer closeFunc()

	<-exitSignal.Done()
	log.Info("shutting down")
	return nil
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "vepowerd",
		Usage:   "vote-escrow staking power accounting service",
		Flags:   flags,
		Action:  run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
