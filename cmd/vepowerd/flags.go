// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for storing the power timelines",
		EnvVar: "VEPOWER_DATA_DIR",
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		Usage:  "API service listening address",
		EnvVar: "VEPOWER_API_ADDR",
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma-separated list of domains from which to accept cross origin requests",
		EnvVar: "VEPOWER_API_CORS",
	}
	scheduleFlag = cli.StringFlag{
		Name:   "schedule",
		Usage:  "multiplier schedule config file (YAML), defaults used when omitted",
		EnvVar: "VEPOWER_SCHEDULE",
	}
	genesisFlag = cli.StringFlag{
		Name:   "genesis",
		Value:  "2025-01-01T00:00:00Z",
		Usage:  "timestamp of the first epoch (RFC 3339)",
		EnvVar: "VEPOWER_GENESIS",
	}
	epochDurationFlag = cli.DurationFlag{
		Name:   "epoch-duration",
		Value:  defaultEpochDuration,
		Usage:  "wall-clock length of one epoch",
		EnvVar: "VEPOWER_EPOCH_DURATION",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-9)",
		EnvVar: "VEPOWER_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: "VEPOWER_JSON_LOGS",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: "VEPOWER_ENABLE_METRICS",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: "VEPOWER_METRICS_ADDR",
	}
)
