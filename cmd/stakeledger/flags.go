// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

const envPrefix = "STAKELEDGER_"

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for ledger databases",
		EnvVar: envPrefix + "DATA_DIR",
	}
	genesisFlag = cli.StringFlag{
		Name:   "genesis",
		Usage:  "path to a genesis file (json or yaml), the dev genesis if omitted",
		EnvVar: envPrefix + "GENESIS",
	}
	cacheFlag = cli.IntFlag{
		Name:   "cache",
		Usage:  "megabytes of ram allocated to the ledger database",
		Value:  256,
		EnvVar: envPrefix + "CACHE",
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		Usage:  "API service listening address",
		EnvVar: envPrefix + "API_ADDR",
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
		EnvVar: envPrefix + "API_CORS",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:   "api-timeout",
		Value:  10000,
		Usage:  "API request timeout value in milliseconds",
		EnvVar: envPrefix + "API_TIMEOUT",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:   "api-logs-limit",
		Value:  1000,
		Usage:  "limit the number of logs returned by /logs API",
		EnvVar: envPrefix + "API_LOGS_LIMIT",
	}
	apiSubscriptionCacheFlag = cli.IntFlag{
		Name:  "api-subscription-cache",
		Value: 1000,
		Usage: "number of encoded notifications shared between websocket subscribers",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:   "enable-api-logs",
		Usage:  "enables API requests logging",
		EnvVar: envPrefix + "ENABLE_API_LOGS",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Usage: "all queries with duration (in milliseconds) greater than this value are logged, 0 disables",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests responded with a server error",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-9)",
		EnvVar: envPrefix + "VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: envPrefix + "JSON_LOGS",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: envPrefix + "ENABLE_METRICS",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: envPrefix + "METRICS_ADDR",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:   "enable-admin",
		Usage:  "enables admin server",
		EnvVar: envPrefix + "ENABLE_ADMIN",
	}
	adminAddrFlag = cli.StringFlag{
		Name:   "admin-addr",
		Value:  "localhost:2113",
		Usage:  "admin service listening address",
		EnvVar: envPrefix + "ADMIN_ADDR",
	}
	disableLogDBFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "skip writing notifications into the log database, disables /logs API",
	}
	ntpServerFlag = cli.StringFlag{
		Name:   "ntp-server",
		Value:  "pool.ntp.org",
		Usage:  "NTP server used to watch the local clock, empty disables the watch",
		EnvVar: envPrefix + "NTP_SERVER",
	}

	// solo mode only flags
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "save ledger data to disk (default stored in memory)",
	}
	timeOffsetFlag = cli.Uint64Flag{
		Name:  "time-offset",
		Usage: "seconds the solo clock starts ahead of the wall clock",
	}

	// dump-logs only flags
	outputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "file to write the logs to, standard output if omitted",
	}
	pageSizeFlag = cli.Uint64Flag{
		Name:  "page-size",
		Value: 1000,
		Usage: "number of logs read from the database at once",
	}
)
