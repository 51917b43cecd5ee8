// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api"
	"github.com/vechain/stakeledger/api/admin"
	"github.com/vechain/stakeledger/clock"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

const (
	ntpCheckInterval   = 10 * time.Minute
	ntpOffsetTolerance = 5 * time.Second
	dbStatsInterval    = 10 * time.Minute
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	commonFlags := []cli.Flag{
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiLogsLimitFlag,
		apiSubscriptionCacheFlag,
		enableAPILogsFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		adminAddrFlag,
		cacheFlag,
	}
	return &cli.App{
		Version:   fullVersion(),
		Name:      "Stakeledger",
		Usage:     "Fungible token ledger with time based staking rewards",
		Copyright: "2026 VeChain Foundation <https://vechain.org/>",
		Flags: append([]cli.Flag{
			dataDirFlag,
			genesisFlag,
			enableAdminFlag,
			disableLogDBFlag,
			ntpServerFlag,
		}, commonFlags...),
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "ledger with a dev genesis, an adjustable clock and privileged admin endpoints",
				Flags: append([]cli.Flag{
					dataDirFlag,
					persistFlag,
					timeOffsetFlag,
				}, commonFlags...),
				Action: soloAction,
			},
			{
				Name:  "dump-logs",
				Usage: "write the notifications stored in the log database as JSON lines",
				Flags: []cli.Flag{
					dataDirFlag,
					genesisFlag,
					outputFlag,
					pageSizeFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: dumpLogsAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	mainDB := openMainDB(ctx, instanceDir)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	feed := &events.Feed{}
	defer feed.Close()

	emitters := events.Emitters{feed}
	var logDB *logdb.LogDB
	if !ctx.Bool(disableLogDBFlag.Name) {
		logDB = openLogDB(instanceDir)
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
		emitters = append(events.Emitters{logDB}, emitters...)
	}

	eng := initEngine(gene, mainDB, clock.System{}, emitters, stateCacheEntries(ctx))

	apiLogs := &atomic.Bool{}
	apiHandler, apiCloser := api.New(eng, logDB, feed, apiOptions(ctx, apiLogs))
	apiURL, srvCloser := startAPIServer(ctx, apiHandler, apiCloser)
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc := startAdminServer(ctx.String(adminAddrFlag.Name), admin.Options{
			LogLevel: logLevel,
			APILogs:  apiLogs,
		})
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	printStartupMessage(gene, eng, instanceDir, apiURL, metricsURL, adminURL)

	return run(exitSignal, ctx.String(ntpServerFlag.Name), mainDB, logDB)
}

// run blocks until ctx is canceled, watching the clock and reporting database state meanwhile.
func run(ctx context.Context, ntpServer string, mainDB *lvldb.LevelDB, logDB *logdb.LogDB) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(dbStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				stats, err := mainDB.Property("leveldb.stats")
				if err != nil {
					logger.Warn("failed to read database stats", "err", err)
					continue
				}
				logger.Debug("ledger database stats", "stats", stats)
			}
		}
	})
	if ntpServer != "" {
		g.Go(func() error {
			clock.WatchOffset(gctx, ntpServer, ntpCheckInterval, ntpOffsetTolerance)
			return nil
		})
	}
	if logDB != nil {
		g.Go(func() error {
			seq, err := logDB.NewestSeq(gctx)
			if err != nil {
				return err
			}
			logger.Debug("log database ready", "newest", seq)
			return nil
		})
	}
	return g.Wait()
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene := genesis.NewDevnet()

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(ctx, instanceDir)
		logDB = openLogDB(instanceDir)
	} else {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	feed := &events.Feed{}
	defer feed.Close()

	clk := clock.NewOffset(clock.System{})
	if offset := ctx.Uint64(timeOffsetFlag.Name); offset > 0 {
		if _, err := clk.Advance(offset); err != nil {
			return errors.Wrap(err, "time offset")
		}
	}
	eng := initEngine(gene, mainDB, clk, events.Emitters{logDB, feed}, stateCacheEntries(ctx))

	apiLogs := &atomic.Bool{}
	apiHandler, apiCloser := api.New(eng, logDB, feed, apiOptions(ctx, apiLogs))
	apiURL, srvCloser := startAPIServer(ctx, apiHandler, apiCloser)
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	if ctx.Bool(enableMetricsFlag.Name) {
		_, closeFunc := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	adminURL, adminCloser := startAdminServer(ctx.String(adminAddrFlag.Name), admin.Options{
		LogLevel: logLevel,
		APILogs:  apiLogs,
		Engine:   eng,
		Clock:    clk,
	})
	defer func() { logger.Info("stopping admin server..."); adminCloser() }()

	printSoloStartupMessage(gene, eng, instanceDir, apiURL, adminURL)

	return run(exitSignal, "", mainDB, logDB)
}
