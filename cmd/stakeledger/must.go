// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api"
	"github.com/vechain/stakeledger/api/admin"
	"github.com/vechain/stakeledger/clock"
	"github.com/vechain/stakeledger/co"
	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/metrics"
)

// initLogger routes all loggers to stderr and returns the level the admin server may change.
func initLogger(ctx *cli.Context) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, log.LevelTrace)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelTrace, useColor)
	}
	log.SetDefault(log.WithLevelVar(handler, level))
	return level
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet()
	}
	gene, err := genesis.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load genesis file [%v]: %v", path, err))
	}
	return gene
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

// instanceDirName names the directory of a genesis after the tail of its id.
func instanceDirName(gene *genesis.Genesis) string {
	return fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:])
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	instanceDir := filepath.Join(makeDataDir(ctx), instanceDirName(gene))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openMainDB(ctx *cli.Context, instanceDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open ledger database [%v]: %v", dir, err))
	}
	return db
}

// stateCacheEntries sizes the decoded value cache of the engine from the cache flag.
func stateCacheEntries(ctx *cli.Context) int {
	return normalizeCacheSize(ctx.Int(cacheFlag.Name)) * 64
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openLogDB(instanceDir string) *logdb.LogDB {
	dir := filepath.Join(instanceDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open ledger database: %v", err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

// initEngine opens the engine over mainDB and initializes it with gene on first start.
// A database initialized by another genesis is rejected.
func initEngine(gene *genesis.Genesis, mainDB *lvldb.LevelDB, clk clock.Clock, emitter events.Emitter, cacheSize int) *engine.Engine {
	eng, err := engine.New(mainDB, engine.Options{
		Clock:     clk,
		Emitter:   emitter,
		CacheSize: cacheSize,
	})
	if err != nil {
		fatal(fmt.Sprintf("open engine: %v", err))
	}

	switch id := eng.GenesisID(); id {
	case common.Hash{}:
		if err := eng.Initialize(gene); err != nil {
			fatal(fmt.Sprintf("initialize ledger: %v", err))
		}
	case gene.ID():
	default:
		fatal(fmt.Sprintf("genesis mismatch: database initialized by %v, want %v", id, gene.ID()))
	}
	return eng
}

func apiOptions(ctx *cli.Context, apiLogs *atomic.Bool) api.Options {
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	return api.Options{
		AllowedOrigins:        ctx.String(apiCorsFlag.Name),
		EnableMetrics:         ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:             ctx.Uint64(apiLogsLimitFlag.Name),
		APILogs:               apiLogs,
		SlowQueriesThreshold:  time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:          ctx.Bool(apiLog5xxErrorsFlag.Name),
		SubscriptionCacheSize: uint32(ctx.Int(apiSubscriptionCacheFlag.Name)),
	}
}

func startAPIServer(ctx *cli.Context, handler http.Handler, onClose func()) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	timeout := time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond
	url, closeFunc, err := api.StartAPIServer(addr, handler, timeout, onClose)
	if err != nil {
		fatal(err)
	}
	return url, closeFunc
}

func startMetricsServer(addr string) (string, func()) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen metrics addr [%v]: %v", addr, err))
	}

	router := http.NewServeMux()
	router.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Handler: router, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}
}

func startAdminServer(addr string, opts admin.Options) (string, func()) {
	url, closeFunc, err := api.StartAdminServer(addr, opts)
	if err != nil {
		fatal(err)
	}
	return url, closeFunc
}

func printStartupMessage(
	gene *genesis.Genesis,
	eng *engine.Engine,
	instanceDir string,
	apiURL string,
	metricsURL string,
	adminURL string,
) {
	supply, err := eng.TotalSupply()
	if err != nil {
		fatal(err)
	}
	fmt.Printf(`Starting %v
    Token        [ %v %v ]
    Genesis      [ %v ]
    Total supply [ %v ]
    Clock        [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		common.MakeName("Stakeledger", fullVersion()),
		gene.Info.Name, gene.Info.Symbol,
		gene.ID(),
		supply,
		time.Unix(int64(eng.Now()), 0),
		instanceDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

func orDisabled(s string) string {
	if s == "" {
		return "Disabled"
	}
	return s
}

func printSoloStartupMessage(
	gene *genesis.Genesis,
	eng *engine.Engine,
	instanceDir string,
	apiURL string,
	adminURL string,
) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	info := fmt.Sprintf(`Starting %v
    Token       [ %v %v ]
    Genesis     [ %v ]
    Clock       [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Admin       [ %v ]`,
		common.MakeName("Stakeledger solo", fullVersion()),
		gene.Info.Name, gene.Info.Symbol,
		gene.ID(),
		time.Unix(int64(eng.Now()), 0),
		instanceDir,
		apiURL,
		adminURL)

	info += tableHead

	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent,
			a.Address,
			common.BytesToHash(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}
