// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakeledger/api/accounts"
	"github.com/vechain/stakeledger/api/auth"
	"github.com/vechain/stakeledger/api/doc"
	"github.com/vechain/stakeledger/api/logs"
	"github.com/vechain/stakeledger/api/middleware"
	"github.com/vechain/stakeledger/api/stakes"
	"github.com/vechain/stakeledger/api/subscriptions"
	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins        string
	EnableMetrics         bool
	LogsLimit             uint64
	APILogs               *atomic.Bool
	SlowQueriesThreshold  time.Duration
	Log5xxErrors          bool
	SubscriptionCacheSize uint32
}

// New return api router
func New(
	eng *engine.Engine,
	logDB *logdb.LogDB,
	feed *events.Feed,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc/").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/stakeledger.yaml", http.StatusTemporaryRedirect)
		})

	acc := accounts.New(eng)
	acc.MountToken(router, "/token")
	acc.Mount(router, "/accounts")
	stakes.New(eng).
		Mount(router, "/stakes")

	if logDB != nil {
		logs.New(logDB, opts.LogsLimit).
			Mount(router, "/logs")
	}

	closeSubs := func() {}
	if feed != nil {
		subs := subscriptions.New(feed, origins, opts.SubscriptionCacheSize)
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id", auth.NonceHeader, auth.SignatureHeader}),
		handlers.ExposedHeaders([]string{"x-genesis-id", "x-stakeledger-ver"}),
	)(handler)

	apiLogs := opts.APILogs
	if apiLogs == nil {
		apiLogs = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, apiLogs, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("x-stakeledger-ver", doc.Version())
		if id := eng.GenesisID(); id != (common.Hash{}) {
			w.Header().Set("x-genesis-id", id.String())
		}
		handler.ServeHTTP(w, req)
	}, closeSubs // subscriptions handles hijacked conns, which need to be closed
}
