// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves operator endpoints on a listener separate from the public API.
package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakeledger/clock"
	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/log"
)

var logger = log.WithContext("pkg", "admin")

type Options struct {
	LogLevel *slog.LevelVar
	APILogs  *atomic.Bool
	// solo only
	Engine *engine.Engine
	Clock  clock.Advancer
}

func New(opts Options) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	if opts.LogLevel != nil {
		newLogLevel(opts.LogLevel).Mount(sub, "/loglevel")
	}
	if opts.APILogs != nil {
		newAPILogs(opts.APILogs).Mount(sub, "/apilogs")
	}
	if opts.Engine != nil {
		newSolo(opts.Engine, opts.Clock).Mount(sub, "")
	}

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
