// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the ledger over HTTP.
//
// Write endpoints act on behalf of the caller named in the request body and do
// not authenticate it, so the API must only be exposed to trusted operators.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/tierpool/api/accounts"
	"github.com/vechain/tierpool/api/events"
	"github.com/vechain/tierpool/api/pools"
	"github.com/vechain/tierpool/api/rewards"
	"github.com/vechain/tierpool/api/subscriptions"
	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/metrics"
	"github.com/vechain/tierpool/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	LogsLimit       uint64
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router, and a func to close open subscriptions.
func New(n *node.Node, opts Options) (http.Handler, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.LogsLimit == 0 {
		opts.LogsLimit = 1000
	}

	router := mux.NewRouter()

	pools.New(n).
		Mount(router, "/pools")
	accounts.New(n).
		Mount(router, "/accounts")
	rewards.New(n).
		Mount(router)
	events.New(n.LogDB(), opts.LogsLimit).
		Mount(router, "/logs/events")
	subs := subscriptions.New(n, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Path("/metrics").Methods(http.MethodGet).Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	// subscriptions handles hijacked conns, which need to be closed
	return handler, subs.Close
}
