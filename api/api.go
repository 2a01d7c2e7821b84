// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/polimec/polimec-node/api/middleware"
	"github.com/polimec/polimec-node/api/node"
	"github.com/polimec/polimec-node/api/projects"
	"github.com/polimec/polimec-node/api/subscriptions"
	"github.com/polimec/polimec-node/api/utils"
	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/metrics"
)

var logger = log.WithContext("pkg", "api")

// Backend serializes access to the funding service and publishes its events.
type Backend interface {
	utils.Caller
	subscriptions.EventSource
}

type Options struct {
	AllowedOrigins       string
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Info                 node.Info
}

// New return api router. The verifier may be nil, then every authenticated route is forbidden.
func New(
	backend Backend,
	verifier *credentials.Verifier,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	projects.New(backend, verifier).
		Mount(router, "/projects")
	node.New(backend, opts.Info).
		Mount(router, "/node")
	subs := subscriptions.New(backend, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "authorization"}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
