// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package apilogs switches the request logger of the public API at runtime.
package apilogs

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/polimec/polimec-node/api/utils"
	"github.com/polimec/polimec-node/log"
)

var logger = log.WithContext("pkg", "apilogs")

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

// APILogs shares its flag with the request logger middleware.
type APILogs struct {
	enabled *atomic.Bool
}

func New(enabled *atomic.Bool) *APILogs {
	return &APILogs{enabled: enabled}
}

func (a *APILogs) get(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogStatus{Enabled: a.enabled.Load()})
}

func (a *APILogs) set(w http.ResponseWriter, r *http.Request) error {
	var status LogStatus
	if err := utils.ParseJSON(r.Body, &status); err != nil {
		return utils.BadRequest(err)
	}
	if a.enabled.Swap(status.Enabled) != status.Enabled {
		logger.Info("api logs updated", "enabled", status.Enabled)
	}
	return utils.WriteJSON(w, status)
}

func (a *APILogs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").Methods(http.MethodGet).Name("get-api-logs-enabled").HandlerFunc(utils.WrapHandlerFunc(a.get))
	sub.Path("").Methods(http.MethodPost).Name("post-api-logs-enabled").HandlerFunc(utils.WrapHandlerFunc(a.set))
}
