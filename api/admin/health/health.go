// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/polimec/polimec-node/api/utils"
	"github.com/polimec/polimec-node/health"
)

type Health struct {
	healthStatus *health.Health
}

func New(healthStatus *health.Health) *Health {
	return &Health{
		healthStatus: healthStatus,
	}
}

func (h *Health) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	var maxTimeBetweenBlocks time.Duration
	if q := r.URL.Query().Get("maxTimeBetweenBlocks"); q != "" {
		if parsed, err := time.ParseDuration(q); err == nil {
			maxTimeBetweenBlocks = parsed
		}
	}

	status := h.healthStatus.Status(maxTimeBetweenBlocks)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
