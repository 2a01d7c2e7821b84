// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelHandler(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
		expectedLevel  string
	}{
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "DEBUG"},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, "ERROR+4"},
		{"invalid level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, ""},
		{"unknown field", http.MethodPost, `{"lvl":"debug"}`, http.StatusBadRequest, ""},
		{"get", http.MethodGet, "", http.StatusOK, "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logLevel slog.LevelVar
			logLevel.Set(slog.LevelInfo)

			router := mux.NewRouter()
			New(&logLevel).Mount(router, "/admin/loglevel")

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, "/admin/loglevel", strings.NewReader(tt.body)))
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedLevel == "" {
				return
			}
			var res Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
			assert.Equal(t, tt.expectedLevel, res.CurrentLevel)
			assert.Equal(t, tt.expectedLevel, logLevel.Level().String())
		})
	}
}
