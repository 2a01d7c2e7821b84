// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/polimec/polimec-node/log"
)

// mockLogger records the context of Info and Warn records.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Crit(_ string, _ ...any) {}

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name                 string
		handler              http.HandlerFunc
		enabled              bool
		slowQueriesThreshold time.Duration
		shouldLog            bool
	}{
		{
			name:      "enabled",
			handler:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) },
			enabled:   true,
			shouldLog: true,
		},
		{
			name:      "disabled",
			handler:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			shouldLog: false,
		},
		{
			name: "slow request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(15 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			},
			slowQueriesThreshold: 5 * time.Millisecond,
			shouldLog:            true,
		},
		{
			name:                 "fast request under threshold",
			handler:              func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			slowQueriesThreshold: time.Second,
			shouldLog:            false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.slowQueriesThreshold)(tt.handler)
			req := httptest.NewRequest(http.MethodPost, "/projects/1/bid", strings.NewReader(`{"amount":"1000"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "URI")
			assert.Contains(t, logger.loggedData, "/projects/1/bid")
			assert.Contains(t, logger.loggedData, `{"amount":"1000"}`)
			assert.Contains(t, logger.loggedData, rr.Code)
		})
	}
}

func TestBodyIsPassedOn(t *testing.T) {
	var enabled atomic.Bool
	enabled.Store(true)

	var got string
	handler := RequestLoggerMiddleware(&mockLogger{}, &enabled, 0)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("payload")))
	assert.Equal(t, "payload", got)
}
