// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/api/utils"
	"github.com/polimec/polimec-node/config"
	"github.com/polimec/polimec-node/lvldb"
)

func TestNewFunding(t *testing.T) {
	cfg, err := config.Parse([]byte("durations:\n  evaluation: 3\n"))
	require.NoError(t, err)
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	f, err := newFunding(cfg, db)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), f.Block())
}

func TestHandleAPITimeout(t *testing.T) {
	var deadline bool
	h := handleAPITimeout(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}), time.Second)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, deadline)
}

func TestRequestBodyLimit(t *testing.T) {
	h := requestBodyLimit(http.HandlerFunc(utils.WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		var body map[string]string
		if err := utils.ParseJSON(r.Body, &body); err != nil {
			return utils.BadRequest(err)
		}
		return utils.WriteJSON(w, body)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"b"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)

	large := `{"a":"` + strings.Repeat("x", maxRequestBody) + `"}`
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(large)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServe(t *testing.T) {
	url, closer, err := serve("localhost:0", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), "/")
	require.NoError(t, err)
	defer closer()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusTeapot, res.StatusCode)
}

func TestPrintStartup(t *testing.T) {
	var buf bytes.Buffer
	printStartup(&buf, "1.0.0", "Memory", "http://localhost:8669/", "", 5)
	assert.Contains(t, buf.String(), "Starting 1.0.0")
	assert.NotContains(t, buf.String(), "Admin")

	buf.Reset()
	printStartup(&buf, "1.0.0", "/data", "http://localhost:8669/", "http://localhost:2113/admin", 5)
	assert.Contains(t, buf.String(), "http://localhost:2113/admin")
}
