// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/metrics"
	"github.com/polimec/polimec-node/node"
	"github.com/polimec/polimec-node/test/testfunding"

	nodeAPI "github.com/polimec/polimec-node/api/node"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newServer(t *testing.T) (*httptest.Server, *testfunding.Env, ed25519.PrivateKey) {
	env := testfunding.New(t)
	n := node.New(env.Funding, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	verifier, err := credentials.NewVerifier(pub, "", 16)
	require.NoError(t, err)

	handler, closeSubs := New(n, verifier, Options{
		AllowedOrigins: "*",
		EnableMetrics:  true,
		Info:           nodeAPI.Info{Version: "test"},
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		closeSubs()
		cancel()
		require.NoError(t, <-done)
	})
	return srv, env, priv
}

func TestMetricsMiddleware(t *testing.T) {
	srv, _, _ := newServer(t)

	_, code := httpGet(t, srv.URL+"/node/block")
	assert.Equal(t, http.StatusOK, code)
	_, code = httpGet(t, srv.URL+"/projects/1")
	assert.Equal(t, http.StatusNotFound, code)

	body, _ := httpGet(t, srv.URL+"/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	byName := map[string]string{}
	for _, m := range families["polimec_api_request_count"].GetMetric() {
		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		byName[labels["name"]] = labels["code"]
	}
	assert.Equal(t, "200", byName["node_get_block"])
	assert.Equal(t, "404", byName["projects_get_project"])
}

func TestCreateProjectThroughNode(t *testing.T) {
	srv, env, priv := newServer(t)
	token, err := credentials.Issue(priv, "", env.Issuer, time.Now().Add(time.Hour))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/projects", strings.NewReader("{}"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCORS(t *testing.T) {
	srv, _, _ := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.polimec.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
