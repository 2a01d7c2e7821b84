// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/test/testfunding"
)

type directCaller struct {
	f *funding.Funding
}

func (c directCaller) Call(_ context.Context, fn func(f *funding.Funding) error) error {
	return fn(c.f)
}

func TestNode(t *testing.T) {
	env := testfunding.New(t)
	router := mux.NewRouter()
	New(directCaller{env.Funding}, Info{Version: "1.0.0", BlockInterval: "6s"}).Mount(router, "/node")
	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/node/info")
	require.NoError(t, err)
	var info Info
	require.NoError(t, json.NewDecoder(res.Body).Decode(&info))
	res.Body.Close()
	assert.Equal(t, Info{Version: "1.0.0", BlockInterval: "6s"}, info)

	res, err = http.Get(srv.URL + "/node/block")
	require.NoError(t, err)
	var block Block
	require.NoError(t, json.NewDecoder(res.Body).Decode(&block))
	res.Body.Close()
	assert.Equal(t, env.Funding.Block(), block.Number)
}
