// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"context"
	"crypto/ed25519"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{BadRequest(errors.New("bad")), http.StatusBadRequest},
		{HTTPError(errors.New("teapot"), http.StatusTeapot), http.StatusTeapot},
		{pkgerrors.Wrap(reverts.ErrProjectNotFound, "load"), http.StatusNotFound},
		{reverts.ErrNotIssuer, http.StatusForbidden},
		{credentials.ErrBadOrigin, http.StatusForbidden},
		{reverts.ErrCidNotProvided, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("disk failure"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestWrapHandlerFunc(t *testing.T) {
	h := WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
		return reverts.ErrPriceTooLow
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "PriceTooLow")
}

func TestAuthenticate(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	v, err := credentials.NewVerifier(pub, "", 4)
	require.NoError(t, err)

	investor := plmc.Investor{Account: plmc.BytesToAddress([]byte("alice")), DID: "did:alice", Type: plmc.Retail}
	token, err := credentials.Issue(priv, "", investor, time.Now().Add(time.Hour))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	_, err = Authenticate(v, req)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))

	req.Header.Set("Authorization", "Bearer garbage")
	_, err = Authenticate(v, req)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))

	req.Header.Set("Authorization", "Bearer "+token)
	got, err := Authenticate(v, req)
	require.NoError(t, err)
	assert.Equal(t, investor, got)

	_, err = Authenticate(nil, req)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
}
