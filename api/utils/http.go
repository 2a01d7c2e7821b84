// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
)

// Caller applies functions to the funding service one at a time.
type Caller interface {
	Call(ctx context.Context, fn func(f *funding.Funding) error) error
}

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// StatusOf returns the status code responded for err.
func StatusOf(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.Is(err, reverts.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, reverts.ErrNotIssuer), errors.Is(err, credentials.ErrBadOrigin):
		return http.StatusForbidden
	case reverts.IsRevertErr(err):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// HandlerFunc like http.HandlerFunc, bu it returns an error.
// Reverts of the funding service are responded as client errors, other errors not created
// with HTTPError as http.StatusInternalServerError.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) && he.cause == nil {
			w.WriteHeader(he.status)
			return
		}
		http.Error(w, err.Error(), StatusOf(err))
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any

// ProjectID parses the {id} path variable.
func ProjectID(req *http.Request) (plmc.ProjectID, error) {
	id, err := plmc.ParseProjectID(mux.Vars(req)["id"])
	if err != nil {
		return 0, BadRequest(errors.New("id: invalid project id"))
	}
	return id, nil
}

// Authenticate returns the investor vouched for by the bearer credential of req.
func Authenticate(v *credentials.Verifier, req *http.Request) (plmc.Investor, error) {
	if v == nil {
		return plmc.Investor{}, Forbidden(errors.New("credentials are not configured"))
	}
	token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return plmc.Investor{}, HTTPError(errors.New("missing bearer credential"), http.StatusUnauthorized)
	}
	investor, err := v.Verify(token, time.Now())
	if err != nil {
		return plmc.Investor{}, Forbidden(err)
	}
	return investor, nil
}
