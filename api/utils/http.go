// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package utils carries the error-returning handler convention of the API.
package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HandlerFunc is http.HandlerFunc returning an error. An error built by
// HTTPError responds with its status; any other error responds 500.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

type statusError struct {
	cause  error
	status int
}

func (e *statusError) Error() string { return e.cause.Error() }

// HTTPError attaches an HTTP status to cause.
func HTTPError(cause error, status int) error {
	return &statusError{cause: cause, status: status}
}

// BadRequest marks cause as a 400 response.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// NotFound marks cause as a 404 response.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// WrapHandlerFunc converts a HandlerFunc into an http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var se *statusError
		if errors.As(err, &se) {
			http.Error(w, se.cause.Error(), se.status)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteJSON responds with obj in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(obj)
}
