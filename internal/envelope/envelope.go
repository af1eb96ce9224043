// Package envelope is the single success/failure shape every operation
// returns to callers.
package envelope

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

// Fixed messages for transport-level failures.
const (
	MsgMethodNotAllowed = "Method Not Allowed"
	MsgNotFound         = "API route not found"
	MsgNetworkFailure   = "network request failed, please try again later"
)

// Response wraps an operation result. Data is null on failure.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status"`
}

// OK wraps a successful result.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: &data, Status: http.StatusOK}
}

// Fail builds a failure with an explicit status.
func Fail[T any](status int, msg string) Response[T] {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return Response[T]{Success: false, Error: msg, Status: status}
}

// FromError maps err to a failure. Validation errors are 400, everything
// else is 500.
func FromError[T any](err error) Response[T] {
	if err == nil {
		return Fail[T](http.StatusInternalServerError, MsgNetworkFailure)
	}
	return Fail[T](StatusOf(err), err.Error())
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// MethodNotAllowed is the fixed 405 envelope.
func MethodNotAllowed() Response[struct{}] {
	return Fail[struct{}](http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}

// NotFound is the fixed 404 envelope.
func NotFound() Response[struct{}] {
	return Fail[struct{}](http.StatusNotFound, MsgNotFound)
}

// Write encodes r as JSON with r.Status as the HTTP status.
func Write[T any](w http.ResponseWriter, r Response[T]) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(r.Status)
	_ = json.NewEncoder(w).Encode(r)
}

// Err returns the failure as an error, nil on success.
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}
