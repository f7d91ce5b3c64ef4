package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/pickup-games/internal/platform/logging"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

// Responses follow the Google JSON style guide: {"apiVersion", "data"} or {"apiVersion", "error"}.
const (
	apiVersion  = "2.0"
	errorDomain = "pickup-games"

	internalMessage = "internal server error"
)

type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var (
	internalErrorMapping = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

	// Checked in order; the first match wins.
	errorMappings = []struct {
		match  func(error) bool
		mapped func(error) mappedError
	}{
		{is(usecase.ErrInvalidInput), fixed(http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT")},
		{is(usecase.ErrNotFound), fixed(http.StatusNotFound, "notFound", "NOT_FOUND")},
		{is(usecase.ErrUnauthorized), fixed(http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED")},
		{is(usecase.ErrNotAuthorized), fixed(http.StatusForbidden, "NotAuthorized", "PERMISSION_DENIED")},
		// Denials and refused transitions carry their exact kind so clients can branch on it.
		{usecase.IsDenial, func(err error) mappedError {
			return mappedError{http.StatusConflict, usecase.ErrorKind(err), "FAILED_PRECONDITION"}
		}},
		{is(usecase.ErrStorageUnavailable), fixed(http.StatusServiceUnavailable, "storageUnavailable", "UNAVAILABLE")},
		{is(usecase.ErrDependencyUnavailable), fixed(http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE")},
	}
)

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func fixed(status int, reason, grpcStatus string) func(error) mappedError {
	return func(error) mappedError { return mappedError{status, reason, grpcStatus} }
}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		if m.match(err) {
			return m.mapped(err)
		}
	}
	return internalErrorMapping
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

// writeError hides the text of unmapped errors from clients and logs it instead.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	msg := err.Error()
	if mapped == internalErrorMapping {
		logging.Default().ErrorContext(ctx, "unhandled request error", "error", err)
		msg = internalMessage
	}
	writeErrorBody(w, mapped, msg)
}

func writeInternalError(_ context.Context, w http.ResponseWriter) {
	writeErrorBody(w, internalErrorMapping, internalMessage)
}

func writeErrorBody(w http.ResponseWriter, m mappedError, msg string) {
	writeJSON(w, m.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    m.HTTPStatus,
			Message: msg,
			Status:  m.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: m.Reason, Message: msg}},
		},
	})
}
