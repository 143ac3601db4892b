package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/provider"
)

// ErrorKind names a class of request failure
type ErrorKind string

const (
	KindInvalidParameters   ErrorKind = "invalid-parameters"
	KindUpstreamUnavailable ErrorKind = "upstream-unavailable"
	KindInternal            ErrorKind = "internal-error"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindMisconfigured       ErrorKind = "server misconfiguration"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   ErrorKind   `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// ParamError reports a rejected query parameter
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

func invalidParam(param, message string) error {
	return &ParamError{Param: param, Message: message}
}

// classify maps an error to a status code and response body
func classify(err error) (int, ErrorResponse) {
	var paramErr *ParamError
	if errors.As(err, &paramErr) {
		return http.StatusBadRequest, ErrorResponse{Error: KindInvalidParameters, Message: paramErr.Message}
	}
	if errors.Is(err, provider.ErrMissingSport) {
		return http.StatusBadRequest, ErrorResponse{Error: KindInvalidParameters, Message: msgInvalidSport}
	}

	var upstream *provider.Error
	if errors.As(err, &upstream) {
		return http.StatusBadGateway, ErrorResponse{
			Error:   KindUpstreamUnavailable,
			Message: upstream.Error(),
			Details: upstreamDetails(upstream),
		}
	}
	if errors.Is(err, provider.ErrCircuitOpen) {
		return http.StatusBadGateway, ErrorResponse{Error: KindUpstreamUnavailable, Message: err.Error()}
	}

	if errors.Is(err, models.ErrInvalidBatch) {
		return http.StatusInternalServerError, ErrorResponse{Error: KindInternal, Message: "provider returned an invalid batch"}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: KindInternal}
}

// upstreamDetails passes the provider's body through, as JSON when it parses
func upstreamDetails(e *provider.Error) interface{} {
	if e.Body == "" {
		if e.Err != nil {
			return e.Err.Error()
		}
		return nil
	}
	if json.Valid([]byte(e.Body)) {
		return json.RawMessage(e.Body)
	}
	return e.Body
}
