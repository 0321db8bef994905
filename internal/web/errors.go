package web

// errors.go turns service errors into HTTP responses.
//
// Responses are plain text: the body is exactly the user message, so a
// rejected upload returns strings like "Invalid Email at row 3". The
// technical error is logged with the request id and support code.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvrelay/internal/core"
	"github.com/JonMunkholm/csvrelay/internal/logging"
)

// respondError logs err and writes its user message with the matching status.
// When the request deadline has passed, the failure is reported as a timeout
// whatever step it surfaced in.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
		userMsg = core.MapError(context.DeadlineExceeded)
	}

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"status", status,
		"code", userMsg.Code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	writeText(w, status, userMsg.Message)
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	}

	kind := core.KindOf(err)
	switch {
	case kind == core.KindForwarding:
		return http.StatusBadGateway
	case kind.ClientError():
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeText writes a plain-text response.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
