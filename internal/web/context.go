package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/csvrelay/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for the
// outcome audit row.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, clientIP(r), r.UserAgent())
}

// clientIP strips the port from RemoteAddr when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
