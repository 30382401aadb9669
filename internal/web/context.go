package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/recon/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so service
// logs can attribute a run to its caller.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already rewritten by TrustedRealIP
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = core.ContextWithClientIP(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
