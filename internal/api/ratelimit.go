package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/errors"
)

// borrowRateLimit is a huma middleware that limits borrow confirmations per client IP.
func (s *Server) borrowRateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.borrowLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if !s.borrowLimiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "",
			errors.RateLimited("Too many borrow requests. Please try again later."))
		return
	}

	next(ctx)
}

// clientIP strips the port from the request's remote address. With trusted proxy
// headers enabled, chi's RealIP middleware has already rewritten it.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
