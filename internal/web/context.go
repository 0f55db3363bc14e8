package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/zander/internal/core"
	"github.com/JonMunkholm/zander/internal/logging"
)

// WithRequestMetadata adds IP and User-Agent to context for audit logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := clientIP(r) // Already processed by TrustedRealIP
	ua := r.Header.Get("User-Agent")
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, ua)
	return logging.ContextWith(ctx, "ip", ip)
}

// tenantFromRequest returns the authenticated tenant. BearerAuth guarantees
// an actor on every route that calls it.
func tenantFromRequest(r *http.Request) (core.Actor, error) {
	actor, ok := core.ActorFromContext(r.Context())
	if !ok {
		return core.Actor{}, errMissingActor
	}
	return actor, nil
}
