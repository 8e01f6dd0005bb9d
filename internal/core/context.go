package core

import "context"

type contextKey string

const (
	ctxKeyClientIP  contextKey = "load_client_ip"
	ctxKeyUserAgent contextKey = "load_user_agent"
)

// WithClient records who is loading data, for the load history.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyClientIP, ip)
	return context.WithValue(ctx, ctxKeyUserAgent, userAgent)
}

// ClientFromContext returns the client IP and User-Agent set by WithClient.
func ClientFromContext(ctx context.Context) (ip, userAgent string) {
	ip, _ = ctx.Value(ctxKeyClientIP).(string)
	userAgent, _ = ctx.Value(ctxKeyUserAgent).(string)
	return ip, userAgent
}
