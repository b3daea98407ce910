package transport

import "context"

type (
	contextKey string
)

const (
	// ContextSkipRefreshKey marks calls whose 401 must be returned without coordination (login, logout)
	ContextSkipRefreshKey contextKey = "skipRefresh"
)

// SkipRefresh returns a context for calls that must not trigger a refresh episode
func SkipRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextSkipRefreshKey, true)
}

func skipRefresh(ctx context.Context) bool {
	if v := ctx.Value(ContextSkipRefreshKey); v != nil {
		skip, _ := v.(bool)
		return skip
	}
	return false
}
