package mock

import (
	"context"

	"github.com/viant/storefront/client/auth/store"
)

type identityKey struct{}

func withIdentity(ctx context.Context, identity *store.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func identityFrom(ctx context.Context) *store.Identity {
	identity, _ := ctx.Value(identityKey{}).(*store.Identity)
	return identity
}
