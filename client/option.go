package client

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/viant/storefront/model"
)

// GuestState is what an anonymous visitor collected before signing in
type GuestState struct {
	CartItems   []*model.CartItem
	FavoriteIDs []string
}

// IsEmpty reports whether there is nothing to merge
func (g *GuestState) IsEmpty() bool {
	return g == nil || (len(g.CartItems) == 0 && len(g.FavoriteIDs) == 0)
}

// GuestSource returns the guest state to merge after a successful login
type GuestSource func(ctx context.Context) (*GuestState, error)

// Option represents option
type Option func(c *Client)

// WithGuestSource sets guest state source
func WithGuestSource(source GuestSource) Option {
	return func(c *Client) {
		c.guest = source
	}
}

// WithLogger sets logger
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
