package mock

import (
	"time"

	"github.com/viant/storefront/client/auth/store"
	"github.com/viant/storefront/model"
)

type Option func(*Service)

// WithUser registers an account
func WithUser(email, password string, identity *store.Identity) Option {
	return func(s *Service) {
		s.accounts[email] = &account{password: password, identity: identity}
	}
}

// WithAccessTokenTTL sets access token lifetime
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.AccessTokenTTL = ttl
	}
}

// WithRefreshDelay delays every refresh response
func WithRefreshDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.RefreshDelay = delay
	}
}

// WithProducts replaces the default catalog
func WithProducts(products ...*model.Product) Option {
	return func(s *Service) {
		s.products = products
	}
}

// WithCors sets cross origin rules
func WithCors(cors *Cors) Option {
	return func(s *Service) {
		s.Cors = cors
	}
}
