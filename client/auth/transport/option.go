package transport

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/storefront/client/auth/store"
	"golang.org/x/time/rate"
)

type Option func(*Coordinator)

// WithStore sets credential store
func WithStore(store store.Store) Option {
	return func(c *Coordinator) {
		c.store = store
	}
}

// WithRefresher sets refresher, it takes precedence over WithRefreshURL
func WithRefresher(refresher Refresher) Option {
	return func(c *Coordinator) {
		c.refresher = refresher
	}
}

// WithRefreshURL sets refresh endpoint URL, i.e. https://shop.example.com/auth/refresh
func WithRefreshURL(URL string) Option {
	return func(c *Coordinator) {
		c.refreshURL = URL
	}
}

// WithTransport sets base transport
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Coordinator) {
		c.transport = transport
	}
}

// WithCookieJar sets the jar holding the ambient refresh cookie
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Coordinator) {
		c.jar = jar
	}
}

// WithLogger sets logger
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics sets metrics
func WithMetrics(metrics *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// WithRateLimit limits outbound calls, replays included
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Coordinator) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithRefreshTimeout bounds a single refresh call; zero disables the bound
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.refreshTimeout = timeout
	}
}
