package storefront

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs/url"
	"github.com/viant/storefront/client"
	"github.com/viant/storefront/client/auth/store"
	"github.com/viant/storefront/client/auth/transport"
	"golang.org/x/time/rate"
)

const (
	credentialsFile = "credentials.json"
	cookiesFile     = "cookies.json"
)

// ClientOptions defines options for configuring a storefront client.
type ClientOptions struct {
	URL            string        `yaml:"url" json:"url" short:"u" long:"url" env:"STOREFRONT_URL" description:"storefront base url"`
	StateURL       string        `yaml:"stateURL,omitempty" json:"stateURL,omitempty" short:"s" long:"state" env:"STOREFRONT_STATE" description:"location (local path or afs URL) of persisted credentials and cookies"`
	RateLimit      float64       `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty" long:"rate" description:"max outbound requests per second, 0 disables"`
	Burst          int           `yaml:"burst,omitempty" json:"burst,omitempty" long:"burst" description:"rate limiter burst"`
	RefreshTimeout time.Duration `yaml:"refreshTimeout,omitempty" json:"refreshTimeout,omitempty" long:"refresh-timeout" description:"session refresh timeout, i.e. 30s"`
	LogLevel       string        `yaml:"logLevel,omitempty" json:"logLevel,omitempty" short:"l" long:"log-level" description:"log level" choice:"debug" choice:"info" choice:"warn" choice:"error"`

	// Store overrides the credential store derived from StateURL.
	Store store.Store `yaml:"-" json:"-" no-flag:"true"`
	// CookieJar overrides the cookie jar derived from StateURL.
	CookieJar http.CookieJar `yaml:"-" json:"-" no-flag:"true"`
	// Registerer receives the session metrics when set.
	Registerer prometheus.Registerer `yaml:"-" json:"-" no-flag:"true"`
	Logger     *logrus.Entry         `yaml:"-" json:"-" no-flag:"true"`
	Guest      client.GuestSource    `yaml:"-" json:"-" no-flag:"true"`
}

func (o *ClientOptions) Init() {
	o.URL = strings.TrimRight(o.URL, "/")
	if o.RefreshTimeout == 0 {
		o.RefreshTimeout = 30 * time.Second
	}
	if o.LogLevel == "" {
		o.LogLevel = logrus.InfoLevel.String()
	}
	if o.RateLimit > 0 && o.Burst <= 0 {
		o.Burst = 1
	}
	if o.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		o.Logger = logrus.NewEntry(logger)
	}
}

// Merge fills options not set yet from other, i.e. values from a config file under command line flags
func (o *ClientOptions) Merge(other *ClientOptions) {
	if other == nil {
		return
	}
	if o.URL == "" {
		o.URL = other.URL
	}
	if o.StateURL == "" {
		o.StateURL = other.StateURL
	}
	if o.RateLimit == 0 {
		o.RateLimit = other.RateLimit
	}
	if o.Burst == 0 {
		o.Burst = other.Burst
	}
	if o.RefreshTimeout == 0 {
		o.RefreshTimeout = other.RefreshTimeout
	}
	if o.LogLevel == "" {
		o.LogLevel = other.LogLevel
	}
}

// NewClient creates a storefront client whose calls share one session refresh coordinator.
func NewClient(ctx context.Context, options *ClientOptions) (*client.Client, error) {
	if options == nil {
		options = &ClientOptions{}
	}
	options.Init()
	if options.URL == "" {
		return nil, fmt.Errorf("storefront url was empty")
	}
	coordinator, err := options.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	return client.New(options.URL, coordinator,
		client.WithLogger(options.Logger),
		client.WithGuestSource(options.Guest)), nil
}

func (o *ClientOptions) coordinator(ctx context.Context) (*transport.Coordinator, error) {
	aStore, err := o.store(ctx)
	if err != nil {
		return nil, err
	}
	jar, err := o.cookieJar(ctx)
	if err != nil {
		return nil, err
	}
	metrics := transport.NewMetrics("")
	if o.Registerer != nil {
		if err = metrics.Register(o.Registerer); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	opts := []transport.Option{
		transport.WithStore(aStore),
		transport.WithCookieJar(jar),
		transport.WithRefreshURL(o.URL + transport.RefreshPath),
		transport.WithRefreshTimeout(o.RefreshTimeout),
		transport.WithLogger(o.Logger),
		transport.WithMetrics(metrics),
	}
	if o.RateLimit > 0 {
		opts = append(opts, transport.WithRateLimit(rate.Limit(o.RateLimit), o.Burst))
	}
	return transport.New(opts...)
}

func (o *ClientOptions) store(ctx context.Context) (store.Store, error) {
	if o.Store != nil {
		return o.Store, nil
	}
	if o.StateURL == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewFileStore(ctx, url.Join(o.StateURL, credentialsFile))
}

func (o *ClientOptions) cookieJar(ctx context.Context) (http.CookieJar, error) {
	if o.CookieJar != nil {
		return o.CookieJar, nil
	}
	if o.StateURL == "" {
		return cookiejar.New(nil)
	}
	return transport.NewFileJar(ctx, url.Join(o.StateURL, cookiesFile))
}
