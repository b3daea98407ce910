package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/viant/storefront/client/auth/store"
	"golang.org/x/time/rate"
)

var (
	// ErrRefreshFailed wraps every unsuccessful refresh episode
	ErrRefreshFailed = errors.New("transport: session refresh failed")
	// ErrRefresherNil is returned by New when neither a refresher nor a refresh URL was configured
	ErrRefresherNil = errors.New("transport: refresher was not configured")
)

// Coordinator replays calls rejected with 401 after a single shared session refresh.
// Create one per process and share it wherever storefront calls are made.
type Coordinator struct {
	store          store.Store
	refresher      Refresher
	refreshURL     string
	transport      http.RoundTripper
	jar            http.CookieJar
	limiter        *rate.Limiter
	metrics        *Metrics
	logger         *logrus.Entry
	refreshTimeout time.Duration

	mux     sync.Mutex
	episode *episode

	// generation counts released episodes
	generation atomic.Uint64
}

// episode is one refresh attempt shared by every caller that observed 401 while it was in flight
type episode struct {
	id      string
	started time.Time
	done    chan struct{}
	err     error
}

// Execute sends request with the current access token. A 401 triggers (or joins) a refresh
// episode after which the request is replayed exactly once.
func (c *Coordinator) Execute(ctx context.Context, request *Request) (*http.Response, error) {
	if request == nil {
		return nil, ErrRequestNil
	}
	if request.ID == "" {
		cp := *request
		cp.ID = uuid.NewString()
		request = &cp
	}
	sentWith := c.store.AccessToken()
	sentAt := c.generation.Load()
	resp, err := c.send(ctx, request, sentWith)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || skipRefresh(ctx) {
		return resp, err
	}
	c.metrics.Unauthorized.Inc()
	logger := c.logger.WithFields(logrus.Fields{"request_id": request.ID, "method": request.Method, "url": request.URL})

	current, state := c.tryAcquire(sentWith, sentAt)
	switch state {
	case superseded:
		logger.Debug("session renewed since the call was sent, replaying")
		drain(resp)
		return c.replay(ctx, request)
	case joined:
		logger.WithField("episode", current.id).Debug("refresh in flight, waiting")
		c.metrics.Waiters.Inc()
		select {
		case <-current.done:
		case <-ctx.Done():
			drain(resp)
			return nil, ctx.Err()
		}
		if current.err != nil {
			logger.WithField("episode", current.id).Debug("replaying after failed refresh")
		}
		drain(resp)
		return c.replay(ctx, request)
	}

	logger = logger.WithField("episode", current.id)
	logger.Debug("session refresh started")
	if err = c.refresh(ctx, current); err != nil {
		logger.WithError(err).Warn("session refresh failed, credentials cleared")
		return resp, nil
	}
	logger.WithField("elapsed", time.Since(current.started)).Debug("session refresh succeeded")
	drain(resp)
	return c.replay(ctx, request)
}

type acquisition int

const (
	acquired acquisition = iota
	joined
	superseded
)

// tryAcquire atomically checks the refresh lock and takes it when free.
// When held it returns the in-flight episode. A call sent before the last episode
// was released, or with a token that has since been replaced, is superseded:
// its 401 belongs to a finished episode and must not start another one.
func (c *Coordinator) tryAcquire(sentWith string, sentAt uint64) (*episode, acquisition) {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.episode != nil {
		return c.episode, joined
	}
	if c.generation.Load() != sentAt {
		return nil, superseded
	}
	if token := c.store.AccessToken(); token != "" && token != sentWith {
		return nil, superseded
	}
	c.episode = &episode{id: uuid.NewString(), started: time.Now(), done: make(chan struct{})}
	c.metrics.LockAcquisitions.Inc()
	return c.episode, acquired
}

func (c *Coordinator) release(current *episode, err error) {
	c.mux.Lock()
	current.err = err
	if c.episode == current {
		c.episode = nil
		c.generation.Add(1)
	}
	c.mux.Unlock()
	close(current.done)
}

// refresh runs the refresh call for the episode owner, writes the outcome to the store
// and releases the lock whatever happens, panics included.
func (c *Coordinator) refresh(ctx context.Context, current *episode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrRefreshFailed, r)
		}
		outcome := "success"
		if err != nil {
			outcome = "failure"
			if clearErr := c.store.ClearCredentials(); clearErr != nil {
				c.logger.WithError(clearErr).Error("failed to clear credentials")
			}
		}
		c.metrics.Refreshes.WithLabelValues(outcome).Inc()
		c.metrics.RefreshDuration.Observe(time.Since(current.started).Seconds())
		c.release(current, err)
	}()

	// the refresh belongs to every waiter, not only to the caller that started it
	refreshCtx := context.WithoutCancel(ctx)
	if c.refreshTimeout > 0 {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(refreshCtx, c.refreshTimeout)
		defer cancel()
	}
	credentials, err := c.refresher.Refresh(refreshCtx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if credentials == nil || credentials.AccessToken == "" {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoAccessToken)
	}
	err = c.store.SetCredentials(credentials)
	if errors.Is(err, store.ErrNotPersisted) {
		c.logger.WithError(err).Warn("refreshed credentials kept in memory only")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return nil
}

// replay re-issues request once; its outcome, 401 included, goes back to the caller as-is
func (c *Coordinator) replay(ctx context.Context, request *Request) (*http.Response, error) {
	c.metrics.Replays.Inc()
	return c.send(ctx, request, c.store.AccessToken())
}

func (c *Coordinator) send(ctx context.Context, request *Request, accessToken string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	httpRequest, err := request.build(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	c.metrics.Requests.Inc()
	return c.transport.RoundTrip(httpRequest)
}

// Store returns the credential store the coordinator reads from
func (c *Coordinator) Store() store.Store {
	return c.store
}

// Metrics returns the coordinator instrumentation
func (c *Coordinator) Metrics() *Metrics {
	return c.metrics
}

// RoundTripper adapts the coordinator to http.RoundTripper
func (c *Coordinator) RoundTripper() *RoundTripper {
	return &RoundTripper{coordinator: c}
}

// Client returns an http.Client whose calls are coordinated
func (c *Coordinator) Client() *http.Client {
	return &http.Client{Transport: c.RoundTripper()}
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// New creates a coordinator
func New(options ...Option) (*Coordinator, error) {
	ret := &Coordinator{
		store:          store.NewMemoryStore(),
		transport:      http.DefaultTransport,
		refreshTimeout: 30 * time.Second,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		ret.logger = logrus.NewEntry(logger)
	}
	if ret.metrics == nil {
		ret.metrics = NewMetrics("")
	}
	ret.transport = withSessionCookies(ret.transport, ret.jar, ret.logger)
	if ret.refresher == nil && ret.refreshURL != "" {
		ret.refresher = NewEndpointRefresher(ret.refreshURL, ret.transport)
	}
	if ret.refresher == nil {
		return nil, ErrRefresherNil
	}
	return ret, nil
}
