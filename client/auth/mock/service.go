package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/storefront/client/auth/store"
	"github.com/viant/storefront/internal/collection"
	"github.com/viant/storefront/model"
)

// RefreshCookie is the name of the ambient refresh credential cookie
const RefreshCookie = "refresh_token"

type account struct {
	password string
	identity *store.Identity
}

// Service simulates the storefront backend
type Service struct {
	PrivateKey     *rsa.PrivateKey
	Issuer         string
	AccessTokenTTL time.Duration
	RefreshTTL     time.Duration
	// RefreshDelay slows the refresh endpoint down so that concurrent 401s overlap
	RefreshDelay time.Duration
	// RefreshHandler replaces the default refresh endpoint
	RefreshHandler func(w http.ResponseWriter, r *http.Request)
	// ResourceHandler replaces every /api/ endpoint
	ResourceHandler func(w http.ResponseWriter, r *http.Request)
	Cors            *Cors

	accounts     map[string]*account
	productsMu   sync.RWMutex
	products     []*model.Product
	sessions     *collection.SyncMap[string, *store.Identity]
	rotated      *collection.SyncMap[string, string]
	carts        *collection.SyncMap[string, *model.Cart]
	favorites    *collection.SyncMap[string, []string]
	generation   atomic.Int64
	refreshCalls atomic.Int64
	logins       atomic.Int64
}

// RefreshCalls returns the number of calls received by the refresh endpoint
func (s *Service) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// Logins returns the number of successful logins
func (s *Service) Logins() int64 {
	return s.logins.Load()
}

// ExpireAccessTokens invalidates every access token issued so far; refresh tokens stay valid
func (s *Service) ExpireAccessTokens() {
	s.generation.Add(1)
}

// RevokeSessions invalidates every refresh token so that the next refresh fails
func (s *Service) RevokeSessions() {
	s.sessions.Range(func(key string, _ *store.Identity) bool {
		s.sessions.Delete(key)
		return true
	})
}

// Sessions returns the number of live refresh sessions
func (s *Service) Sessions() int {
	return s.sessions.Len()
}

// Handler returns the HTTP handler serving the mock API
func (s *Service) Handler() http.Handler {
	middlewares := []Middleware{echoRequestID}
	if s.Cors != nil {
		middlewares = append([]Middleware{s.Cors.Middleware}, middlewares...)
	}
	return chain(&Handler{Service: s}, middlewares...)
}

// NewService creates a mock storefront backend
func NewService(opts ...Option) (*Service, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %v", err)
	}
	ret := &Service{
		PrivateKey:     privateKey,
		AccessTokenTTL: 15 * time.Minute,
		RefreshTTL:     24 * time.Hour,
		accounts:       map[string]*account{},
		products:       defaultProducts(),
		Cors:           defaultCors(),
		sessions:       collection.NewSyncMap[string, *store.Identity](),
		rotated:        collection.NewSyncMap[string, string](),
		carts:          collection.NewSyncMap[string, *model.Cart](),
		favorites:      collection.NewSyncMap[string, []string](),
	}
	WithUser("ann@example.com", "secret", &store.Identity{ID: "u1", Email: "ann@example.com", Name: "Ann", Role: "customer"})(ret)
	WithUser("admin@example.com", "admin", &store.Identity{ID: "u0", Email: "admin@example.com", Name: "Admin", Role: "admin"})(ret)
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}
