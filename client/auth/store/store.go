package store

import (
	"errors"
	"sync"
)

// ErrCredentialsNil is returned when SetCredentials is called without credentials
var ErrCredentialsNil = errors.New("store: credentials were nil")

// Store owns the session credential state.
// The coordinator only reads the access token and writes through SetCredentials/ClearCredentials.
type Store interface {
	AccessToken() string
	Credentials() *Credentials
	SetCredentials(credentials *Credentials) error
	ClearCredentials() error
}

// Listener is notified after each credential change; nil credentials mean logout
type Listener func(credentials *Credentials)

type MemoryStoreOption func(*memoryStore)

// WithCredentials seeds the store, i.e. a session restored at start-up
func WithCredentials(credentials *Credentials) MemoryStoreOption {
	return func(m *memoryStore) {
		m.credentials = credentials.Clone()
	}
}

// WithListener registers a credential change listener
func WithListener(listener Listener) MemoryStoreOption {
	return func(m *memoryStore) {
		m.listeners = append(m.listeners, listener)
	}
}

type memoryStore struct {
	mu          sync.RWMutex
	credentials *Credentials
	listeners   []Listener
}

func (m *memoryStore) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.credentials == nil {
		return ""
	}
	return m.credentials.AccessToken
}

func (m *memoryStore) Credentials() *Credentials {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credentials.Clone()
}

func (m *memoryStore) SetCredentials(credentials *Credentials) error {
	if credentials == nil {
		return ErrCredentialsNil
	}
	m.mu.Lock()
	m.credentials = credentials.Clone()
	m.mu.Unlock()
	m.notify(credentials)
	return nil
}

func (m *memoryStore) ClearCredentials() error {
	m.mu.Lock()
	m.credentials = nil
	m.mu.Unlock()
	m.notify(nil)
	return nil
}

func (m *memoryStore) notify(credentials *Credentials) {
	for _, listener := range m.listeners {
		if listener != nil {
			listener(credentials.Clone())
		}
	}
}

func NewMemoryStore(options ...MemoryStoreOption) Store {
	ret := &memoryStore{}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
