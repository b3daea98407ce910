package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/viant/afs"
)

// ErrNotPersisted is returned when credentials were updated in memory but could not be saved
var ErrNotPersisted = errors.New("store: credentials not persisted")

// FileStore persists credentials as JSON at an afs URL (a local path works too),
// while serving reads from memory. It is a lightweight way to survive
// process restarts in CLI or single-host deployments.
type FileStore struct {
	memory *memoryStore
	fs     afs.Service
	URL    string
}

// NewFileStore creates a Store persisted at URL, restoring any previously saved session.
func NewFileStore(ctx context.Context, URL string, options ...MemoryStoreOption) (*FileStore, error) {
	ret := &FileStore{
		memory: NewMemoryStore(options...).(*memoryStore),
		fs:     afs.New(),
		URL:    URL,
	}
	if err := ret.load(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

func (f *FileStore) AccessToken() string {
	return f.memory.AccessToken()
}

func (f *FileStore) Credentials() *Credentials {
	return f.memory.Credentials()
}

// SetCredentials updates memory first; a failed save returns ErrNotPersisted with the new
// session already in effect for this process.
func (f *FileStore) SetCredentials(credentials *Credentials) error {
	if err := f.memory.SetCredentials(credentials); err != nil {
		return err
	}
	if err := f.save(context.Background(), credentials); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}

func (f *FileStore) ClearCredentials() error {
	_ = f.memory.ClearCredentials()
	ctx := context.Background()
	exists, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !exists {
		return err
	}
	if err = f.fs.Delete(ctx, f.URL); err != nil {
		return fmt.Errorf("store: failed to delete %v: %w", f.URL, err)
	}
	return nil
}

func (f *FileStore) save(ctx context.Context, credentials *Credentials) error {
	data, err := json.MarshalIndent(credentials, "", "  ")
	if err != nil {
		return err
	}
	if err = f.fs.Upload(ctx, f.URL, 0o600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store: failed to save %v: %w", f.URL, err)
	}
	return nil
}

func (f *FileStore) load(ctx context.Context) error {
	exists, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !exists {
		return err
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		return fmt.Errorf("store: failed to load %v: %w", f.URL, err)
	}
	credentials := &Credentials{}
	if err = json.Unmarshal(data, credentials); err != nil {
		return fmt.Errorf("store: invalid credentials file %v: %w", f.URL, err)
	}
	if credentials.AccessToken == "" {
		return nil
	}
	f.memory.mu.Lock()
	f.memory.credentials = credentials
	f.memory.mu.Unlock()
	return nil
}
