package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
)

// FileJar wraps cookiejar.Jar and persists cookies as JSON at an afs URL on each update,
// so the refresh cookie survives a restart of a CLI or single-host service.
type FileJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
	fs    afs.Service
	URL   string
	index map[string]persistedCookie
	err   error
}

type persistedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Host     string    `json:"host"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

func (p *persistedCookie) key() string {
	host := p.Domain
	if host == "" {
		host = p.Host
	}
	return host + "|" + p.Path + "|" + p.Name
}

func (p *persistedCookie) expired(now time.Time) bool {
	return !p.Expires.IsZero() && now.After(p.Expires)
}

type cookieSnapshot struct {
	Cookies []persistedCookie `json:"cookies"`
}

// NewFileJar creates a cookie jar persisted at URL
func NewFileJar(ctx context.Context, URL string) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	ret := &FileJar{inner: inner, fs: afs.New(), URL: URL, index: map[string]persistedCookie{}}
	if err = ret.load(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

func (j *FileJar) Cookies(u *neturl.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

func (j *FileJar) SetCookies(u *neturl.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	now := time.Now()
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	for _, c := range cookies {
		pc := persistedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Host:     host,
			Domain:   strings.TrimPrefix(c.Domain, "."),
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if pc.Path == "" {
			pc.Path = "/"
		}
		if c.MaxAge > 0 {
			pc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || pc.expired(now) {
			delete(j.index, pc.key())
			continue
		}
		j.index[pc.key()] = pc
	}
	j.err = j.save(context.Background())
}

// Err returns the outcome of the last save, nil once cookies were written
func (j *FileJar) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *FileJar) save(ctx context.Context) error {
	snap := cookieSnapshot{}
	now := time.Now()
	for _, pc := range j.index {
		if !pc.expired(now) {
			snap.Cookies = append(snap.Cookies, pc)
		}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err = j.fs.Upload(ctx, j.URL, 0o600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("transport: failed to save cookies %v: %w", j.URL, err)
	}
	return nil
}

func (j *FileJar) load(ctx context.Context) error {
	exists, err := j.fs.Exists(ctx, j.URL)
	if err != nil || !exists {
		return err
	}
	data, err := j.fs.DownloadWithURL(ctx, j.URL)
	if err != nil {
		return fmt.Errorf("transport: failed to load cookies %v: %w", j.URL, err)
	}
	var snap cookieSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("transport: invalid cookie file %v: %w", j.URL, err)
	}
	now := time.Now()
	for _, pc := range snap.Cookies {
		if pc.expired(now) {
			continue
		}
		scheme := "http"
		if pc.Secure {
			scheme = "https"
		}
		host := pc.Host
		if pc.Domain != "" {
			host = pc.Domain
		}
		u := &neturl.URL{Scheme: scheme, Host: host, Path: pc.Path}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:     pc.Name,
			Value:    pc.Value,
			Domain:   pc.Domain,
			Path:     pc.Path,
			Expires:  pc.Expires,
			Secure:   pc.Secure,
			HttpOnly: pc.HttpOnly,
		}})
		j.index[pc.key()] = pc
	}
	return nil
}
