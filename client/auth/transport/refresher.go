package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/viant/storefront/client/auth/store"
)

// RefreshPath is the storefront refresh endpoint path
const RefreshPath = "/auth/refresh"

// ErrNoAccessToken is returned when the refresh endpoint succeeded without issuing a token
var ErrNoAccessToken = errors.New("transport: refresh response had no access token")

// Refresher renews the session using an ambient credential it does not expose (i.e. a refresh cookie)
type Refresher interface {
	Refresh(ctx context.Context) (*store.Credentials, error)
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context) (*store.Credentials, error)

func (f RefresherFunc) Refresh(ctx context.Context) (*store.Credentials, error) {
	return f(ctx)
}

// StatusError reports a non-2xx refresh endpoint response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("refresh endpoint returned %d: %s", e.StatusCode, e.Body)
}

// EndpointRefresher posts to the fixed refresh endpoint. The refresh cookie is attached
// by the transport's cookie jar, never by the refresher itself.
type EndpointRefresher struct {
	URL       string
	Transport http.RoundTripper
}

type refreshResponse struct {
	AccessToken       string          `json:"accessToken"`
	OAuth2AccessToken string          `json:"access_token"`
	User              *store.Identity `json:"user"`
}

func (r *EndpointRefresher) Refresh(ctx context.Context) (*store.Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	payload := &refreshResponse{}
	if err = json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	accessToken := payload.AccessToken
	if accessToken == "" {
		accessToken = payload.OAuth2AccessToken
	}
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}
	user := payload.User
	if user == nil {
		// opaque tokens simply leave the identity empty
		user, _ = store.IdentityFromToken(accessToken)
	}
	return &store.Credentials{AccessToken: accessToken, User: user}, nil
}

// NewEndpointRefresher creates a refresher for URL; transport should carry the cookie jar
func NewEndpointRefresher(URL string, transport http.RoundTripper) *EndpointRefresher {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &EndpointRefresher{URL: URL, Transport: transport}
}
