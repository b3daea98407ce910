package store

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrNoAccessToken is returned by TokenSource when no session is present
var ErrNoAccessToken = errors.New("store: no access token")

type tokenSource struct {
	store Store
}

// Token returns the current access token; expiry is taken from the JWT "exp" claim when present
func (s *tokenSource) Token() (*oauth2.Token, error) {
	accessToken := s.store.AccessToken()
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}
	ret := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
		if expiry, _ := claims.GetExpirationTime(); expiry != nil {
			ret.Expiry = expiry.Time
		}
	}
	return ret, nil
}

// TokenSource exposes the store to golang.org/x/oauth2 consumers.
// It never refreshes: renewal belongs to the transport coordinator.
func TokenSource(store Store) oauth2.TokenSource {
	return &tokenSource{store: store}
}
