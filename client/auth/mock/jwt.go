package mock

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viant/storefront/client/auth/store"
)

var errTokenExpired = errors.New("access token expired")

// createAccessToken creates a signed RS256 access token for identity
func (s *Service) createAccessToken(identity *store.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.Issuer,
		"sub":   identity.ID,
		"email": identity.Email,
		"name":  identity.Name,
		"role":  identity.Role,
		"exp":   now.Add(s.AccessTokenTTL).Unix(),
		"iat":   now.Unix(),
		"jti":   uuid.NewString(),
		"gen":   s.generation.Load(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.PrivateKey)
}

// authenticate validates the bearer token of r
func (s *Service) authenticate(r *http.Request) (*store.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.New("missing authorization header")
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errors.New("invalid authorization header")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return &s.PrivateKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if generation, _ := claims["gen"].(float64); int64(generation) < s.generation.Load() {
		return nil, errTokenExpired
	}
	return store.IdentityFromToken(raw)
}
