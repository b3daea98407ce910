package store

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity represents the signed-in storefront user
type Identity struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

// IsAdmin reports whether the user may manage products
func (i *Identity) IsAdmin() bool {
	return i != nil && strings.EqualFold(i.Role, "admin")
}

// Credentials holds the access token together with the user it was issued for
type Credentials struct {
	AccessToken string    `json:"accessToken"`
	User        *Identity `json:"user,omitempty"`
}

// Clone returns a deep copy, nil safe
func (c *Credentials) Clone() *Credentials {
	if c == nil {
		return nil
	}
	ret := *c
	if c.User != nil {
		user := *c.User
		ret.User = &user
	}
	return &ret
}

// IdentityFromToken reads identity claims from a JWT access token without verifying the signature.
// The server is the only party that verifies tokens; the client only needs the display claims.
func IdentityFromToken(accessToken string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, err
	}
	ret := &Identity{}
	ret.ID, _ = claims.GetSubject()
	ret.Email = stringClaim(claims, "email")
	ret.Name = stringClaim(claims, "name")
	ret.Role = stringClaim(claims, "role")
	return ret, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key]; ok {
		text, _ := value.(string)
		return text
	}
	return ""
}
