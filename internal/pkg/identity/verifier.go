// Package identity verifies JWTs issued by the hosted identity provider
// (issuer + JWKS), which owns all session management for this service.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/quotapay/quotapay/internal/pkg/env"
)

const defaultLeeway = 30 * time.Second

// Claims are the fields extracted from a verified identity token.
type Claims struct {
	Subject string
	Email   string
	Raw     jwt.MapClaims
}

// Verifier validates access tokens against the provider's JWKS endpoint.
type Verifier struct {
	issuer  string
	keyfunc keyfunc.Keyfunc
	parser  *jwt.Parser
}

// NewVerifierFromEnv initializes a verifier from AUTH_ISSUER and optional
// AUTH_JWKS_URL / AUTH_AUDIENCE overrides.
func NewVerifierFromEnv() (*Verifier, error) {
	return NewVerifier(
		env.GetEnv("AUTH_ISSUER", ""),
		env.GetEnv("AUTH_AUDIENCE", ""),
		env.GetEnv("AUTH_JWKS_URL", ""),
	)
}

// NewVerifier builds a verifier with an optional JWKS URL override.
func NewVerifier(issuer, audience, jwksURL string) (*Verifier, error) {
	issuer = normalizeIssuer(issuer)
	if issuer == "" {
		return nil, errors.New("issuer must be set")
	}
	if jwksURL == "" {
		jwksURL = issuer + ".well-known/jwks.json"
	}

	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	opts := []jwt.ParserOption{
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &Verifier{
		issuer:  issuer,
		keyfunc: keyProvider,
		parser:  jwt.NewParser(opts...),
	}, nil
}

// Verify parses and validates a JWT, returning extracted claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &Claims{
		Subject: readString(mapClaims, "sub"),
		Email:   readString(mapClaims, "email"),
		Raw:     mapClaims,
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	return claims, nil
}

func normalizeIssuer(issuer string) string {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return ""
	}
	if !strings.HasSuffix(issuer, "/") {
		issuer += "/"
	}
	return issuer
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
