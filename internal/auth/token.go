package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"catalog/internal/conf"
)

var ErrEmptySecret = errors.New("auth: signing secret is empty")

// Claims is the payload of a catalog access token.
type Claims struct {
	UserID        string `json:"userid"`
	Admin         bool   `json:"admin,omitempty"`
	TrustedMember bool   `json:"trusted_member,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the caller described by the claims.
func (c *Claims) Identity() *Identity {
	return &Identity{UserID: c.UserID, Admin: c.Admin, TrustedMember: c.TrustedMember}
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenManager builds a TokenManager from the auth config.
func NewTokenManager(c *conf.Auth) (*TokenManager, error) {
	if c == nil || c.Secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenManager{
		secret:   []byte(c.Secret),
		issuer:   c.Issuer,
		audience: c.Audience,
		now:      time.Now,
	}, nil
}

// Generate signs a token for id that expires after ttl.
func (m *TokenManager) Generate(id *Identity, ttl time.Duration) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		UserID:        id.UserID,
		Admin:         id.Admin,
		TrustedMember: id.TrustedMember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if m.issuer != "" {
		claims.Issuer = m.issuer
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses a token and returns its claims. Tokens signed with anything
// other than HS256, expired tokens and tokens whose userid is not a UUID are rejected.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("invalid token: userid claim: %w", err)
	}
	return claims, nil
}
