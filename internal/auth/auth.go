package auth

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the hosted auth service's access token we rely on.
type Claims struct {
	Email        string                 `json:"email,omitempty"`
	Role         string                 `json:"role,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 access tokens signed with the service-role JWT secret.
type TokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
		leeway: 30 * time.Second,
	}
}

// Verify parses the token and returns the caller it identifies.
func (v *TokenVerifier) Verify(tokenString string) (*errors.Viewer, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.ErrInvalidToken
	}

	return &errors.Viewer{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.metadataString("full_name"),
		Role:  claims.profileRole(),
	}, nil
}

// profileRole prefers the application role stored in user metadata over the
// token's database role ("authenticated").
func (c *Claims) profileRole() string {
	if r := c.metadataString("role"); r != "" {
		return r
	}
	return c.Role
}

func (c *Claims) metadataString(key string) string {
	s, _ := c.UserMetadata[key].(string)
	return strings.TrimSpace(s)
}

// Sign issues a token the verifier accepts. Used by seed tooling and tests.
func (v *TokenVerifier) Sign(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
