package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Parse failures collapse into two sentinels so callers can decide between
// "try a refresh" and "hard reject" without inspecting library errors.
var (
	ErrTokenExpired = errors.New("access token expired")
	ErrTokenInvalid = errors.New("access token invalid")
)

type Claims struct {
	LoginName string `json:"login_name"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject claim.
func (c *Claims) UserID() (uint, error) {
	id64, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse subject claim: %w", err)
	}
	return uint(id64), nil
}

// TokenCodec signs and verifies short-lived HS256 access tokens. It holds no
// mutable state beyond the process-wide secret and TTL loaded at startup.
type TokenCodec struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

func NewTokenCodec(secret, issuer string, accessTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), issuer: issuer, accessTTL: accessTTL}
}

func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

func (c *TokenCodec) SignAccessToken(userID uint, loginName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		LoginName: loginName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// ParseAccessToken is tri-state: (claims, nil) for a valid token,
// ErrTokenExpired for a well-formed but stale one, ErrTokenInvalid for
// everything else (bad signature, malformed, wrong issuer, wrong alg).
func (c *TokenCodec) ParseAccessToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
