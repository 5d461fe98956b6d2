package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired reports a token whose exp (or nbf) check failed.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrMalformed covers everything signature-related: garbage input, a
	// broken signature, or a token of the other kind. Callers must not
	// distinguish these cases.
	ErrMalformed = errors.New("jwtx: malformed or forged token")

	// ErrUnknownKind reports a Kind that is neither access nor refresh.
	ErrUnknownKind = errors.New("jwtx: unknown token kind")
)

// Config holds the signing material and lifetimes for both token kinds.
type Config struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Issuer signs and verifies session tokens. It is a pure function of its
// secrets and the clock; it holds no per-session state.
type Issuer struct {
	cfg Config
	now func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("jwtx: both token secrets are required")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, fmt.Errorf("jwtx: access and refresh secrets must differ")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Issuer{cfg: cfg, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Issue signs a new token of the given kind for subject and returns it with
// its expiry instant.
func (i *Issuer) Issue(kind Kind, subject string) (string, time.Time, error) {
	secret, ttl, err := i.kindParams(kind)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := newClaims(kind, subject, i.cfg.Issuer, ttl, i.now())
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: signing failed: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify validates signature and time bounds against the given kind's secret
// and returns the claims. No claim field is usable unless Verify succeeds.
func (i *Issuer) Verify(token string, kind Kind) (Claims, error) {
	secret, _, err := i.kindParams(kind)
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return Claims{}, ErrExpired
	default:
		return Claims{}, ErrMalformed
	}

	// Belt and braces: distinct secrets already reject cross-kind tokens,
	// but the kind claim keeps that true even if secrets are misconfigured.
	if claims.Kind != kind {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}

// TTL reports the configured lifetime for a token kind.
func (i *Issuer) TTL(kind Kind) time.Duration {
	switch kind {
	case KindRefresh:
		return i.cfg.RefreshTTL
	default:
		return i.cfg.AccessTTL
	}
}

func (i *Issuer) kindParams(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return i.cfg.AccessSecret, i.cfg.AccessTTL, nil
	case KindRefresh:
		return i.cfg.RefreshSecret, i.cfg.RefreshTTL, nil
	default:
		return nil, 0, ErrUnknownKind
	}
}
