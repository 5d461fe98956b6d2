// Package jwtx issues and verifies the two session token kinds used by the
// service: short-lived access tokens and long-lived refresh tokens. Each kind
// is signed HS256 with its own secret so leaking one secret never lets an
// attacker forge the other kind.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates the two token flavours. It is embedded in the signed
// claims as "tkn" and checked on verification, on top of the per-kind secret.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Default token lifetimes. Access tokens stay short to bound the blast radius
// of theft; refresh tokens trade that off for user convenience.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the signed claim set. Subject carries the user ID; nothing else
// about the identity is embedded so tokens never need reissuing on profile
// edits.
type Claims struct {
	jwt.RegisteredClaims

	Kind Kind `json:"tkn"`
}

func newClaims(kind Kind, subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Kind: kind,
	}
}
