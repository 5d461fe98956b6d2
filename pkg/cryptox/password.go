// Package cryptox provides password hashing for the credential store.
//
// Digests use Argon2id and are stored in PHC string format so the cost
// parameters travel with the digest and can be tuned without invalidating
// existing records.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params control the Argon2id cost. The defaults follow the OWASP minimum
// recommendation for interactive logins.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultParams = Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassword derives an Argon2id digest of plain with a fresh random salt
// and encodes it as a PHC string.
func HashPassword(plain string, p Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: salt generation failed: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether plain matches the PHC-encoded digest.
//
// It returns false for an empty or malformed digest rather than erroring:
// callers treat every failure identically, and an account without a digest
// must never authenticate.
func VerifyPassword(plain, encoded string) bool {
	params, salt, key, err := decodeDigest(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(plain), salt,
		params.Iterations, params.Memory, params.Parallelism,
		uint32(len(key)),
	)
	return subtle.ConstantTimeCompare(computed, key) == 1
}

func decodeDigest(encoded string) (Params, []byte, []byte, error) {
	// PHC layout: $argon2id$v=19$m=..,t=..,p=..$<salt>$<key>
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("cryptox: not an argon2id digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("cryptox: unsupported argon2 version")
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("cryptox: bad digest parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("cryptox: bad salt encoding: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("cryptox: bad key encoding: %w", err)
	}

	return p, salt, key, nil
}
