package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	i, err := NewIssuer(Config{
		Issuer:        "cliptide-test",
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
	})
	require.NoError(t, err)
	return i
}

func TestNewIssuerRejectsBadSecrets(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer(Config{AccessSecret: []byte("a")})
	require.Error(t, err)

	_, err = NewIssuer(Config{
		AccessSecret:  []byte("same"),
		RefreshSecret: []byte("same"),
	})
	require.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()
	i := testIssuer(t)

	token, expires, err := i.Issue(KindAccess, "user-123")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(DefaultAccessTTL), expires, time.Minute)

	claims, err := i.Verify(token, KindAccess)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, KindAccess, claims.Kind)
	require.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	t.Parallel()
	i := testIssuer(t)

	refresh, _, err := i.Issue(KindRefresh, "user-123")
	require.NoError(t, err)

	_, err = i.Verify(refresh, KindAccess)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = i.Verify(refresh, Kind("banana"))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Parallel()
	i := testIssuer(t)

	token, _, err := i.Issue(KindAccess, "user-123")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = i.Verify(tampered, KindAccess)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = i.Verify("not-even-a-jwt", KindAccess)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	i, err := NewIssuer(Config{
		Issuer:        "cliptide-test",
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     -time.Minute,
	})
	require.NoError(t, err)

	token, _, err := i.Issue(KindAccess, "user-123")
	require.NoError(t, err)

	_, err = i.Verify(token, KindAccess)
	require.ErrorIs(t, err, ErrExpired)
}
