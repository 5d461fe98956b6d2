package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/cliptide/cliptide/internal/auth/domain"
	"github.com/cliptide/cliptide/internal/auth/store"
	"github.com/cliptide/cliptide/pkg/cryptox"
	"github.com/cliptide/cliptide/pkg/jwtx"
	"github.com/cliptide/cliptide/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password". Collapsing the two keeps login responses from confirming
	// which identifiers exist.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrMissingToken reports a request that carried no credential at all.
	ErrMissingToken = errors.New("missing_token")

	// ErrTokenReused reports a refresh token that verified fine but no
	// longer matches the stored value: it was rotated out, superseded by a
	// new login, or cleared by logout.
	ErrTokenReused = errors.New("refresh_token_reused")

	// ErrUnknownIdentity reports a validly signed token whose subject no
	// longer resolves to an account.
	ErrUnknownIdentity = errors.New("unknown_identity")
)

// SessionService drives the session lifecycle: login, refresh-with-rotation,
// logout and password change. All session state lives on the user record in
// the store; the service itself is stateless.
type SessionService struct {
	Store  store.Store
	Tokens *jwtx.Issuer
	Hash   cryptox.Params
}

// Login verifies an identifier (username or email) and password, then starts
// a new session: a fresh token pair is issued and the refresh token is
// persisted on the account, unconditionally replacing any previous one. One
// active refresh token per account is the invariant everything else here
// leans on.
func (s *SessionService) Login(
	ctx context.Context,
	identifier, password string,
) (domain.Profile, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login rejected: unknown identifier")
			return domain.Profile{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.Profile{}, domain.TokenPair{}, fmt.Errorf("login lookup: %w", err)
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		l.Info("login rejected: password mismatch", "user_id", u.ID)
		return domain.Profile{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return domain.Profile{}, domain.TokenPair{}, err
	}

	if err := s.Store.Users().SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return domain.Profile{}, domain.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	l.Info("session started", "user_id", u.ID)
	return u.Profile(), pair, nil
}

// Refresh rotates a session. The presented token must verify as a refresh
// token AND byte-equal the account's stored value; the swap to the new token
// happens in a single compare-and-swap write, so presenting the same token
// twice succeeds exactly once — even when the two attempts race.
func (s *SessionService) Refresh(ctx context.Context, presented string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if presented == "" {
		return domain.TokenPair{}, ErrMissingToken
	}

	claims, err := s.Tokens.Verify(presented, jwtx.KindRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUnknownIdentity
		}
		return domain.TokenPair{}, fmt.Errorf("refresh lookup: %w", err)
	}

	// Cheap pre-check before minting tokens. The CAS below remains the
	// authoritative gate under concurrency.
	if subtle.ConstantTimeCompare([]byte(presented), []byte(u.RefreshToken)) != 1 {
		l.Warn("refresh rejected: token superseded", "user_id", u.ID)
		return domain.TokenPair{}, ErrTokenReused
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.Users().RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken)
	switch {
	case errors.Is(err, store.ErrTokenConflict):
		l.Warn("refresh rejected: lost rotation race", "user_id", u.ID)
		return domain.TokenPair{}, ErrTokenReused
	case errors.Is(err, store.ErrNotFound):
		return domain.TokenPair{}, ErrUnknownIdentity
	case err != nil:
		return domain.TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	l.Info("session refreshed", "user_id", u.ID)
	return pair, nil
}

// Logout ends the session by clearing the stored refresh token. Access
// tokens already in the wild simply age out. Idempotent.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.Store.Users().ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	slogx.FromContext(ctx).Info("session ended", "user_id", userID)
	return nil
}

// ChangePassword re-verifies the old password, stores the new digest and
// clears the stored refresh token in one transaction, forcing every other
// device holding a refresh token for this account to log in again.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownIdentity
		}
		return fmt.Errorf("change password lookup: %w", err)
	}

	if !cryptox.VerifyPassword(oldPassword, u.PasswordHash) {
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(newPassword, s.Hash)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return err
		}
		return tx.Users().ClearRefreshToken(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}

func (s *SessionService) issuePair(userID string) (domain.TokenPair, error) {
	access, accessExp, err := s.Tokens.Issue(jwtx.KindAccess, userID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.Tokens.Issue(jwtx.KindRefresh, userID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
