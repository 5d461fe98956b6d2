package store

import (
	"context"
	"errors"

	"github.com/cliptide/cliptide/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrTokenConflict reports a refresh-token compare-and-swap whose
	// expected value no longer matched the stored one.
	ErrTokenConflict = errors.New("store: refresh token conflict")
)

// Store is the root data access interface implemented by concrete drivers
// (sqlite today). The credential store is the single source of truth for
// session state; nothing session-related lives in process memory.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction scoped to the returned store. The
	// caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing on nil and rolling
	// back on error. Use it for multi-statement writes that must be atomic
	// (e.g. password change plus session invalidation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByLogin looks a user up by username or email. Usernames are
	// matched lowercase.
	GetUserByLogin(ctx context.Context, login string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists on a username or email collision.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash replaces the password digest and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// SetRefreshToken unconditionally overwrites the stored refresh token.
	// Used on login; overwriting invalidates any previously issued token.
	SetRefreshToken(ctx context.Context, userID, token string) error

	// RotateRefreshToken replaces the stored refresh token only if it still
	// equals current — a single-statement compare-and-swap so two
	// concurrent rotations of the same token cannot both succeed. Returns
	// ErrTokenConflict when current lost the race (or was revoked) and
	// ErrNotFound when the user is gone.
	RotateRefreshToken(ctx context.Context, userID, current, next string) error

	// ClearRefreshToken removes the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, userID string) error
}
