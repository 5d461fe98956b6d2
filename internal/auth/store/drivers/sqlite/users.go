package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cliptide/cliptide/internal/auth/domain"
	"github.com/cliptide/cliptide/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, display_name, password_hash,
	avatar_url, cover_url, refresh_token, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByLogin(ctx context.Context, login string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?`,
		strings.ToLower(login), login)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, display_name, password_hash,
			avatar_url, cover_url, refresh_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Username), u.Email, u.DisplayName, u.PasswordHash,
		u.AvatarURL, u.CoverURL, u.RefreshToken, u.CreatedAt, u.UpdatedAt)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return r.exec(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID)
}

func (r *usersRepo) SetRefreshToken(ctx context.Context, userID, token string) error {
	return r.exec(ctx,
		`UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now().UTC(), userID)
}

func (r *usersRepo) RotateRefreshToken(ctx context.Context, userID, current, next string) error {
	// Single-statement compare-and-swap. Whichever concurrent refresh
	// commits first wins; the loser matches zero rows.
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = ?, updated_at = ?
		 WHERE id = ? AND refresh_token = ?`,
		next, time.Now().UTC(), userID, current)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetUserByID(ctx, userID); err != nil {
			return err
		}
		return store.ErrTokenConflict
	}
	return nil
}

func (r *usersRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	// No row check: clearing an already-cleared token is fine.
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = '', updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}
