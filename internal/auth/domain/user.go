package domain

import "time"

// User is the persisted identity record. PasswordHash and RefreshToken never
// leave the service; everything outward-facing goes through Profile.
type User struct {
	ID           string
	Username     string // unique, stored lowercase
	Email        string // unique
	DisplayName  string
	PasswordHash string // argon2id PHC encoded
	AvatarURL    string
	CoverURL     string

	// RefreshToken holds the single currently-valid refresh token for this
	// user, or "" when no session is active. Byte-equality against this
	// value at refresh time is the sole revocation mechanism.
	RefreshToken string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the sanitized view of a User handed to HTTP handlers and
// clients: credentials stripped.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Profile strips the credential fields from u.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CoverURL:    u.CoverURL,
		CreatedAt:   u.CreatedAt,
	}
}
