package model

import "time"

// Roles assignable to a user. Self-registered accounts are always artists;
// admins are provisioned directly in the database.
const (
	RoleArtist = "artist"
	RoleAdmin  = "admin"
)

// Auth providers. A local account carries a password hash; a google account
// carries a GoogleID. An account created locally and later signed in with
// Google ends up with both.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User mirrors the `users` table. PasswordHash is nil for accounts that
// only ever signed in through Google. The struct doubles as the API
// response shape; the hash is never serialized.
type User struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	Name         string     `json:"name"`
	ArtistName   string     `json:"artistName,omitempty"`
	Role         string     `json:"role"`
	GoogleID     *string    `json:"-"`
	Avatar       *string    `json:"avatar,omitempty"`
	AuthProvider string     `json:"authProvider"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}
