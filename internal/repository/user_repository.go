package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lunafm/station-api/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, email, password_hash, name, artist_name, role, google_id, avatar, auth_provider, created_at, last_login"

// Create inserts a user and fills in its ID. Emails are normalized to
// lowercase before storage so lookups stay case-insensitive.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name, artist_name, role, google_id, avatar, auth_provider)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.Email, u.PasswordHash, u.Name, u.ArtistName, u.Role, u.GoogleID, u.Avatar, u.AuthProvider)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getWhere(ctx, "email = ?", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByGoogleID fetches a user by their Google subject identifier.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.getWhere(ctx, "google_id = ?", googleID)
}

// LinkGoogle attaches a Google identity to an existing local account,
// keeping the password so both sign-in paths keep working.
func (r *UserRepo) LinkGoogle(ctx context.Context, id uint64, googleID string, avatar *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET google_id = ?, avatar = COALESCE(?, avatar) WHERE id = ?",
		googleID, avatar, id)
	return err
}

// TouchLastLogin stamps the user's last successful sign-in.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login = ? WHERE id = ?", time.Now().UTC(), id)
	return err
}

func (r *UserRepo) getWhere(ctx context.Context, cond string, arg any) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE "+cond+" LIMIT 1", arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.ArtistName, &u.Role,
		&u.GoogleID, &u.Avatar, &u.AuthProvider, &u.CreatedAt, &u.LastLogin)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
