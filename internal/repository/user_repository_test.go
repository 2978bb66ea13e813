package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunafm/station-api/internal/model"
)

var userColumns = []string{
	"id", "email", "password_hash", "name", "artist_name", "role",
	"google_id", "avatar", "auth_provider", "created_at", "last_login",
}

func newUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

func TestUserCreateNormalizesEmail(t *testing.T) {
	repo, mock := newUserRepo(t)
	hash := "$2a$10$hash"
	mock.ExpectExec("INSERT INTO users").
		WithArgs("dj@test.fm", &hash, "DJ Test", "DJ Test", model.RoleArtist, nil, nil, model.ProviderLocal).
		WillReturnResult(sqlmock.NewResult(4, 1))

	u := &model.User{
		Email:        "  DJ@Test.FM ",
		PasswordHash: &hash,
		Name:         "DJ Test",
		ArtistName:   "DJ Test",
		Role:         model.RoleArtist,
		AuthProvider: model.ProviderLocal,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "dj@test.fm", u.Email)
	assert.Equal(t, uint64(4), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'dj@test.fm' for key 'uq_users_email'"))

	err := repo.Create(context.Background(), &model.User{Email: "dj@test.fm"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByEmailNotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@test.fm").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByEmail(context.Background(), "Nobody@Test.FM")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserGetByGoogleID(t *testing.T) {
	repo, mock := newUserRepo(t)
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE google_id").
		WithArgs("g-123").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			4, "dj@test.fm", nil, "DJ Test", "DJ Test", model.RoleArtist,
			"g-123", "https://pic", model.ProviderGoogle, now, nil,
		))

	u, err := repo.GetByGoogleID(context.Background(), "g-123")
	require.NoError(t, err)
	assert.Nil(t, u.PasswordHash)
	require.NotNil(t, u.GoogleID)
	assert.Equal(t, "g-123", *u.GoogleID)
}
