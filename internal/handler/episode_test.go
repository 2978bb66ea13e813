package handler

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

var episodeColumns = []string{
	"id", "show_id", "title", "episode_number", "description",
	"image_url", "image_alt", "air_date", "genres", "mixcloud_url", "status", "featured",
	"plays", "likes",
	"local_filename", "local_path", "local_original_name", "local_size", "local_mime_type",
	"local_uploaded_at", "local_exists", "local_deleted_at",
	"airtime_file_id", "airtime_uploaded", "airtime_uploaded_at", "airtime_uploaded_by",
	"airtime_schedule_id", "airtime_scheduled_at", "airtime_last_error", "airtime_upload_failed",
	"created_by", "created_at", "updated_at",
}

func episodeRow(id, showID uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(episodeColumns).AddRow(
		id, showID, "Episode", nil, "a mix",
		"", nil, testTime(), `[]`, "", status, false,
		0, 0,
		nil, nil, nil, nil, nil,
		nil, false, nil,
		nil, false, nil, nil,
		nil, nil, nil, false,
		1, testTime(), testTime(),
	)
}

func newEpisodeHandler(t *testing.T) (*EpisodeHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewEpisodeHandler(repository.NewEpisodeRepo(db), repository.NewShowRepo(db)), mock
}

func TestEpisodeGetForbiddenForOtherArtist(t *testing.T) {
	h, mock := newEpisodeHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM episodes WHERE id").
		WillReturnRows(episodeRow(7, 3, model.EpisodePublished))
	// The parent show belongs to user 222, not the caller.
	mock.ExpectQuery("SELECT (.+) FROM shows WHERE id").
		WillReturnRows(showRowOwnedBy(3, 222))

	req, rec := jsonRequest(http.MethodGet, "/api/episodes/7", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user", &model.User{ID: 9, Role: model.RoleArtist})

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEpisodeGetAllowedForOwner(t *testing.T) {
	h, mock := newEpisodeHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM episodes WHERE id").
		WillReturnRows(episodeRow(7, 3, model.EpisodePublished))
	mock.ExpectQuery("SELECT (.+) FROM shows WHERE id").
		WillReturnRows(showRowOwnedBy(3, 9))

	req, rec := jsonRequest(http.MethodGet, "/api/episodes/7", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user", &model.User{ID: 9, Role: model.RoleArtist})

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEpisodeListScopesArtistToOwnShows(t *testing.T) {
	h, mock := newEpisodeHandler(t)
	mock.ExpectQuery(`SELECT (.+) FROM episodes WHERE show_id IN \(SELECT id FROM shows WHERE created_by = \?\)`).
		WithArgs(uint64(9)).
		WillReturnRows(episodeRow(7, 3, model.EpisodePublished))

	req, rec := jsonRequest(http.MethodGet, "/api/episodes", "")
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 9, Role: model.RoleArtist})

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEpisodeCreateMissingShow(t *testing.T) {
	h, mock := newEpisodeHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM shows WHERE id").
		WillReturnRows(sqlmock.NewRows(showColumns))

	req, rec := jsonRequest(http.MethodPost, "/api/episodes",
		`{"showId":404,"title":"Ep","description":"d","airDate":"2025-06-01T12:00:00Z"}`)
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "show not found")
}

func TestEpisodeCreateSucceeds(t *testing.T) {
	h, mock := newEpisodeHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM shows WHERE id").
		WillReturnRows(showRowOwnedBy(3, 9))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO episodes").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`UPDATE shows SET total_episodes = total_episodes \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, rec := jsonRequest(http.MethodPost, "/api/episodes",
		`{"showId":3,"title":"Ep","description":"d","airDate":"2025-06-01T12:00:00Z"}`)
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"draft"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// showRowOwnedBy builds a minimal show row with the given creator.
func showRowOwnedBy(id, createdBy uint64) *sqlmock.Rows {
	return sqlmock.NewRows(showColumns).AddRow(
		id, "Show", "show", "desc",
		"DJ", "bio", "dj@test.fm", nil,
		nil, nil, nil, nil, nil,
		"https://img", nil, `[]`, `[]`,
		"", "", "",
		model.RequestApproved, nil, model.ShowActive, false, 0,
		createdBy, testTime(), testTime(),
	)
}
