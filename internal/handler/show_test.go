package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

var showColumns = []string{
	"id", "title", "slug", "description",
	"artist_name", "artist_bio", "artist_email", "artist_photo",
	"social_instagram", "social_facebook", "social_website", "social_soundcloud", "social_mixcloud",
	"image_url", "image_alt", "genres", "tags",
	"schedule_day", "schedule_slot", "schedule_frequency",
	"request_status", "admin_notes", "status", "featured", "total_episodes",
	"created_by", "created_at", "updated_at",
}

func showRow(id uint64, title, requestStatus, status string, notes any) *sqlmock.Rows {
	return sqlmock.NewRows(showColumns).AddRow(
		id, title, "slug", "desc",
		"DJ Test", "bio", "dj@test.fm", nil,
		nil, nil, nil, nil, nil,
		"https://img/cover.jpg", nil, `["jazz"]`, `[]`,
		"", "", "",
		requestStatus, notes, status, false, 0,
		9, testTime(), testTime(),
	)
}

func newShowHandler(t *testing.T) (*ShowHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewShowHandler(repository.NewShowRepo(db), repository.NewEpisodeRepo(db)), mock
}

const validShowBody = `{
	"title": "Midnight Jazz",
	"description": "Late night jazz selections",
	"artist": {"name": "DJ Test", "bio": "bio", "email": "dj@test.fm"},
	"image": {"url": "https://img/cover.jpg"},
	"genres": ["jazz"],
	"status": "active",
	"featured": true
}`

func TestCreateRequestForcesModerationDefaults(t *testing.T) {
	h, mock := newShowHandler(t)
	mock.ExpectExec("INSERT INTO shows").
		WillReturnResult(sqlmock.NewResult(12, 1))

	req, rec := jsonRequest(http.MethodPost, "/api/shows/artist/request", validShowBody)
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 9, Role: model.RoleArtist})

	require.NoError(t, h.CreateRequest(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var s model.Show
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	// The status/featured fields in the body must not survive moderation.
	assert.Equal(t, model.RequestPending, s.RequestStatus)
	assert.Equal(t, model.ShowInactive, s.Status)
	assert.False(t, s.Featured)
	assert.Equal(t, "midnight-jazz", s.Slug)
	assert.Equal(t, uint64(9), s.CreatedBy)
}

func TestCreateRequestDuplicateTitle(t *testing.T) {
	h, mock := newShowHandler(t)
	mock.ExpectExec("INSERT INTO shows").
		WillReturnError(errDuplicate())

	req, rec := jsonRequest(http.MethodPost, "/api/shows/artist/request", validShowBody)
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 9, Role: model.RoleArtist})

	require.NoError(t, h.CreateRequest(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateRequestMissingFields(t *testing.T) {
	h, _ := newShowHandler(t)
	req, rec := jsonRequest(http.MethodPost, "/api/shows/artist/request", `{"title":"X"}`)
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 9, Role: model.RoleArtist})

	require.NoError(t, h.CreateRequest(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCreateIsPreApproved(t *testing.T) {
	h, mock := newShowHandler(t)
	mock.ExpectExec("INSERT INTO shows").
		WillReturnResult(sqlmock.NewResult(13, 1))

	req, rec := jsonRequest(http.MethodPost, "/api/shows", validShowBody)
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var s model.Show
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, model.RequestApproved, s.RequestStatus)
	assert.Equal(t, model.ShowActive, s.Status)
	assert.True(t, s.Featured)
}

func TestAdminCreateRejectsUnknownStatus(t *testing.T) {
	h, _ := newShowHandler(t)
	body := `{
		"title": "Midnight Jazz",
		"description": "Late night jazz selections",
		"artist": {"name": "DJ Test", "bio": "bio", "email": "dj@test.fm"},
		"image": {"url": "https://img/cover.jpg"},
		"status": "bananas"
	}`
	req, rec := jsonRequest(http.MethodPost, "/api/shows", body)
	c := echo.New().NewContext(req, rec)
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status")
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	h, _ := newShowHandler(t)
	body := `{
		"title": "Midnight Jazz",
		"description": "Late night jazz selections",
		"artist": {"name": "DJ Test", "bio": "bio", "email": "dj@test.fm"},
		"image": {"url": "https://img/cover.jpg"},
		"status": "retired"
	}`
	req, rec := jsonRequest(http.MethodPut, "/api/shows/5", body)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status")
}

func TestApprovePublishesAndActivates(t *testing.T) {
	h, mock := newShowHandler(t)
	mock.ExpectExec("UPDATE shows SET request_status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM shows WHERE id").
		WillReturnRows(showRow(5, "Midnight Jazz", model.RequestApproved, model.ShowActive, nil))

	req, rec := jsonRequest(http.MethodPut, "/api/shows/admin/5/approve", `{}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Approve(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var s model.Show
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, model.RequestApproved, s.RequestStatus)
	assert.Equal(t, model.ShowActive, s.Status)
}

func TestRejectRequiresNotes(t *testing.T) {
	h, _ := newShowHandler(t)
	req, rec := jsonRequest(http.MethodPut, "/api/shows/admin/5/reject", `{"adminNotes":"  "}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes are required")
}

func TestRejectKeepsStatusInactive(t *testing.T) {
	h, mock := newShowHandler(t)
	mock.ExpectExec("UPDATE shows SET request_status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM shows WHERE id").
		WillReturnRows(showRow(5, "Midnight Jazz", model.RequestRejected, model.ShowInactive, "needs a demo mix"))

	req, rec := jsonRequest(http.MethodPut, "/api/shows/admin/5/reject", `{"adminNotes":"needs a demo mix"}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Reject(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var s model.Show
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, model.RequestRejected, s.RequestStatus)
	assert.Equal(t, model.ShowInactive, s.Status)
}

func TestGetBySlugNotFound(t *testing.T) {
	h, mock := newShowHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM shows WHERE slug").
		WillReturnRows(sqlmock.NewRows(showColumns))

	req, rec := jsonRequest(http.MethodGet, "/api/shows/slug/nope", "")
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues("nope")

	require.NoError(t, h.GetBySlug(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
