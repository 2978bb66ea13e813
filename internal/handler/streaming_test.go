package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunafm/station-api/internal/airtime"
	"github.com/lunafm/station-api/internal/config"
	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

func newStreamingHandler(t *testing.T, airtimeURL string) (*StreamingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.Config{EpisodeDir: t.TempDir()}
	return NewStreamingHandler(cfg, airtime.New(airtimeURL), repository.NewEpisodeRepo(db)), mock
}

// deadUpstream returns a base URL that refuses connections immediately.
func deadUpstream(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestLiveInfoOfflineStub(t *testing.T) {
	h, _ := newStreamingHandler(t, deadUpstream(t))
	req, rec := jsonRequest(http.MethodGet, "/api/admin/streaming/live-info", "")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.LiveInfo(c))
	// Upstream failure is not an API failure.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"online":false`)
	assert.Contains(t, rec.Body.String(), `"currentTrack":null`)
}

func TestLiveInfoOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/live-info-v2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"station": {"listener_count": 12, "max_listeners": 100, "uptime": "5 days"},
			"currentShow": {"id": "3", "name": "Midnight Jazz", "starts": "2025-06-01 22:00:00"},
			"nextShow": []
		}`))
	}))
	defer srv.Close()

	h, _ := newStreamingHandler(t, srv.URL)
	req, rec := jsonRequest(http.MethodGet, "/api/admin/streaming/live-info", "")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.LiveInfo(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"online":true`)
	assert.Contains(t, rec.Body.String(), "Midnight Jazz")
	assert.Contains(t, rec.Body.String(), `"listeners":12`)
}

func TestTestConnectionFailureIs200(t *testing.T) {
	h, _ := newStreamingHandler(t, deadUpstream(t))
	req, rec := jsonRequest(http.MethodGet, "/api/admin/streaming/test-connection", "")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.TestConnection(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"connected":false`)
}

func TestWeekScheduleOfflineHasAllDays(t *testing.T) {
	h, _ := newStreamingHandler(t, deadUpstream(t))
	req, rec := jsonRequest(http.MethodGet, "/api/admin/streaming/week-schedule", "")
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.WeekSchedule(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		assert.Contains(t, rec.Body.String(), `"`+day+`"`)
	}
}

func TestMarkUploadedRequiresFileID(t *testing.T) {
	h, _ := newStreamingHandler(t, deadUpstream(t))
	req, rec := jsonRequest(http.MethodPost, "/api/admin/streaming/episodes/7/mark-uploaded", `{"airtimeFileId":""}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.MarkUploaded(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "airtimeFileId is required")
}

func TestScheduleRequiresMarkUploadedFirst(t *testing.T) {
	h, mock := newStreamingHandler(t, deadUpstream(t))
	// airtime_uploaded is false in this row.
	mock.ExpectQuery("SELECT (.+) FROM episodes WHERE id").
		WillReturnRows(episodeRow(7, 3, model.EpisodeDraft))

	req, rec := jsonRequest(http.MethodPost, "/api/admin/streaming/episodes/7/schedule", `{"scheduleId":"sched-1"}`)
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.Schedule(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be marked as uploaded")
}

func TestUploadAudioRejectsMimeType(t *testing.T) {
	h, mock := newStreamingHandler(t, deadUpstream(t))
	mock.ExpectQuery("SELECT (.+) FROM episodes WHERE id").
		WillReturnRows(episodeRow(7, 3, model.EpisodeDraft))

	req, rec := multipartRequest(t, "audioFile", "mix.txt", "text/plain", []byte("not audio"))
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.UploadAudio(c))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadAudioStoresFileAndResetsLinkage(t *testing.T) {
	h, mock := newStreamingHandler(t, deadUpstream(t))
	mock.ExpectQuery("SELECT (.+) FROM episodes WHERE id").
		WillReturnRows(episodeRow(7, 3, model.EpisodePublished))
	mock.ExpectExec("UPDATE episodes SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req, rec := multipartRequest(t, "audioFile", "mix.mp3", "audio/mpeg", []byte("mp3-bytes"))
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.UploadAudio(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAudioIdempotent(t *testing.T) {
	h, mock := newStreamingHandler(t, deadUpstream(t))
	// First delete: row still flagged as existing.
	mock.ExpectQuery("SELECT (.+) FROM episodes WHERE id").
		WillReturnRows(episodeRow(7, 3, model.EpisodePublished))
	mock.ExpectExec("UPDATE episodes SET local_exists=0").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second delete: already soft-deleted, still succeeds.
	mock.ExpectQuery("SELECT (.+) FROM episodes WHERE id").
		WillReturnRows(episodeRow(7, 3, model.EpisodePublished))
	mock.ExpectExec("UPDATE episodes SET local_exists=0").
		WillReturnResult(sqlmock.NewResult(0, 0))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/streaming/episodes/7/file", nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("7")

		require.NoError(t, h.DeleteAudio(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
