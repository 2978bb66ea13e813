package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/airtime"
	"github.com/lunafm/station-api/internal/config"
	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

// StreamingHandler groups the admin endpoints that face the Airtime
// server: read-only status proxies plus the local bookkeeping around
// episode audio files. Airtime's admin API is not reachable from here, so
// upload/schedule state is annotation, not remote action.
type StreamingHandler struct {
	Cfg      config.Config
	Airtime  *airtime.Client
	Episodes *repository.EpisodeRepo
}

func NewStreamingHandler(cfg config.Config, client *airtime.Client, episodes *repository.EpisodeRepo) *StreamingHandler {
	if client == nil || episodes == nil {
		panic("nil dependency passed to NewStreamingHandler")
	}
	return &StreamingHandler{Cfg: cfg, Airtime: client, Episodes: episodes}
}

const maxAudioBytes = 500 << 20 // 500 MB

var audioExt = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/ogg":    ".ogg",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
}

// offlineStub is the payload served whenever the Airtime server cannot be
// reached. Status endpoints always answer 200 so the dashboard renders an
// off-air state instead of an error page.
func offlineStub() echo.Map {
	return echo.Map{
		"online":       false,
		"listeners":    0,
		"currentTrack": nil,
		"source":       "offline",
	}
}

// LiveInfo handles GET /api/admin/streaming/live-info.
func (h *StreamingHandler) LiveInfo(c echo.Context) error {
	info, err := h.Airtime.LiveInfoV2(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, offlineStub())
	}
	out := echo.Map{
		"online":       info.CurrentShow != nil,
		"listeners":    0,
		"currentTrack": nil,
		"source":       "airtime",
	}
	if info.Station != nil {
		out["listeners"] = info.Station.ListenerCount
		out["maxListeners"] = info.Station.MaxListeners
		out["schedulerTime"] = info.Station.SchedulerTime
	}
	if info.CurrentShow != nil {
		out["currentTrack"] = info.CurrentShow
	}
	out["nextShows"] = info.NextShow
	return c.JSON(http.StatusOK, out)
}

// CurrentShow handles GET /api/admin/streaming/current-show. It prefers
// the legacy live-info payload because it carries dj and genre fields the
// v2 endpoint dropped.
func (h *StreamingHandler) CurrentShow(c echo.Context) error {
	info, err := h.Airtime.LiveInfo(c.Request().Context())
	if err != nil || info.Shows.Current == nil {
		return c.JSON(http.StatusOK, echo.Map{"onAir": false, "show": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"onAir": true, "show": info.Shows.Current})
}

// weekDays fixes the response ordering; Airtime's map has no order of its
// own.
var weekDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekSchedule handles GET /api/admin/streaming/week-schedule.
func (h *StreamingHandler) WeekSchedule(c echo.Context) error {
	week, err := h.Airtime.WeekInfo(c.Request().Context())
	if err != nil {
		empty := echo.Map{}
		for _, d := range weekDays {
			empty[d] = []airtime.BroadcastShow{}
		}
		empty["source"] = "offline"
		return c.JSON(http.StatusOK, empty)
	}
	out := echo.Map{"source": "airtime"}
	for _, d := range weekDays {
		shows := week[d]
		if shows == nil {
			shows = []airtime.BroadcastShow{}
		}
		out[d] = shows
	}
	return c.JSON(http.StatusOK, out)
}

// Statistics handles GET /api/admin/streaming/statistics.
func (h *StreamingHandler) Statistics(c echo.Context) error {
	info, err := h.Airtime.LiveInfoV2(c.Request().Context())
	if err != nil || info.Station == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"online":        false,
			"listenerCount": 0,
			"maxListeners":  0,
			"uptime":        "",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"online":        true,
		"listenerCount": info.Station.ListenerCount,
		"maxListeners":  info.Station.MaxListeners,
		"uptime":        info.Station.Uptime,
	})
}

// TestConnection handles GET /api/admin/streaming/test-connection. Failure
// is a valid answer, not an error, so the status is always 200.
func (h *StreamingHandler) TestConnection(c echo.Context) error {
	start := time.Now()
	_, err := h.Airtime.LiveInfoV2(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"connected": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"connected": true,
		"latencyMs": time.Since(start).Milliseconds(),
	})
}

// UploadedEpisodes handles GET /api/admin/streaming/uploaded-episodes:
// every episode that currently has a local audio file.
func (h *StreamingHandler) UploadedEpisodes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	episodes, err := h.Episodes.ListWithLocalFiles(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episodes"})
	}
	return c.JSON(http.StatusOK, episodes)
}

// UploadAudio handles POST /api/admin/streaming/episodes/:id/upload,
// multipart field "audioFile". Storing a new file wipes any previous
// Airtime linkage and puts the episode back in draft.
func (h *StreamingHandler) UploadAudio(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	prev, err := h.Episodes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episode"})
	}

	fh, err := c.FormFile("audioFile")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "audio file is required"})
	}
	if fh.Size > maxAudioBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "audio exceeds the 500 MB limit"})
	}
	mime := fh.Header.Get("Content-Type")
	ext, ok := audioExt[mime]
	if !ok {
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "only mp3, wav, ogg and flac audio is accepted"})
	}

	if err := os.MkdirAll(h.Cfg.EpisodeDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store audio"})
	}
	name := fmt.Sprintf("episode-%d-%d-%s%s", id, time.Now().UnixNano(), uuid.NewString()[:8], ext)
	dst := filepath.Join(h.Cfg.EpisodeDir, name)
	if err := saveMultipart(fh, dst); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store audio"})
	}

	now := time.Now().UTC()
	lf := model.LocalFile{
		Filename:     name,
		Path:         dst,
		OriginalName: fh.Filename,
		Size:         fh.Size,
		MimeType:     mime,
		UploadedAt:   &now,
		Exists:       true,
	}
	if err := h.Episodes.SetLocalFile(ctx, id, lf); err != nil {
		_ = os.Remove(dst)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record upload"})
	}
	// Replacement upload: the old file is no longer referenced.
	if prev.LocalFile.Exists && prev.LocalFile.Path != "" && prev.LocalFile.Path != dst {
		_ = os.Remove(prev.LocalFile.Path)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"filename":  name,
		"size":      fh.Size,
		"episodeId": id,
	})
}

// DownloadAudio handles GET /api/admin/streaming/episodes/:id/download.
func (h *StreamingHandler) DownloadAudio(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	e, err := h.Episodes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episode"})
	}
	if !e.LocalFile.Exists || e.LocalFile.Path == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "episode has no local file"})
	}
	name := e.LocalFile.OriginalName
	if name == "" {
		name = e.LocalFile.Filename
	}
	return c.Attachment(e.LocalFile.Path, name)
}

// DeleteAudio handles DELETE /api/admin/streaming/episodes/:id/file. The
// soft delete is idempotent: metadata is flagged even when the file is
// already gone from disk.
func (h *StreamingHandler) DeleteAudio(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	e, err := h.Episodes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episode"})
	}
	if e.LocalFile.Path != "" {
		_ = os.Remove(e.LocalFile.Path)
	}
	if err := h.Episodes.SoftDeleteLocalFile(ctx, id, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete file"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "local file deleted"})
}

type markUploadedReq struct {
	AirtimeFileID string `json:"airtimeFileId"`
}

// MarkUploaded handles POST /api/admin/streaming/episodes/:id/mark-uploaded.
// This records that an admin transferred the file in the Airtime dashboard;
// nothing is sent anywhere.
func (h *StreamingHandler) MarkUploaded(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req markUploadedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	fileID := strings.TrimSpace(req.AirtimeFileID)
	if fileID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "airtimeFileId is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if _, err := h.Episodes.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episode"})
	}
	if err := h.Episodes.MarkUploaded(ctx, id, fileID, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record upload"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "episode marked as uploaded to Airtime (local bookkeeping only)",
	})
}

type scheduleReq struct {
	ScheduleID string `json:"scheduleId"`
}

// Schedule handles POST /api/admin/streaming/episodes/:id/schedule. The
// episode must have been marked uploaded first; there is no Airtime file to
// schedule otherwise.
func (h *StreamingHandler) Schedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	scheduleID := strings.TrimSpace(req.ScheduleID)
	if scheduleID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduleId is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	e, err := h.Episodes.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episode"})
	}
	if !e.Airtime.Uploaded || e.Airtime.FileID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "episode must be marked as uploaded to Airtime first"})
	}
	if err := h.Episodes.SetSchedule(ctx, id, scheduleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record schedule"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "schedule recorded (local bookkeeping only)",
	})
}

// Unschedule handles DELETE /api/admin/streaming/episodes/:id/schedule.
func (h *StreamingHandler) Unschedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if _, err := h.Episodes.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episode"})
	}
	if err := h.Episodes.ClearSchedule(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to clear schedule"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "schedule cleared"})
}
