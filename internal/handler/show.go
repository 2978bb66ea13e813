package handler

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/queue"
	"github.com/lunafm/station-api/internal/repository"
	queue_publisher "github.com/lunafm/station-api/internal/service"
	"github.com/lunafm/station-api/internal/utils"
)

// ShowHandler bundles the repositories used by the show endpoints.
type ShowHandler struct {
	Shows    *repository.ShowRepo
	Episodes *repository.EpisodeRepo
}

func NewShowHandler(shows *repository.ShowRepo, episodes *repository.EpisodeRepo) *ShowHandler {
	if shows == nil || episodes == nil {
		panic("nil repository passed to NewShowHandler")
	}
	return &ShowHandler{Shows: shows, Episodes: episodes}
}

// showBody is the typed request schema shared by creation and update.
// Moderation fields (requestStatus, adminNotes, stats, createdBy) are not
// part of it, so clients cannot smuggle them in.
type showBody struct {
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Artist      model.ArtistProfile `json:"artist"`
	Image       model.Image         `json:"image"`
	Genres      []string            `json:"genres"`
	Tags        []string            `json:"tags"`
	Schedule    model.Schedule      `json:"schedule"`
	Status      string              `json:"status"`   // honored for admins only
	Featured    *bool               `json:"featured"` // honored for admins only
}

func (b *showBody) validate() string {
	b.Title = strings.TrimSpace(b.Title)
	b.Description = strings.TrimSpace(b.Description)
	b.Artist.Name = strings.TrimSpace(b.Artist.Name)
	switch {
	case b.Title == "":
		return "title is required"
	case b.Description == "":
		return "description is required"
	case b.Artist.Name == "":
		return "artist name is required"
	case b.Artist.Bio == "":
		return "artist bio is required"
	case b.Artist.Email == "":
		return "artist email is required"
	case b.Image.URL == "":
		return "image url is required"
	}
	switch b.Status {
	case "", model.ShowActive, model.ShowInactive, model.ShowArchived:
	default:
		return "invalid status"
	}
	return ""
}

// slugFor picks the explicit slug when one was supplied, otherwise derives
// it from the title.
func slugFor(b *showBody) string {
	if s := strings.TrimSpace(b.Slug); s != "" {
		return s
	}
	return utils.Slugify(b.Title)
}

func (b *showBody) apply(s *model.Show) {
	s.Title = b.Title
	s.Description = b.Description
	s.Artist = b.Artist
	s.Image = b.Image
	s.Genres = b.Genres
	s.Tags = b.Tags
	s.Schedule = b.Schedule
}

// GetBySlug handles the public GET /api/shows/slug/:slug endpoint.
func (h *ShowHandler) GetBySlug(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	s, err := h.Shows.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	return c.JSON(http.StatusOK, s)
}

// List handles GET /api/shows with optional status/featured/genre filters.
// Both roles may browse the full catalogue; write access is what differs.
func (h *ShowHandler) List(c echo.Context) error {
	f := repository.ShowFilter{
		Status: c.QueryParam("status"),
		Genre:  c.QueryParam("genre"),
	}
	if v := c.QueryParam("featured"); v != "" {
		b := v == "true"
		f.Featured = &b
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	shows, err := h.Shows.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	return c.JSON(http.StatusOK, shows)
}

// Get handles GET /api/shows/:id.
func (h *ShowHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	s, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	return c.JSON(http.StatusOK, s)
}

// CreateRequest handles POST /api/shows/artist/request: an artist submits
// a show for moderation. The moderation fields are forced server-side:
// every artist submission starts pending, inactive and unfeatured no
// matter what the body says.
func (h *ShowHandler) CreateRequest(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body showBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	s := &model.Show{
		Slug:          slugFor(&body),
		RequestStatus: model.RequestPending,
		Status:        model.ShowInactive,
		Featured:      false,
		CreatedBy:     u.ID,
	}
	body.apply(s)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Shows.Create(ctx, s); err != nil {
		if err == repository.ErrTitleExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a show with this title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create request"})
	}

	// Broker outages must not fail the submission.
	_ = queue_publisher.PublishRequestSubmitted(context.Background(), queue.ShowRequestSubmittedEvent{
		ShowID:      s.ID,
		Title:       s.Title,
		Slug:        s.Slug,
		ArtistName:  s.Artist.Name,
		SubmittedBy: u.ID,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, s)
}

// MyShows handles GET /api/shows/artist/my-shows: the artist's own
// submissions, whatever their moderation state.
func (h *ShowHandler) MyShows(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	shows, err := h.Shows.ListByCreator(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	return c.JSON(http.StatusOK, shows)
}

// Create handles POST /api/shows: direct admin creation, which bypasses
// moderation entirely and lands pre-approved.
func (h *ShowHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body showBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	status := body.Status
	if status == "" {
		status = model.ShowActive
	}
	s := &model.Show{
		Slug:          slugFor(&body),
		RequestStatus: model.RequestApproved,
		Status:        status,
		CreatedBy:     u.ID,
	}
	if body.Featured != nil {
		s.Featured = *body.Featured
	}
	body.apply(s)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Shows.Create(ctx, s); err != nil {
		if err == repository.ErrTitleExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a show with this title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create show"})
	}
	return c.JSON(http.StatusCreated, s)
}

// Update handles PUT /api/shows/:id (admin full-field edit). The slug is
// recomputed when the title changes unless the body supplies one.
func (h *ShowHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body showBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	s, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}

	if slug := strings.TrimSpace(body.Slug); slug != "" {
		s.Slug = slug
	} else if body.Title != s.Title {
		s.Slug = utils.Slugify(body.Title)
	}
	body.apply(s)
	if body.Status != "" {
		s.Status = body.Status
	}
	if body.Featured != nil {
		s.Featured = *body.Featured
	}

	if err := h.Shows.Update(ctx, s); err != nil {
		switch err {
		case repository.ErrTitleExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "a show with this title already exists"})
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update show"})
	}
	fresh, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, s) // fallback to the in-memory copy
	}
	return c.JSON(http.StatusOK, fresh)
}

// Delete handles DELETE /api/shows/:id. Child episodes go with the show in
// one transaction; their audio files are unlinked afterwards, best effort.
func (h *ShowHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	episodes, err := h.Episodes.List(ctx, repository.EpisodeFilter{ShowID: id})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episodes"})
	}
	if err := h.Shows.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete show"})
	}
	for _, e := range episodes {
		if e.LocalFile.Exists && e.LocalFile.Path != "" {
			_ = os.Remove(e.LocalFile.Path)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "show deleted"})
}

// Requests handles GET /api/shows/admin/requests: the pending moderation
// queue.
func (h *ShowHandler) Requests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	shows, err := h.Shows.ListPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load requests"})
	}
	return c.JSON(http.StatusOK, shows)
}

type moderationReq struct {
	AdminNotes string `json:"adminNotes"`
}

// Approve handles PUT /api/shows/admin/:id/approve. Approval activates the
// show; repeating it is a state no-op that only refreshes the notes.
func (h *ShowHandler) Approve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req moderationReq
	_ = c.Bind(&req) // notes are optional on approval

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var notes *string
	if n := strings.TrimSpace(req.AdminNotes); n != "" {
		notes = &n
	}
	s, err := h.Shows.Approve(ctx, id, notes)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approval failed"})
	}

	_ = queue_publisher.PublishRequestResolved(context.Background(), queue.ShowRequestResolvedEvent{
		ShowID:     s.ID,
		Title:      s.Title,
		Resolution: model.RequestApproved,
		Notes:      req.AdminNotes,
		ResolvedBy: u.ID,
		ResolvedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, s)
}

// Reject handles PUT /api/shows/admin/:id/reject. Rejection must be
// justified: empty notes are a validation error. The operational status is
// left untouched, so a rejected show simply stays inactive.
func (h *ShowHandler) Reject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req moderationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	notes := strings.TrimSpace(req.AdminNotes)
	if notes == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "admin notes are required when rejecting a request"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	s, err := h.Shows.Reject(ctx, id, notes)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rejection failed"})
	}

	_ = queue_publisher.PublishRequestResolved(context.Background(), queue.ShowRequestResolvedEvent{
		ShowID:     s.ID,
		Title:      s.Title,
		Resolution: model.RequestRejected,
		Notes:      notes,
		ResolvedBy: u.ID,
		ResolvedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, s)
}
