package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
)

// EpisodeHandler bundles the repositories used by the episode endpoints.
type EpisodeHandler struct {
	Episodes *repository.EpisodeRepo
	Shows    *repository.ShowRepo
}

func NewEpisodeHandler(episodes *repository.EpisodeRepo, shows *repository.ShowRepo) *EpisodeHandler {
	if episodes == nil || shows == nil {
		panic("nil repository passed to NewEpisodeHandler")
	}
	return &EpisodeHandler{Episodes: episodes, Shows: shows}
}

// episodeBody is the typed request schema for episode creation and update.
// File and Airtime bookkeeping is managed exclusively by the streaming
// endpoints and cannot be set here.
type episodeBody struct {
	ShowID        uint64      `json:"showId"`
	Title         string      `json:"title"`
	EpisodeNumber *int        `json:"episodeNumber"`
	Description   string      `json:"description"`
	Image         model.Image `json:"image"`
	AirDate       time.Time   `json:"airDate"`
	Genres        []string    `json:"genres"`
	MixcloudURL   string      `json:"mixcloudUrl"`
	Status        string      `json:"status"`
	Featured      *bool       `json:"featured"`
}

func (b *episodeBody) validate() string {
	switch {
	case b.Title == "":
		return "title is required"
	case b.Description == "":
		return "description is required"
	case b.AirDate.IsZero():
		return "air date is required"
	}
	switch b.Status {
	case "", model.EpisodeDraft, model.EpisodePublished, model.EpisodeArchived:
	default:
		return "invalid status"
	}
	return ""
}

// PublicByShowSlug handles GET /api/episodes/public/show/:showSlug. Only
// published episodes of the show are returned, newest air date first.
func (h *EpisodeHandler) PublicByShowSlug(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	s, err := h.Shows.GetBySlug(ctx, c.Param("showSlug"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	episodes, err := h.Episodes.ListPublishedByShow(ctx, s.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episodes"})
	}
	return c.JSON(http.StatusOK, episodes)
}

// List handles GET /api/episodes with optional showId/status filters.
// Artists are scoped to episodes of their own shows; admins see everything.
func (h *EpisodeHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.EpisodeFilter{Status: c.QueryParam("status")}
	if v := c.QueryParam("showId"); v != "" {
		id, err := parseUint(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showId"})
		}
		f.ShowID = id
	}
	if u.Role != model.RoleAdmin {
		f.OwnedBy = u.ID
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	episodes, err := h.Episodes.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load episodes"})
	}
	return c.JSON(http.StatusOK, episodes)
}

// Get handles GET /api/episodes/:id. Artists may only read episodes that
// belong to one of their shows.
func (h *EpisodeHandler) Get(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
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
	if u.Role != model.RoleAdmin {
		s, err := h.Shows.GetByID(ctx, e.ShowID)
		if err != nil || s.CreatedBy != u.ID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	return c.JSON(http.StatusOK, e)
}

// Create handles POST /api/episodes (admin only). The parent show must
// exist; the show's episode counter moves with the insert.
func (h *EpisodeHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body episodeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showId is required"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if _, err := h.Shows.GetByID(ctx, body.ShowID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}

	status := body.Status
	if status == "" {
		status = model.EpisodeDraft
	}
	e := &model.Episode{
		ShowID:        body.ShowID,
		Title:         body.Title,
		EpisodeNumber: body.EpisodeNumber,
		Description:   body.Description,
		Image:         body.Image,
		AirDate:       body.AirDate,
		Genres:        body.Genres,
		MixcloudURL:   body.MixcloudURL,
		Status:        status,
		CreatedBy:     u.ID,
	}
	if body.Featured != nil {
		e.Featured = *body.Featured
	}
	if err := h.Episodes.Create(ctx, e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create episode"})
	}
	return c.JSON(http.StatusCreated, e)
}

// Update handles PUT /api/episodes/:id (admin only). Moving an episode to
// another show is not supported; showId in the body is ignored.
func (h *EpisodeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	var body episodeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
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

	e.Title = body.Title
	e.EpisodeNumber = body.EpisodeNumber
	e.Description = body.Description
	e.Image = body.Image
	e.AirDate = body.AirDate
	e.Genres = body.Genres
	e.MixcloudURL = body.MixcloudURL
	if body.Status != "" {
		e.Status = body.Status
	}
	if body.Featured != nil {
		e.Featured = *body.Featured
	}

	if err := h.Episodes.Update(ctx, e); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update episode"})
	}
	return c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /api/episodes/:id (admin only). The show counter
// is decremented in the delete transaction; any local audio file is
// unlinked afterwards, best effort.
func (h *EpisodeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid episode id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	e, err := h.Episodes.Delete(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "episode not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete episode"})
	}
	if e.LocalFile.Exists && e.LocalFile.Path != "" {
		_ = os.Remove(e.LocalFile.Path)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "episode deleted"})
}
