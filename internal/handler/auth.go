package handler

import (
	"context"
	"net/http"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/config"
	"github.com/lunafm/station-api/internal/model"
	"github.com/lunafm/station-api/internal/repository"
	"github.com/lunafm/station-api/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	ArtistName string `json:"artistName"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type googleReq struct {
	IDToken string `json:"id_token"`
}
type authResp struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates a local artist account and returns a session token.
// The role is always artist (admins are never self-registered) and any
// role supplied in the body is ignored by virtue of the typed schema.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Artist"
	}
	artistName := strings.TrimSpace(req.ArtistName)
	if artistName == "" {
		artistName = name
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u := &model.User{
		Email:        req.Email,
		PasswordHash: &hash,
		Name:         name,
		ArtistName:   artistName,
		Role:         model.RoleArtist,
		AuthProvider: model.ProviderLocal,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, authResp{Token: tok.Token, User: u})
}

// Login verifies local credentials. The response never reveals whether the
// email or the password was wrong; the one deliberate exception is a
// Google-only account, which gets steered to the Google flow instead of a
// doomed password check.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.PasswordHash == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "this account uses Google sign-in; use the Google button instead",
		})
	}
	if !utils.VerifyPassword(*u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	_ = h.Users.TouchLastLogin(ctx, u.ID) // best effort

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{Token: tok.Token, User: u})
}

// Google signs a user in with a verified Google ID token obtained by the
// SPA. Resolution order: existing Google identity, then an existing local
// account with the same email (which gets the identity linked), then a
// brand new artist account. Repeating the call with the same identity is
// idempotent.
func (h *AuthHandler) Google(c echo.Context) error {
	if h.Cfg.GoogleClientID == "" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "google sign-in is not configured"})
	}
	var req googleReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_token is required"})
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(req.IDToken, []string{h.Cfg.GoogleClientID}); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google id token"})
	}
	claims, err := googleAuthIDTokenVerifier.Decode(req.IDToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid google id token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.resolveGoogleUser(ctx, claims.Sub, claims.Email, claims.Name, claims.Picture)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "google sign-in failed"})
	}
	_ = h.Users.TouchLastLogin(ctx, u.ID)

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{Token: tok.Token, User: u})
}

func (h *AuthHandler) resolveGoogleUser(ctx context.Context, sub, email, name, picture string) (*model.User, error) {
	if u, err := h.Users.GetByGoogleID(ctx, sub); err == nil {
		return u, nil
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	var avatar *string
	if picture != "" {
		avatar = &picture
	}

	// Known email without a Google identity yet: link the account.
	if u, err := h.Users.GetByEmail(ctx, email); err == nil {
		if err := h.Users.LinkGoogle(ctx, u.ID, sub, avatar); err != nil {
			return nil, err
		}
		return h.Users.GetByID(ctx, u.ID)
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	if name == "" {
		name = email
	}
	u := &model.User{
		Email:        email,
		Name:         name,
		ArtistName:   name,
		Role:         model.RoleArtist,
		GoogleID:     &sub,
		Avatar:       avatar,
		AuthProvider: model.ProviderGoogle,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Me rehydrates the current principal for the SPA on reload.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, u)
}
