package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lunafm/station-api/internal/config"
)

// UploadHandler serves the generic image upload endpoints. Audio uploads
// live with the streaming handler because they are tied to an episode.
type UploadHandler struct {
	Cfg config.Config
}

func NewUploadHandler(cfg config.Config) *UploadHandler {
	return &UploadHandler{Cfg: cfg}
}

const maxImageBytes = 5 << 20 // 5 MB

// imageExt maps the accepted image content types to a stored extension.
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image handles POST /api/upload: multipart field "image", jpeg/png/gif/webp
// up to 5 MB. The stored name is random so uploads can never collide or
// overwrite each other.
func (h *UploadHandler) Image(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}
	if fh.Size > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image exceeds the 5 MB limit"})
	}
	ext, ok := imageExt[fh.Header.Get("Content-Type")]
	if !ok {
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "only jpeg, png, gif and webp images are accepted"})
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store image"})
	}

	name := fmt.Sprintf("image-%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	dst := filepath.Join(h.Cfg.UploadDir, name)
	if err := saveMultipart(fh, dst); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store image"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"url":      h.Cfg.PublicBaseURL + "/uploads/" + name,
		"filename": name,
		"size":     fh.Size,
	})
}

// Delete handles DELETE /api/upload/:filename. The parameter must be a
// bare filename; anything resembling a path is rejected outright.
func (h *UploadHandler) Delete(c echo.Context) error {
	name := c.Param("filename")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filename"})
	}
	path := filepath.Join(h.Cfg.UploadDir, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete file"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "file deleted"})
}

// saveMultipart streams one multipart file to disk.
func saveMultipart(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, src)
	return err
}
