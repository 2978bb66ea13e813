package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunafm/station-api/internal/config"
)

// multipartRequest builds a request carrying one file part with an explicit
// part content type, which is what the handlers validate against.
func multipartRequest(t *testing.T, field, filename, contentType string, payload []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func newUploadHandler(t *testing.T) *UploadHandler {
	t.Helper()
	return NewUploadHandler(config.Config{
		UploadDir:     t.TempDir(),
		PublicBaseURL: "http://localhost:3000",
	})
}

func TestUploadImageSuccess(t *testing.T) {
	h := newUploadHandler(t)
	req, rec := multipartRequest(t, "image", "cover.png", "image/png", []byte("png-bytes"))
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Image(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), "/uploads/image-")

	entries, err := os.ReadDir(h.Cfg.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))
}

func TestUploadImageRejectsMimeType(t *testing.T) {
	h := newUploadHandler(t)
	req, rec := multipartRequest(t, "image", "notes.pdf", "application/pdf", []byte("%PDF"))
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Image(c))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadImageRejectsOversize(t *testing.T) {
	h := newUploadHandler(t)
	big := make([]byte, maxImageBytes+1)
	req, rec := multipartRequest(t, "image", "huge.png", "image/png", big)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Image(c))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadImageMissingField(t *testing.T) {
	h := newUploadHandler(t)
	req, rec := multipartRequest(t, "file", "cover.png", "image/png", []byte("png"))
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Image(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDeleteRejectsPaths(t *testing.T) {
	h := newUploadHandler(t)
	for _, name := range []string{"../secret", "a/b.png", `a\b.png`, "..", ""} {
		req := httptest.NewRequest(http.MethodDelete, "/api/upload/x", nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("filename")
		c.SetParamValues(name)

		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "filename %q", name)
	}
}

func TestUploadDeleteMissingFile(t *testing.T) {
	h := newUploadHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/upload/gone.png", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("filename")
	c.SetParamValues("gone.png")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadDeleteRemovesFile(t *testing.T) {
	h := newUploadHandler(t)
	path := filepath.Join(h.Cfg.UploadDir, "old.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	req := httptest.NewRequest(http.MethodDelete, "/api/upload/old.png", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("filename")
	c.SetParamValues("old.png")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
