package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bijouxelegance/boutique/internal/filestore"
	"github.com/bijouxelegance/boutique/internal/pkg/errcode"
	"github.com/bijouxelegance/boutique/internal/pkg/response"
)

type ImageHandler struct {
	store   filestore.Store
	baseURL string
}

type uploadResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

func NewImageHandler(store filestore.Store, baseURL string) *ImageHandler {
	return &ImageHandler{store: store, baseURL: baseURL}
}

func (h *ImageHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	reader, contentType, err := sniffContentType(opened)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}
	defer reader.Close()
	if !strings.HasPrefix(contentType, "image/") {
		response.Error(c, errcode.ErrInvalidFile, "only images are accepted")
		return
	}

	key := buildImageKey(file.Filename)
	if err := h.store.Save(c.Request.Context(), key, reader, file.Size); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, uploadResponse{
		Key:         key,
		URL:         h.store.URL(key, h.baseURL),
		Name:        file.Filename,
		ContentType: contentType,
	})
}

// Get serves stored images directly. Only the local store supports it; the
// s3 store publishes objects at their own public URL.
func (h *ImageHandler) Get(c *gin.Context) {
	if h.store.Type() != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	_, _ = file.Seek(0, 0)
	_, _ = io.Copy(c.Writer, file)
}

func sniffContentType(file filestore.ReadSeekCloser) (filestore.ReadSeekCloser, string, error) {
	buf := make([]byte, 512)
	read, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	contentType := http.DetectContentType(buf[:read])
	if _, err := file.Seek(0, 0); err != nil {
		return nil, "", err
	}
	return file, contentType, nil
}

func buildImageKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := randomHex(8)
	if ext == "" {
		return base
	}
	return base + ext
}

func randomHex(size int) string {
	if size <= 0 {
		return ""
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
