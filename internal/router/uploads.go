package router

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Daviipontes/Dev-Web/pkg/models"
)

// uploads tracks files written during one request so they can be removed if
// the request fails.
type uploads struct {
	dir   string
	saved []string
}

// save stores a file under a random name and returns the path clients use
// to fetch it.
func (u *uploads) save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst := filepath.Join(u.dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("save upload %q: %w", file.Filename, err)
	}
	u.saved = append(u.saved, dst)
	return path.Join("uploads", name), nil
}

func (u *uploads) discard() {
	for _, f := range u.saved {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove upload", "file", f, "error", err)
		}
	}
	u.saved = nil
}

// media saves the images and video fields of a multipart request. Requests
// that are not multipart carry no media.
func (u *uploads) media(c *gin.Context) (models.Media, error) {
	var media models.Media
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return media, nil
	}
	if err != nil {
		return media, err
	}

	for _, fh := range form.File["images"] {
		p, err := u.save(c, fh)
		if err != nil {
			return media, err
		}
		media.Images = append(media.Images, p)
	}
	if videos := form.File["video"]; len(videos) > 0 {
		p, err := u.save(c, videos[0])
		if err != nil {
			return media, err
		}
		media.Video = p
	}
	return media, nil
}

// single saves one optional file field.
func (u *uploads) single(c *gin.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.save(c, fh)
}
