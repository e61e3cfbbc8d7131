package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"exit_poll/internal/services"
)

// spooled tracks multipart files saved to the temp dir for one request.
type spooled struct {
	paths []string
}

// cleanup removes every spooled file, whatever happened to the request.
func (s *spooled) cleanup() {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logrus.WithError(err).WithField("path", p).Warn("could not remove temp upload")
		}
	}
}

// file saves the multipart field to a temp file. A missing field yields nil.
// The content type is sniffed from the bytes, not taken from the client.
func (ctl *Controller) file(c *gin.Context, s *spooled, field string) (*services.AssetRef, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(ctl.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	tmp, err := os.CreateTemp(ctl.tempDir, "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	s.paths = append(s.paths, path)

	if err := c.SaveUploadedFile(fh, path); err != nil {
		return nil, fmt.Errorf("save %s: %w", field, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}
	return &services.AssetRef{
		LocalPath:    path,
		OriginalName: fh.Filename,
		ContentType:  contentType,
	}, nil
}
