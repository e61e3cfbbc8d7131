// Package storage holds the blob stores that keep candidate and site media.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrForeignURL is returned by Delete when a URL does not belong to the store.
var ErrForeignURL = errors.New("url does not belong to this store")

// Store uploads local files and deletes them again by their public URL.
type Store interface {
	Upload(ctx context.Context, localPath, objectName, contentType string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// ObjectName builds a unique object name under folder, keeping the extension
// of the original file name.
func ObjectName(folder, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), ext)
}
