// Package media stores article images. The S3 store works against AWS or any
// S3-compatible endpoint such as MinIO; the memory store backs tests and
// local development.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anandpskerala/ArticleHubBackend/pkg/config"
)

// ErrEmptyUpload is returned when an upload carries no bytes
var ErrEmptyUpload = errors.New("media: empty upload")

// Upload is an image received from a client
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Object identifies a stored image
type Object struct {
	// URL is the public address saved on the article
	URL string
	// ID is the store key used for later deletion
	ID string
}

// Store uploads and destroys article images
type Store interface {
	Upload(ctx context.Context, up *Upload) (*Object, error)
	Destroy(ctx context.Context, id string) error
}

// NewStore selects the store named by cfg.Provider
func NewStore(ctx context.Context, cfg *config.MediaConfig) (Store, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStore(cfg.PublicURL, cfg.Folder), nil
	case "s3":
		return NewS3Store(ctx, &S3Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			PublicURL: cfg.PublicURL,
			Folder:    cfg.Folder,
		})
	default:
		return nil, fmt.Errorf("unknown media provider %q", cfg.Provider)
	}
}

// objectKey builds folder/yyyy/mm/<uuid><ext>
func objectKey(folder, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	name := fmt.Sprintf("%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
