package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	credentialsFile string
	publicRead      bool
	cacheControl    string
}

type GCSOptionFunc func(*GCS)

// WithBucket specifies the GCS bucket name
func WithBucket(bucket string) GCSOptionFunc {
	return func(g *GCS) {
		g.bucketName = bucket
	}
}

// WithCredentialsFile specifies a service account key file
func WithCredentialsFile(file string) GCSOptionFunc {
	return func(g *GCS) {
		g.credentialsFile = file
	}
}

// WithPublicRead grants allUsers read access on every uploaded object
func WithPublicRead(public bool) GCSOptionFunc {
	return func(g *GCS) {
		g.publicRead = public
	}
}

// NewGCS connects to GCS using the given options.
func NewGCS(ctx context.Context, opts ...GCSOptionFunc) (*GCS, error) {
	g := &GCS{
		cacheControl: "public, max-age=31536000",
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.bucketName == "" {
		return nil, errors.New("gcs: bucket not set")
	}

	var clientOpts []option.ClientOption
	if g.credentialsFile != "" {
		if _, err := os.Stat(g.credentialsFile); err != nil {
			return nil, fmt.Errorf("gcs: credentials file: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentialsFile(g.credentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: failed in creating storage client: %w", err)
	}
	g.client = client
	g.bucket = client.Bucket(g.bucketName)
	return g, nil
}

// Close closes the GCS client.
func (g *GCS) Close() error {
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

func (g *GCS) Upload(ctx context.Context, localPath, objectName, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("gcs: open upload: %w", err)
	}
	defer f.Close()

	obj := g.bucket.Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = g.cacheControl
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: close writer for %s: %w", objectName, err)
	}

	if g.publicRead {
		if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			// the object is useless if nobody can read it
			_ = obj.Delete(ctx)
			return "", fmt.Errorf("gcs: make %s public: %w", objectName, err)
		}
	}

	logrus.WithField("object", objectName).Debug("uploaded object to GCS")
	return g.publicURL(objectName), nil
}

func (g *GCS) Delete(ctx context.Context, publicURL string) error {
	name, err := g.objectName(publicURL)
	if err != nil {
		return err
	}
	err = g.bucket.Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		logrus.WithField("object", name).Warn("GCS object already gone")
		return nil
	}
	if err != nil {
		return fmt.Errorf("gcs: delete %s: %w", name, err)
	}
	return nil
}

func (g *GCS) publicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", gcsPublicHost, g.bucketName, objectName)
}

func (g *GCS) objectName(publicURL string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", gcsPublicHost, g.bucketName)
	name, ok := strings.CutPrefix(publicURL, prefix)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}
	return name, nil
}
