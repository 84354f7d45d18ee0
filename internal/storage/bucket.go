// Package storage keeps uploaded objects in a public bucket on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrInvalidObjectName = errors.New("invalid object name")

// Bucket stores objects under dir/name and hands out public URLs for them.
type Bucket struct {
	dir     string
	name    string
	baseURL string
	log     *zerolog.Logger
}

func NewBucket(root, name, publicBaseURL string, log *zerolog.Logger) (*Bucket, error) {
	if name == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory %s: %w", dir, err)
	}
	return &Bucket{
		dir:     dir,
		name:    name,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		log:     log,
	}, nil
}

func (b *Bucket) Name() string { return b.name }

func (b *Bucket) Dir() string { return b.dir }

// RoutePath is where the bucket is served over HTTP.
func (b *Bucket) RoutePath() string { return "/storage/" + b.name }

func (b *Bucket) PublicURL(object string) string {
	return b.baseURL + b.RoutePath() + "/" + url.PathEscape(object)
}

// Put writes r as object and returns its public URL. A partially written
// object is removed on failure.
func (b *Bucket) Put(ctx context.Context, object string, r io.Reader) (string, error) {
	if object == "" || object != filepath.Base(object) || strings.HasPrefix(object, ".") {
		return "", ErrInvalidObjectName
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(b.dir, object)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create object %s: %w", object, err)
	}

	written, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			b.log.Warn().Err(rmErr).Str("object", object).Msg("failed to remove partial object")
		}
		return "", fmt.Errorf("failed to write object %s: %w", object, err)
	}

	b.log.Info().Str("bucket", b.name).Str("object", object).Int64("bytes", written).Msg("object stored")
	return b.PublicURL(object), nil
}

// ObjectName builds a collision resistant name from the upload time and a
// random suffix. ext comes from the sniffed content type, never from the
// client's file name.
func ObjectName(ext string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, strings.ToLower(ext))
}
