package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const MaxImageSize = 5 << 20

var (
	ErrTooLarge        = errors.New("image exceeds 5 MiB")
	ErrUnsupportedType = errors.New("only image files are allowed")
)

var allowedTypes = regexp.MustCompile(`^(jpeg|jpg|png|gif|webp)$`)

type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore keeps uploaded product images. Save returns the value to persist
// in products.image_url. Remove ignores values the store does not own and
// files that are already gone.
type ImageStore interface {
	Save(ctx context.Context, up Upload) (string, error)
	Remove(ctx context.Context, imageURL string) error
	Owns(imageURL string) bool
}

// Validate checks both the extension and the declared MIME subtype.
func Validate(up Upload) error {
	if up.Size > MaxImageSize {
		return ErrTooLarge
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Filename), "."))
	if !allowedTypes.MatchString(ext) {
		return ErrUnsupportedType
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	sub, ok := strings.CutPrefix(mediaType, "image/")
	if !ok || !allowedTypes.MatchString(sub) {
		return ErrUnsupportedType
	}
	return nil
}

// GenerateName builds <field>-<unix millis>-<random>.<ext>, keeping the
// original extension as uploaded.
func GenerateName(field, original string) string {
	if field == "" {
		field = "image"
	}
	return fmt.Sprintf("%s-%d-%d%s", field, time.Now().UnixMilli(), rand.Int64N(1_000_000_000), filepath.Ext(original))
}
