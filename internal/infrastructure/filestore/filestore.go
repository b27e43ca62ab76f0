// Package filestore stores uploaded recipe images on local disk or in Google Cloud Storage.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrNotImage is returned when uploaded bytes do not decode as a supported image.
var ErrNotImage = errors.New("upload a valid image")

// Store writes binary content under a name and hands back a locator (URL).
type Store interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Delete removes the object behind a locator previously returned by Save.
	Delete(ctx context.Context, locator string) error
}

// RecipeImageDir is the prefix every recipe image is stored under.
const RecipeImageDir = "uploads/recipe"

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// Image is an uploaded payload that decoded successfully.
type Image struct {
	Format      string // jpeg, png, gif, webp
	ContentType string
	Width       int
	Height      int
}

// DetectImage checks that data is a real image. Only the header is decoded.
func DetectImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrNotImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return Image{Format: format, ContentType: "image/" + format, Width: cfg.Width, Height: cfg.Height}, nil
}

// RecipeImagePath builds uploads/recipe/<uuid>.<ext>. The extension comes from the
// client's filename when it looks sane, otherwise from the detected format.
func RecipeImagePath(filename, format string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !extPattern.MatchString(ext) {
		ext = format
		if ext == "jpeg" {
			ext = "jpg"
		}
	}
	return path.Join(RecipeImageDir, uuid.NewString()+"."+ext)
}
