// Package imaging contains the thumbnail adapters: the on-disk artifact
// store, the deterministic fallback renderer, and the stock-photo fetcher.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sunshineplan/imgconv"

	"github.com/example/autonote/internal/ports/secondary"
)

// note.com renders covers at 1280x670.
const (
	coverWidth  = 1280
	coverHeight = 670
)

// Store implements secondary.ThumbnailStore, writing PNG artifacts under a
// thumbnails directory.
type Store struct {
	dir    string
	logger *log.Logger
}

// NewStore creates a thumbnail store rooted at dir.
func NewStore(dir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// SaveCover decodes the image bytes, resizes them to cover dimensions, and
// writes the artifact.
func (s *Store) SaveCover(title string, data []byte) (*secondary.ThumbnailArtifact, error) {
	img, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	return s.write(title, imgconv.Resize(img, &imgconv.ResizeOption{Width: coverWidth, Height: coverHeight}))
}

// RenderFallback synthesizes a cover locally and writes the artifact. See
// render.go for the drawing rules; this path never touches the network.
func (s *Store) RenderFallback(title, themeTitle string) (*secondary.ThumbnailArtifact, error) {
	img := renderCover(title, themeTitle)
	return s.write(title, imgconv.Resize(img, &imgconv.ResizeOption{Width: coverWidth, Height: coverHeight}))
}

func (s *Store) write(title string, img image.Image) (*secondary.ThumbnailArtifact, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail dir: %w", err)
	}

	path := filepath.Join(s.dir, safeFilename(title)+".png")
	if err := imgconv.Save(path, img, &imgconv.FormatOption{Format: imgconv.PNG}); err != nil {
		return nil, fmt.Errorf("failed to write thumbnail: %w", err)
	}

	bounds := img.Bounds()
	s.logger.Printf("[thumbnail] wrote %s (%dx%d)", path, bounds.Dx(), bounds.Dy())
	return &secondary.ThumbnailArtifact{Path: path, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}\s\-]`)

// safeFilename derives a filesystem-safe name from a title.
func safeFilename(title string) string {
	cleaned := unsafeChars.ReplaceAllString(title, "")
	cleaned = strings.TrimSpace(cleaned)
	if r := []rune(cleaned); len(r) > 40 {
		cleaned = strings.TrimSpace(string(r[:40]))
	}
	if cleaned == "" {
		return "thumbnail"
	}
	return cleaned
}
