package secondary

import (
	"context"

	"github.com/example/autonote/internal/core/article"
)

// ArticleGenerator defines the secondary port for the generative text API.
type ArticleGenerator interface {
	// Generate produces a draft for the theme. Failures are reported as
	// *run.GenerationError so the caller can classify rate limits.
	Generate(ctx context.Context, theme article.Theme) (article.Draft, error)
}

// ImageGenerator defines the secondary port for image sources. The primary
// implementation calls the generative image API; alternates fetch stock
// photos. Failures are reported as *run.ImageError.
type ImageGenerator interface {
	// GenerateImage produces raw image bytes for a cover prompt.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ThumbnailStore defines the secondary port for thumbnail artifacts on disk.
type ThumbnailStore interface {
	// SaveCover resizes the image bytes to cover dimensions and writes the
	// artifact, returning its path and final dimensions.
	SaveCover(title string, data []byte) (*ThumbnailArtifact, error)

	// RenderFallback deterministically synthesizes a cover from the title
	// and theme and writes the artifact. It must not fail for valid input.
	RenderFallback(title, themeTitle string) (*ThumbnailArtifact, error)
}

// ThumbnailArtifact describes a written thumbnail file.
type ThumbnailArtifact struct {
	Path   string
	Width  int
	Height int
}
