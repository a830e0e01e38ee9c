package app

import (
	"context"
	"fmt"
	"log"

	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/ports/secondary"
)

// Thumbnail source kinds.
const (
	ThumbnailGenerated = "generated"
	ThumbnailFallback  = "fallback"
)

// Thumbnail is the resolved cover artifact handed to the dispatcher. All
// accounts attach the same thumbnail.
type Thumbnail struct {
	SourceKind string
	Path       string
	Width      int
	Height     int
}

// AssetResolver produces the cover thumbnail for a run. It tries each image
// source in order and falls back to a deterministic local render, so a
// thumbnail is always produced: an unavailable image service must never
// block publication.
type AssetResolver struct {
	sources []secondary.ImageGenerator
	store   secondary.ThumbnailStore
	logger  *log.Logger
}

// NewAssetResolver creates a resolver over the prioritized image sources.
func NewAssetResolver(sources []secondary.ImageGenerator, store secondary.ThumbnailStore, logger *log.Logger) *AssetResolver {
	if logger == nil {
		logger = log.Default()
	}
	return &AssetResolver{sources: sources, store: store, logger: logger}
}

// Resolve obtains a thumbnail for the draft. It never fails outward: every
// remote error is logged and the local render is the last resort.
func (r *AssetResolver) Resolve(ctx context.Context, draft article.Draft) *Thumbnail {
	prompt := coverPrompt(draft)

	for _, source := range r.sources {
		data, err := source.GenerateImage(ctx, prompt)
		if err != nil {
			r.logger.Printf("[assets] image source failed: %v", err)
			continue
		}

		artifact, err := r.store.SaveCover(draft.Title, data)
		if err != nil {
			r.logger.Printf("[assets] failed to store cover: %v", err)
			continue
		}

		return &Thumbnail{
			SourceKind: ThumbnailGenerated,
			Path:       artifact.Path,
			Width:      artifact.Width,
			Height:     artifact.Height,
		}
	}

	r.logger.Printf("[assets] all image sources failed, rendering fallback cover")
	artifact, err := r.store.RenderFallback(draft.Title, draft.Theme.Title)
	if err != nil {
		// The render path has no external dependencies; a failure here
		// means the disk is unusable, and the post goes out uncovered.
		r.logger.Printf("[assets] fallback render failed: %v", err)
		return &Thumbnail{SourceKind: ThumbnailFallback}
	}

	return &Thumbnail{
		SourceKind: ThumbnailFallback,
		Path:       artifact.Path,
		Width:      artifact.Width,
		Height:     artifact.Height,
	}
}

func coverPrompt(draft article.Draft) string {
	return fmt.Sprintf(
		"A clean, modern blog cover image for a Japanese note.com article. Theme: %s. No text. Flat illustration style. Bright and professional color palette. 16:9 aspect ratio.",
		draft.Theme.Title,
	)
}
