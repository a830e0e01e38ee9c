package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/core/run"
)

// ImageGenerator implements secondary.ImageGenerator with the images API.
type ImageGenerator struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *log.Logger
}

// NewImageGenerator creates an ImageGenerator from the LLM configuration.
func NewImageGenerator(cfg config.LLMConfig, timeout time.Duration, logger *log.Logger) (*ImageGenerator, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("api key missing: set %s", cfg.APIKeyEnv)
	}
	if cfg.ImageModel == "" {
		return nil, fmt.Errorf("image model is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ImageGenerator{
		client:  openai.NewClient(opts...),
		model:   cfg.ImageModel,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// GenerateImage produces raw PNG bytes for a cover prompt. Any API failure
// surfaces as *run.ImageError; the asset resolver falls back locally.
func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:          openai.ImageModel(g.model),
		Prompt:         prompt,
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1792x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, &run.ImageError{Cause: err}
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, &run.ImageError{Cause: errors.New("empty image response")}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &run.ImageError{Cause: fmt.Errorf("malformed image payload: %w", err)}
	}

	g.logger.Printf("[image] generated cover: %d bytes", len(data))
	return data, nil
}
