package imaging

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/example/autonote/internal/core/run"
)

// StockFetcher implements secondary.ImageGenerator by downloading a stock
// photo from Lorem Picsum. It sits between the generative API and the local
// render in the asset resolver's fallback chain: no API key needed, but it
// still requires the network.
type StockFetcher struct {
	client *resty.Client
	logger *log.Logger
}

// NewStockFetcher creates a stock photo fetcher with the given call timeout.
func NewStockFetcher(timeout time.Duration, logger *log.Logger) *StockFetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &StockFetcher{
		client: resty.New().SetTimeout(timeout),
		logger: logger,
	}
}

// GenerateImage downloads a landscape photo seeded by the prompt, so the
// same article fetches the same photo on a rerun.
func (f *StockFetcher) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	url := fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d.jpg", h.Sum32()%1000, coverWidth, coverHeight)

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &run.ImageError{Cause: err}
	}
	if resp.IsError() {
		return nil, &run.ImageError{Cause: fmt.Errorf("stock photo fetch returned %s", resp.Status())}
	}

	f.logger.Printf("[thumbnail] fetched stock photo: %d bytes", len(resp.Body()))
	return resp.Body(), nil
}
