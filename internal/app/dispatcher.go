package app

import (
	"context"
	"log"
	"time"

	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/ports/primary"
	"github.com/example/autonote/internal/ports/secondary"
)

// Dispatcher fans one publish action out across the configured accounts.
// Accounts are processed sequentially in the supplied order, each with its
// own session; a failure on one account never aborts dispatch to the next.
type Dispatcher struct {
	publisher secondary.Publisher
	logger    *log.Logger
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher over the browser publisher.
func NewDispatcher(publisher secondary.Publisher, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{publisher: publisher, logger: logger, now: time.Now}
}

// PublishAll publishes the draft to every account and returns one result
// per account, in input order. Transient submission errors get exactly one
// automatic retry; rejected credentials and platform validation errors do
// not.
func (d *Dispatcher) PublishAll(ctx context.Context, draft article.Draft, thumbnailPath string, accounts []secondary.AccountCredential, opts secondary.PublishOptions) []primary.AttemptResult {
	results := make([]primary.AttemptResult, 0, len(accounts))
	for _, account := range accounts {
		results = append(results, d.publishOne(ctx, draft, thumbnailPath, account, opts))
	}
	return results
}

func (d *Dispatcher) publishOne(ctx context.Context, draft article.Draft, thumbnailPath string, account secondary.AccountCredential, opts secondary.PublishOptions) primary.AttemptResult {
	result := primary.AttemptResult{Account: account.Label, Timestamp: d.now().UTC()}

	postURL, err := d.attempt(ctx, draft, thumbnailPath, account, opts)
	if err != nil && run.IsTransient(err) {
		d.logger.Printf("[dispatch] transient failure account=%s, retrying once: %v", account.Label, err)
		postURL, err = d.attempt(ctx, draft, thumbnailPath, account, opts)
	}

	if err != nil {
		d.logger.Printf("[dispatch] account=%s failed: %v", account.Label, err)
		result.Outcome = run.AttemptFailed
		result.Error = err.Error()
		return result
	}

	if opts.AsDraft {
		result.Outcome = run.AttemptDraftSaved
	} else {
		result.Outcome = run.AttemptPublished
		result.PostURL = postURL
	}
	d.logger.Printf("[dispatch] account=%s outcome=%s", account.Label, result.Outcome)
	return result
}

// attempt is one full login-and-submit cycle. The session is always closed
// before returning so retries start from a clean browser context.
func (d *Dispatcher) attempt(ctx context.Context, draft article.Draft, thumbnailPath string, account secondary.AccountCredential, opts secondary.PublishOptions) (string, error) {
	session, err := d.publisher.Login(ctx, account)
	if err != nil {
		return "", err
	}
	defer session.Close()

	return d.publisher.SubmitPost(ctx, session, draft, thumbnailPath, opts)
}
