package secondary

import (
	"context"

	"github.com/example/autonote/internal/core/article"
)

// Publisher defines the secondary port for the browser-automation layer.
// The pipeline only knows the two-call contract: log in, then submit. UI
// mechanics (selectors, waits, modals) stay behind this interface.
type Publisher interface {
	// Login authenticates one account and returns an isolated session.
	// Fails with *run.AuthError on rejected credentials; browser timeouts
	// and navigation failures surface as *run.PublishError so the caller
	// can retry them.
	Login(ctx context.Context, cred AccountCredential) (Session, error)

	// SubmitPost creates the post in the given session and returns its URL
	// (empty for draft saves). Fails with *run.PublishError.
	SubmitPost(ctx context.Context, session Session, draft article.Draft, thumbnailPath string, opts PublishOptions) (string, error)
}

// Session is an authenticated browser session bound to a single account.
// Sessions are never shared between accounts.
type Session interface {
	// Account returns the label of the account that owns the session.
	Account() string

	// Close releases the browser context.
	Close() error
}

// AccountCredential identifies one publishing account. Loaded once at
// process start; immutable for the run's duration.
type AccountCredential struct {
	Label    string
	Email    string
	Password string
}

// PublishOptions controls how a post is submitted.
type PublishOptions struct {
	AsDraft          bool
	PaidArticle      bool
	PriceYen         int
	FreePreviewRatio float64
}
