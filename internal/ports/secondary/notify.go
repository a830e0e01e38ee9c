package secondary

import "context"

// Notifier defines the secondary port for run-summary notifications.
// Delivery is best effort: implementations report errors, but callers only
// log them. A notification failure never changes a run's outcome.
type Notifier interface {
	// Notify delivers a run summary to one channel.
	Notify(ctx context.Context, summary RunSummary) error

	// Channel names the notification channel for logging.
	Channel() string
}

// RunSummary is the payload delivered to notification channels.
type RunSummary struct {
	Title      string
	Success    bool
	PostURL    string
	ErrDetail  string
	DraftSaved bool
}
