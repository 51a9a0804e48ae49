package driving

import (
	"context"
	"time"
)

// Poller drives the sync service over a set of documents on a fixed
// interval, forever.
type Poller interface {
	// Start begins a background polling loop over a snapshot of
	// documentIDs and returns immediately. Documents registered after the
	// loop starts are not picked up. The loop survives per-document and
	// per-cycle failures and exits only when ctx is cancelled or Stop is
	// called.
	Start(ctx context.Context, tenantID string, documentIDs []string, interval time.Duration)

	// Stop cancels all running loops and waits for them to exit.
	Stop()
}
