package app

import (
	"context"
	"time"

	"github.com/safarline/busadmin/internal/state"
)

const defaultWatchInterval = 30 * time.Second

// StartSessionWatcher launches a background goroutine that signs the
// operator out once a stored JWT passes its expiry. It returns immediately.
func StartSessionWatcher(ctx context.Context, auth *state.Auth, now func() time.Time, interval time.Duration) {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			expireIfStale(auth, now())
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func expireIfStale(auth *state.Auth, now time.Time) bool {
	if !auth.Snapshot().IsAuthenticated {
		return false
	}
	if auth.Session().Authenticated(now) {
		return false
	}
	auth.Expire()
	return true
}
