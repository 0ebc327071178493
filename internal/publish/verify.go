package publish

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// RetryPolicy bounds deferred verification.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Pending is an upload waiting to be verified over its public URL.
type Pending struct {
	LocalPath string
	Name      string
	URL       string
}

// VerifyWithRetry polls p.URL until it serves the local file's content or
// the attempts run out. A fetch error counts as a failed attempt.
func (b *Base) VerifyWithRetry(ctx context.Context, p Pending, policy RetryPolicy) error {
	local, err := b.LocalFileHash(p.LocalPath)
	if err != nil {
		return err
	}

	attempts := max(policy.Attempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		remote, found, err := b.URLHash(ctx, p.URL)
		switch {
		case err == nil && found && remote == local:
			if attempt > 1 {
				b.log.Info("verified after retry",
					logger.String("file", p.Name),
					logger.Int("attempts", attempt))
			}
			return nil
		case err != nil:
			b.log.Warn("verification fetch failed",
				logger.String("url", p.URL),
				logger.Int("attempt", attempt),
				logger.Error(err))
		default:
			b.log.Debug("not yet served",
				logger.String("url", p.URL),
				logger.Int("attempt", attempt),
				logger.Bool("found", found))
		}

		if attempt == attempts {
			break
		}
		timer := time.NewTimer(policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return b.Errorf(domain.ErrVerificationExhausted,
		"Failed to upload local file %q: not available over the public URL %s after %d attempts",
		p.LocalPath, p.URL, attempts)
}
