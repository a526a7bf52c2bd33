package client

import (
	"context"
	"time"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/keys"
	"github.com/sleet-near/hello-near/client/tx"
)

// RetryPolicy controls SubmitWithRetry.
type RetryPolicy struct {
	// MaxAttempts counts the first attempt. Values below 1 mean one attempt.
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy returns three attempts with exponential backoff from one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

func (p RetryPolicy) next(delay time.Duration) time.Duration {
	if p.BackoffFactor > 1 {
		delay = time.Duration(float64(delay) * p.BackoffFactor)
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// SubmitWithRetry runs the whole pipeline again, with a fresh nonce and
// anchor, while the node rejects the transaction before execution. Execution
// failures, transport errors and everything else are returned at once, since
// the call may already have been applied.
func (c *Client) SubmitWithRetry(ctx context.Context, policy RetryPolicy, network config.Network, cred keys.Credential, method string, args any) (*tx.Outcome, error) {
	attempts := max(policy.MaxAttempts, 1)
	delay := policy.InitialDelay

	for attempt := 1; ; attempt++ {
		out, err := c.Submit(ctx, network, cred, method, args)
		if err == nil || attempt == attempts || !errors.IsRetryable(err) {
			return out, err
		}

		c.logger.Info("retrying rejected submission", "attempt", attempt, "delay", delay, "err", err)
		select {
		case <-ctx.Done():
			return out, err
		case <-time.After(delay):
			delay = policy.next(delay)
		}
	}
}
