package flow

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"staybridge/supplier"

	"go.uber.org/zap"
)

// sendWithRetry executes one supplier command, re-attempting retryable
// business failures with bounded exponential backoff and jitter. The
// protocol client already retried transport failures with the same
// envelope; here the loop is over explicit classification verdicts, never
// exception-driven control flow.
func (s *DefaultFlowService) sendWithRetry(ctx context.Context, command string, payload []*supplier.Node) (*supplier.Result, error) {
	attempts := s.Retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		res *supplier.Result
		err error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if werr := s.backoff(ctx, attempt); werr != nil {
				return res, err
			}
		}
		res, err = s.Supplier.Send(ctx, command, payload)
		if err == nil {
			return res, nil
		}

		var perr *supplier.ProtocolError
		if !errors.As(err, &perr) {
			// Transport exhausted inside the client; nothing to gain from
			// repeating the whole bound here.
			return res, err
		}
		cls := perr.Classify()
		if !cls.Retryable {
			return res, err
		}
		s.Logger.Warn("retryable supplier failure",
			zap.String("command", command),
			zap.Int("code", perr.Code),
			zap.String("kind", cls.Kind),
			zap.Int("attempt", attempt+1))
	}
	return res, err
}

// backoff waits base·2^(attempt-1) plus up to 50% jitter, capped at MaxDelay.
func (s *DefaultFlowService) backoff(ctx context.Context, attempt int) error {
	base := s.Retry.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	delay := base << (attempt - 1)
	if s.Retry.MaxDelay > 0 && delay > s.Retry.MaxDelay {
		delay = s.Retry.MaxDelay
	}
	delay += time.Duration(rand.Int63n(int64(delay)/2 + 1))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
