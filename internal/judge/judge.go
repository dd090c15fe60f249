// Package judge re-scores rubric criteria with an external LLM restricted
// to the evidence pack. A judge response is either accepted whole, after
// validation against the pack, or discarded whole; the caller falls back
// to heuristic scores on any failure.
package judge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"credence/internal/config"
	"credence/internal/evidence"
	"credence/internal/logging"
	"credence/internal/rubric"
)

// Backend is a single-shot completion client.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Judge wraps a backend with the hard timeout, bounded retries, and the
// accept-or-discard validation pass.
type Judge struct {
	backend Backend
	policy  config.Policy
	timeout time.Duration
	retries int
	log     *slog.Logger
}

func New(backend Backend, cfg config.Judge, policy config.Policy) *Judge {
	return &Judge{
		backend: backend,
		policy:  policy,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		retries: cfg.MaxRetries,
		log:     logging.New("judge"),
	}
}

// Score asks the judge for the full ten-criterion set and validates the
// reply against the pack. On any failure — timeout, malformed JSON,
// validation — it returns a nil set and the error; it never panics and
// the error is data for the caller, not a pipeline stop.
func (j *Judge) Score(ctx context.Context, pack *evidence.Pack) (rubric.Set, error) {
	system := systemPrompt()
	user := userPrompt(pack)

	var lastErr error
	for attempt := 0; attempt <= j.retries; attempt++ {
		if attempt > 0 {
			j.log.Warn("retrying judge call", "attempt", attempt, "error", lastErr)
		}
		set, err := j.once(ctx, system, user, pack)
		if err == nil {
			return set, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("judge failed after %d attempts: %w", j.retries+1, lastErr)
}

func (j *Judge) once(ctx context.Context, system, user string, pack *evidence.Pack) (rubric.Set, error) {
	callCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	raw, err := j.backend.Complete(callCtx, system, user)
	if err != nil {
		return nil, fmt.Errorf("judge call: %w", err)
	}
	payload, err := parsePayload([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("judge payload: %w", err)
	}
	set, err := validate(payload, pack, j.policy.QuoteMinChars)
	if err != nil {
		return nil, fmt.Errorf("judge validation: %w", err)
	}
	return set, nil
}
