package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"timetabler/internal/logger"
	"timetabler/internal/port"
)

// breaker wraps one provider and remembers until when it is rate limited.
type breaker struct {
	name   string
	parser port.DocumentParser

	mu      sync.Mutex
	blocked time.Time
}

// blockedUntil returns the reset time while the breaker is open.
func (b *breaker) blockedUntil(now time.Time) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Before(b.blocked) {
		return b.blocked, true
	}
	return time.Time{}, false
}

func (b *breaker) block(until time.Time) {
	b.mu.Lock()
	b.blocked = until
	b.mu.Unlock()
}

// FallbackParser asks providers in order and returns the first answer.
// A provider that answered 429 is skipped until its Retry-After elapses.
type FallbackParser struct {
	breakers []*breaker
	log      zerolog.Logger
}

// NewFallbackParser creates a FallbackParser; names[i] labels parsers[i].
func NewFallbackParser(parsers []port.DocumentParser, names []string, log zerolog.Logger) *FallbackParser {
	breakers := make([]*breaker, len(parsers))
	for i, p := range parsers {
		breakers[i] = &breaker{name: names[i], parser: p}
	}
	return &FallbackParser{breakers: breakers, log: logger.Component(log, "parser.fallback")}
}

func (f *FallbackParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	now := time.Now()
	var (
		hardErr error
		retryAt time.Time
	)
	waitFor := func(t time.Time) {
		if retryAt.IsZero() || t.Before(retryAt) {
			retryAt = t
		}
	}

	for _, b := range f.breakers {
		if until, open := b.blockedUntil(now); open {
			f.log.Debug().Str("provider", b.name).Time("reset_at", until).Msg("provider rate limited, skipping")
			waitFor(until)
			continue
		}

		out, err := b.parser.Parse(ctx, input)
		switch {
		case err == nil:
			return out, nil
		case ctx.Err() != nil:
			return nil, fmt.Errorf("parsing cancelled: %w", ctx.Err())
		}
		f.log.Warn().Err(err).Str("provider", b.name).Msg("provider failed, trying next")

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			until := now.Add(rlErr.RetryAfter)
			b.block(until)
			waitFor(until)
			continue
		}
		hardErr = err
	}

	if hardErr != nil {
		return nil, fmt.Errorf("all parsers failed: %w", hardErr)
	}
	wait := time.Until(retryAt)
	if wait < time.Second {
		wait = time.Second
	}
	return nil, NewRateLimitError("all", errors.New("all parsers rate limited"), int(wait.Seconds()))
}
