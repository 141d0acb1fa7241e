// Package ai is the External AI Gateway: one prompt in, generated text out.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/startera/internal/apperr"
)

// Gateway generates text for a prompt. Failures wrap apperr.ErrGateway or
// apperr.ErrGatewayTimeout.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type timeoutGateway struct {
	next    Gateway
	timeout time.Duration
}

// WithTimeout bounds every call to next. When the deadline passes the call
// returns apperr.ErrGatewayTimeout even if next does not honour the context.
func WithTimeout(next Gateway, timeout time.Duration) Gateway {
	if timeout <= 0 {
		return next
	}
	return &timeoutGateway{next: next, timeout: timeout}
}

type result struct {
	text string
	err  error
}

func (g *timeoutGateway) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := g.next.Generate(ctx, prompt)
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %w", apperr.ErrGatewayTimeout, g.timeout, r.err)
		}
		return r.text, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", apperr.ErrGatewayTimeout, g.timeout)
		}
		return "", fmt.Errorf("%w: %w", apperr.ErrGateway, ctx.Err())
	}
}

// wrap classifies a provider error.
func wrap(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", apperr.ErrGatewayTimeout, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", apperr.ErrGateway, provider, err)
}

func emptyReply(provider string) error {
	return fmt.Errorf("%w: %s returned no text", apperr.ErrGateway, provider)
}

func clean(s string) string { return strings.TrimSpace(s) }
