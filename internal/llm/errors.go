package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// GenerationError wraps any failure of a generation call: network, quota,
// timeout or an unusable response.
type GenerationError struct {
	Model   string
	Timeout bool
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("generation timed out (model=%s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("generation failed (model=%s): %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err carries a *GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

type guardedClient struct {
	next    Client
	model   string
	timeout time.Duration
}

// Guard bounds every call to next by timeout and normalizes failures into
// *GenerationError. A failed call never yields partial content.
func Guard(next Client, model string, timeout time.Duration) Client {
	return &guardedClient{next: next, model: model, timeout: timeout}
}

func (g *guardedClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.next.Generate(ctx, messages)
	if err != nil {
		return Response{}, &GenerationError{
			Model:   g.model,
			Timeout: errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:     err,
		}
	}
	if strings.TrimSpace(resp.Content) == "" {
		return Response{}, &GenerationError{Model: g.model, Err: ErrEmptyResponse}
	}
	if resp.Model == "" {
		resp.Model = g.model
	}
	return resp, nil
}
