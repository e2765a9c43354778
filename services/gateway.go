package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/armanmujtaba/Trivanza/models"
)

// Options are the per-call model parameters
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Provider sends an ordered transcript to a chat completion endpoint and
// returns the assistant text. The first turn is always the system turn.
type Provider interface {
	Name() string
	Chat(ctx context.Context, turns []models.Turn, opts Options) (string, error)
}

// GatewayError is a provider failure classified for the conversation layer
type GatewayError struct {
	Kind    models.FailureKind
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether one more attempt may succeed
func (e *GatewayError) Retryable() bool {
	return e.Kind == models.FailureNetwork || e.Kind == models.FailureTimeout
}

// statusError classifies an HTTP status from a provider
func statusError(status int, message string) *GatewayError {
	kind := models.FailureInvalidResponse
	switch {
	case status == http.StatusTooManyRequests:
		kind = models.FailureRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = models.FailureTimeout
	case status >= 500:
		kind = models.FailureNetwork
	}
	return &GatewayError{Kind: kind, Status: status, Message: message}
}

// classify folds any provider error into a GatewayError
func classify(ctx context.Context, err error) *GatewayError {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &GatewayError{Kind: models.FailureTimeout, Message: "completion deadline exceeded"}
	}
	return &GatewayError{Kind: models.FailureNetwork, Message: err.Error()}
}

// GatewayOption configures a Gateway
type GatewayOption func(g *Gateway)

// WithTimeout bounds each attempt
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRetry enables one retry on network errors and timeouts
func WithRetry(enabled bool) GatewayOption {
	return func(g *Gateway) {
		g.retry = enabled
	}
}

// WithRateLimit allows perMinute calls per minute across all sessions.
// Zero disables the limiter.
func WithRateLimit(perMinute int) GatewayOption {
	return func(g *Gateway) {
		if perMinute <= 0 {
			g.limiter = nil
			return
		}
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithLogger sets the gateway logger
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// DefaultTimeout is the per-attempt completion deadline
const DefaultTimeout = 45 * time.Second

// Gateway owns the completion call: transcript framing, deadline, rate
// limiting, error classification and the single retry. It builds no
// prompts and changes no conversation state.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	retry    bool
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewGateway creates a gateway over provider
func NewGateway(provider Provider, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		provider: provider,
		timeout:  DefaultTimeout,
		retry:    true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete sends policy, the transcript tail and the new user turn to the
// provider. It never returns an error: every failure is a GatewayResult
// carrying its kind.
func (g *Gateway) Complete(ctx context.Context, policy string, tail []models.Turn, user models.Turn, opts Options) models.GatewayResult {
	turns := frame(policy, tail, user)

	attempts := 1
	if g.retry {
		attempts = 2
	}

	var last *GatewayError
	for attempt := 1; attempt <= attempts; attempt++ {
		if g.limiter != nil && !g.limiter.Allow() {
			last = &GatewayError{Kind: models.FailureRateLimited, Message: "local request budget exhausted"}
			break
		}

		text, err := g.attempt(ctx, turns, opts)
		if err == nil {
			return models.Success(text)
		}
		last = classify(ctx, err)
		level, msg := slog.LevelError, "completion attempt failed"
		if errors.Is(ctx.Err(), context.Canceled) {
			// superseded by a newer request or the session ended
			level, msg = slog.LevelDebug, "completion attempt cancelled"
		}
		g.logger.Log(ctx, level, msg,
			"provider", g.provider.Name(),
			"attempt", attempt,
			"kind", last.Kind,
			"status", last.Status,
			"error", last.Message)

		if !last.Retryable() || ctx.Err() != nil {
			break
		}
	}
	return models.Failure(last.Kind, last.Message)
}

func (g *Gateway) attempt(ctx context.Context, turns []models.Turn, opts Options) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.provider.Chat(callCtx, turns, opts)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return "", &GatewayError{Kind: models.FailureTimeout, Message: err.Error()}
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &GatewayError{Kind: models.FailureInvalidResponse, Message: "empty completion"}
	}
	return text, nil
}

// frame builds the provider transcript: exactly one system turn first, then
// the non-system tail, then the new user turn
func frame(policy string, tail []models.Turn, user models.Turn) []models.Turn {
	turns := make([]models.Turn, 0, len(tail)+2)
	turns = append(turns, models.Turn{Role: models.RoleSystem, Text: policy})
	for _, t := range tail {
		if t.Role == models.RoleSystem {
			continue
		}
		turns = append(turns, t)
	}
	return append(turns, user)
}
