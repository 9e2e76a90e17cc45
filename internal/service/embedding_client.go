package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxEmbeddingChars keeps requests under the providers' input limits.
const (
	maxEmbeddingChars = 10000
	// A provider call is attempted at most twice.
	maxProviderRetries = 1
)

type EmbedderOptions struct {
	Dimension     int
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BreakerMax    int
	BreakerCool   time.Duration
}

func EmbedderOptionsFromConfig(cfg *config.EmbeddingConfig) EmbedderOptions {
	return EmbedderOptions{
		Dimension:     cfg.Dimension,
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.RateLimit,
		Burst:         cfg.RateBurst,
		MaxRetries:    cfg.MaxRetries,
	}
}

func (o EmbedderOptions) withDefaults() EmbedderOptions {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	o.MaxRetries = min(max(o.MaxRetries, 0), maxProviderRetries)
	if o.BaseDelay <= 0 {
		o.BaseDelay = 500 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 10 * time.Second
	}
	if o.BreakerMax <= 0 {
		o.BreakerMax = 5
	}
	if o.BreakerCool <= 0 {
		o.BreakerCool = 30 * time.Second
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return o
}

// retryableError marks a provider failure worth one more attempt.
type retryableError struct {
	error
}

func (e retryableError) Unwrap() error { return e.error }

// embedClient holds the call discipline shared by every provider: throttling,
// per-call timeout, bounded retries with backoff, a circuit breaker and vector
// validation.
type embedClient struct {
	opts    EmbedderOptions
	limiter *rate.Limiter
	logger  *zap.Logger

	consecutiveErrors atomic.Int32
	openUntil         atomic.Int64
	now               func() time.Time
}

func newEmbedClient(opts EmbedderOptions, logger *zap.Logger) *embedClient {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst)
	}
	return &embedClient{opts: opts, limiter: limiter, logger: logger, now: time.Now}
}

func (c *embedClient) embed(ctx context.Context, op, text string, call func(context.Context, string) ([]float32, error)) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.New(apperror.KindInvalidArgument, "text for embedding cannot be empty")
	}
	if len(text) > maxEmbeddingChars {
		c.logger.Warn("embedding input truncated", zap.Int("length", len(text)))
		text = truncateUTF8(text, maxEmbeddingChars)
	}

	if until := c.openUntil.Load(); until > 0 && c.now().UnixNano() < until {
		return nil, apperror.Newf(apperror.KindProvider, "circuit breaker open: too many consecutive errors (%d)", c.consecutiveErrors.Load())
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Debug("retrying embedding", zap.String("op", op), zap.Int("attempt", attempt), zap.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, apperror.Wrap(apperror.KindProvider, ctx.Err(), "context done during retry")
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, apperror.Wrap(apperror.KindProvider, err, "waiting for provider quota")
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		vec, err := call(callCtx, text)
		cancel()

		if err == nil {
			if verr := c.validate(vec); verr != nil {
				c.recordFailure()
				return nil, verr
			}
			c.consecutiveErrors.Store(0)
			c.openUntil.Store(0)
			return vec, nil
		}

		var re retryableError
		if !errors.As(err, &re) {
			c.recordFailure()
			return nil, err
		}
		lastErr = re.error
		c.logger.Warn("retryable embedding error", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Error(lastErr))
	}

	c.recordFailure()
	return nil, lastErr
}

func (c *embedClient) recordFailure() {
	if n := c.consecutiveErrors.Add(1); int(n) >= c.opts.BreakerMax {
		c.openUntil.Store(c.now().Add(c.opts.BreakerCool).UnixNano())
	}
}

func (c *embedClient) backoff(attempt int) time.Duration {
	delay := c.opts.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > c.opts.MaxDelay {
		delay = c.opts.MaxDelay
	}
	return delay
}

func (c *embedClient) validate(vec []float32) error {
	if len(vec) == 0 {
		return apperror.New(apperror.KindProvider, "embedding vector is empty")
	}
	if c.opts.Dimension > 0 && len(vec) != c.opts.Dimension {
		return apperror.Newf(apperror.KindProvider, "embedding has %d dimensions, want %d", len(vec), c.opts.Dimension)
	}
	for i, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return apperror.Newf(apperror.KindProvider, "invalid embedding value at index %d: %v", i, v)
		}
	}
	return nil
}

// classifyStatus maps a provider HTTP status into the error taxonomy.
func classifyStatus(code int, msg string) error {
	switch {
	case code == 401 || code == 403:
		return apperror.Newf(apperror.KindProviderAuth, "embedding provider rejected credentials (%d): %s", code, msg)
	case code == 429 || code >= 500:
		return retryableError{apperror.Newf(apperror.KindProvider, "embedding provider unavailable (%d): %s", code, msg)}
	default:
		return apperror.Newf(apperror.KindProvider, "embedding request failed (%d): %s", code, msg)
	}
}

// classifyTransport handles failures that never produced a status code.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return apperror.Wrap(apperror.KindProvider, err, "embedding request canceled")
	}
	wrapped := apperror.Wrap(apperror.KindProvider, err, "embedding request failed")

	if errors.Is(err, context.DeadlineExceeded) {
		return retryableError{wrapped}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retryableError{wrapped}
	}
	msg := err.Error()
	for _, s := range []string{"connection refused", "connection reset", "timeout", "temporary failure", "EOF"} {
		if strings.Contains(msg, s) {
			return retryableError{wrapped}
		}
	}
	return wrapped
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func missingKey(name string) error {
	return apperror.New(apperror.KindProviderAuth, fmt.Sprintf("%s not set", name))
}
