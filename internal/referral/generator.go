package referral

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"regbot/internal/platform/metrics"
)

const (
	codeLength = 8
	alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultMaxAttempts bounds generation so a shrinking code space fails
	// loudly instead of spinning. The storage unique constraint remains the
	// authoritative guard; the oracle check here is only a pre-filter.
	DefaultMaxAttempts = 10
)

// ErrCodeSpaceExhausted is returned when no unused code was found within the
// attempt budget.
var ErrCodeSpaceExhausted = errors.New("referral code space exhausted")

// Oracle answers whether a candidate code is already taken.
type Oracle interface {
	CodeInUse(ctx context.Context, code string) (bool, error)
}

// Generator mints 8-character uppercase alphanumeric referral codes that are
// unused according to the oracle at generation time.
type Generator struct {
	oracle      Oracle
	maxAttempts int
	metrics     *metrics.Metrics
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithMetrics records discarded candidates.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

func NewGenerator(oracle Oracle, opts ...Option) *Generator {
	g := &Generator{
		oracle:      oracle,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate returns a code the oracle reported unused, or
// ErrCodeSpaceExhausted after the attempt budget.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		inUse, err := g.oracle.CodeInUse(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
		if !inUse {
			return code, nil
		}
		g.metrics.RecordCodeRetry()
	}
	return "", ErrCodeSpaceExhausted
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
