package referral

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// memoryOracle marks generated codes as used, simulating successive
// registrants claiming codes.
type memoryOracle struct {
	mu    sync.Mutex
	taken map[string]bool
}

func newMemoryOracle() *memoryOracle {
	return &memoryOracle{taken: make(map[string]bool)}
}

func (o *memoryOracle) CodeInUse(_ context.Context, code string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.taken[code], nil
}

func (o *memoryOracle) claim(code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.taken[code] = true
}

type saturatedOracle struct{}

func (saturatedOracle) CodeInUse(context.Context, string) (bool, error) { return true, nil }

type failingOracle struct{ err error }

func (o failingOracle) CodeInUse(context.Context, string) (bool, error) { return false, o.err }

func TestGenerateShape(t *testing.T) {
	g := NewGenerator(newMemoryOracle())
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)

	for i := 0; i < 100; i++ {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
	}
}

func TestGenerateDistinctAcrossRegistrants(t *testing.T) {
	oracle := newMemoryOracle()
	g := NewGenerator(oracle)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		require.False(t, seen[code], "code %s issued twice", code)
		seen[code] = true
		oracle.claim(code)
	}
}

func TestGenerateNeverReturnsTakenCode(t *testing.T) {
	oracle := newMemoryOracle()
	g := NewGenerator(oracle)

	for i := 0; i < 50; i++ {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		inUse, err := oracle.CodeInUse(context.Background(), code)
		require.NoError(t, err)
		require.False(t, inUse)
		oracle.claim(code)
	}
}

func TestGenerateExhaustion(t *testing.T) {
	g := NewGenerator(saturatedOracle{}, WithMaxAttempts(3))

	_, err := g.Generate(context.Background())
	require.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestGenerateOracleError(t *testing.T) {
	boom := errors.New("store unreachable")
	g := NewGenerator(failingOracle{err: boom})

	_, err := g.Generate(context.Background())
	require.ErrorIs(t, err, boom)
}
