package batch

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plantrace/internal/source"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	id, err := UUIDv7Generator{}.Generate()
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 100

	ids := make(chan string, goroutines)
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := gen.Generate()
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("run-1", "run-2")

	for _, want := range []string{"run-1", "run-2"} {
		id, err := gen.Generate()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	_, err := gen.Generate()
	assert.ErrorIs(t, err, ErrIDsExhausted)

	_, err = NewFixedGenerator().Generate()
	assert.ErrorIs(t, err, ErrIDsExhausted)
}

func TestRun_FixedRunID(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{writeTrace(t, dir, "a.vhpop-log", landmarkTrace())}

	report, err := Run(context.Background(), traces, Options{
		RunIDs: NewFixedGenerator("run-fixed"),
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "run-fixed", report.RunID)

	_, err = Run(context.Background(), traces, Options{
		RunIDs: NewFixedGenerator(),
		Logger: quietLogger(),
	})
	assert.ErrorIs(t, err, ErrIDsExhausted)
}
