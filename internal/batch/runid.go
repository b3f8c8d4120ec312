package batch

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrIDsExhausted is returned by FixedGenerator once every id has been used.
var ErrIDsExhausted = errors.New("run ids exhausted")

// IDGenerator produces batch run ids.
type IDGenerator interface {
	Generate() (string, error)
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids, so runs listed by
// id come out in start order.
//
// UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Generator) Generate() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// FixedGenerator returns predetermined run ids in order, for tests that
// compare stored runs or output against fixtures.
//
// FixedGenerator is safe for concurrent use.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id, or ErrIDsExhausted.
func (g *FixedGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		return "", ErrIDsExhausted
	}
	id := g.ids[g.idx]
	g.idx++
	return id, nil
}
