package api

import (
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/example/rpnd/internal/calc"
)

const idPrefix = "stack_"

// idGenerator hands out stack_1, stack_2, ... and never reuses a number,
// even after deletes.
type idGenerator struct {
	next atomic.Uint64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

func (g *idGenerator) Next() string {
	return idPrefix + strconv.FormatUint(g.next.Add(1), 10)
}

// createStack registers a stack under the next free generated id.
func createStack(registry *calc.Registry, ids *idGenerator) (string, error) {
	for {
		id := ids.Next()
		err := registry.Create(id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, calc.ErrAlreadyExists) {
			return "", err
		}
	}
}
