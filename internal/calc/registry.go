// Package calc holds the stack registry that evaluates RPN operators against
// named stacks of float64 values.
package calc

import (
	"slices"
	"sync"
)

// Registry maps stack ids to their values. A single RWMutex guards the map
// and every stack; reads return copies.
type Registry struct {
	mu     sync.RWMutex
	stacks map[string][]float64
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{stacks: make(map[string][]float64)}
}

// Create registers an empty stack under id.
func (r *Registry) Create(id string) error {
	if id == "" {
		return newError("create", id, ErrInvalidID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stacks[id]; ok {
		return newError("create", id, ErrAlreadyExists)
	}
	r.stacks[id] = []float64{}
	r.order = append(r.order, id)
	return nil
}

// Push appends value to the top of the stack.
func (r *Registry) Push(id string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stack, ok := r.stacks[id]
	if !ok {
		return newError("push", id, ErrNotFound)
	}
	r.stacks[id] = append(stack, value)
	return nil
}

// Pop removes and returns the top of the stack.
func (r *Registry) Pop(id string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stack, ok := r.stacks[id]
	if !ok {
		return 0, newError("pop", id, ErrNotFound)
	}
	if len(stack) == 0 {
		return 0, newError("pop", id, ErrEmptyStack)
	}
	return r.popLocked(id), nil
}

// Clear removes every value from the stack.
func (r *Registry) Clear(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stacks[id]; !ok {
		return newError("clear", id, ErrNotFound)
	}
	r.stacks[id] = []float64{}
	return nil
}

// Get returns the stack bottom to top. Unknown ids yield an empty slice.
func (r *Registry) Get(id string) []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]float64, len(r.stacks[id]))
	copy(out, r.stacks[id])
	return out
}

// List returns registered ids in creation order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered stacks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.stacks)
}

// Delete removes the stack and its contents.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stacks[id]; !ok {
		return newError("delete", id, ErrNotFound)
	}
	delete(r.stacks, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}

// Operate pops b (top) then a, applies op and pushes the result.
// The operand count is checked before anything is popped. Once popped, the
// operands are not restored on ErrDivisionByZero or ErrUnknownOperator.
func (r *Registry) Operate(id, op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stack, ok := r.stacks[id]
	if !ok {
		return &StackError{Op: "operate", StackID: id, Operator: op, Err: ErrNotFound}
	}
	if len(stack) < 2 {
		return &StackError{Op: "operate", StackID: id, Operator: op, Err: ErrInsufficientOperands}
	}

	b := r.popLocked(id)
	a := r.popLocked(id)

	result, err := apply(op, a, b)
	if err != nil {
		return &StackError{Op: "operate", StackID: id, Operator: op, Err: err}
	}
	r.stacks[id] = append(r.stacks[id], result)
	return nil
}

func (r *Registry) popLocked(id string) float64 {
	stack := r.stacks[id]
	last := len(stack) - 1
	v := stack[last]
	r.stacks[id] = stack[:last]
	return v
}
