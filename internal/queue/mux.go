package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler processes the payload of one task.
type Handler func(ctx context.Context, payload []byte) error

// Mux routes task types to handlers. Both queue implementations dispatch
// through it so handlers are registered once.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[string]Handler)}
}

// Handle registers h for taskType, replacing any previous handler.
func (m *Mux) Handle(taskType string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[taskType] = h
}

// Dispatch runs the handler registered for taskType.
func (m *Mux) Dispatch(ctx context.Context, taskType string, payload []byte) error {
	m.mu.RLock()
	h, ok := m.handlers[taskType]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, taskType)
	}
	return h(ctx, payload)
}

// Types returns the registered task types in sorted order.
func (m *Mux) Types() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.handlers))
	for t := range m.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
