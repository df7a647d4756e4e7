package engine

import (
	"context"
	"sync"
)

// MockPrompter is a test implementation of the Prompter interface. It answers
// from a map keyed by raw description and records every request.
type MockPrompter struct {
	responses map[string]string
	err       error
	calls     []Pending
	mu        sync.Mutex
}

// NewMockPrompter creates a prompter that answers with responses; unknown
// descriptions are skipped.
func NewMockPrompter(responses map[string]string) *MockPrompter {
	if responses == nil {
		responses = make(map[string]string)
	}
	return &MockPrompter{responses: responses}
}

// WithError makes every call fail with err.
func (m *MockPrompter) WithError(err error) *MockPrompter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// ChooseCategory implements Prompter.
func (m *MockPrompter) ChooseCategory(_ context.Context, pending Pending) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, pending)
	if m.err != nil {
		return "", m.err
	}
	return m.responses[pending.Description], nil
}

// Calls returns a copy of the recorded requests.
func (m *MockPrompter) Calls() []Pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Pending(nil), m.calls...)
}
