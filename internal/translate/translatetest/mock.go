// Package translatetest provides test doubles for the translate package.
package translatetest

import (
	"context"
	"sync"

	"github.com/flemzord/transbridge/internal/translate"
)

// MockProvider is a scriptable translate.Provider for tests. It records
// every call and returns either Err or "[target]text".
type MockProvider struct {
	mu    sync.Mutex
	calls []Call

	// Err, if non-nil, is returned by every Translate call.
	Err error

	// Result, if non-empty, overrides the default tagged output.
	Result string
}

// Call records the arguments of one Translate invocation.
type Call struct {
	Text   string
	Source translate.Lang
	Target translate.Lang
}

// Translate implements translate.Provider.
func (m *MockProvider) Translate(_ context.Context, text string, source, target translate.Lang) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Text: text, Source: source, Target: target})
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.Result != "" {
		return m.Result, nil
	}
	return "[" + string(target) + "]" + text, nil
}

// Calls returns a copy of the recorded calls.
func (m *MockProvider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns the number of Translate invocations.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
