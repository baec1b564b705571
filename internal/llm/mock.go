package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests and offline runs.
// Queued responses are served first in FIFO order; after that Respond, if
// set, computes one per request. Every request is recorded.
type MockProvider struct {
	// Respond answers requests once the queue is empty. It may be called
	// concurrently.
	Respond func(Request) MockResponse

	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next response, or ErrProviderUnavailable when
// there is nothing left to serve.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	var (
		resp MockResponse
		ok   bool
	)
	if len(m.responses) > 0 {
		resp, ok = m.responses[0], true
		m.responses = m.responses[1:]
	}
	respond := m.Respond
	m.mu.Unlock()

	if !ok {
		if respond == nil {
			return nil, &ErrProviderUnavailable{}
		}
		resp = respond(req)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return finish(req, resp.Content, resp.Usage, "mock", StopEnd)
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// Calls returns a copy of every request received so far.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
