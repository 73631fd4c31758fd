package llm

import (
	"context"
	"sync"

	"medisense/internal/domain"
)

// MockClient permite tests sin llamar a un endpoint real.
type MockClient struct {
	Records []domain.GenerationRecord
	Err     error

	mu      sync.Mutex
	calls   int
	lastKey string
	lastReq domain.GenerationRequest
}

func (m *MockClient) Generate(ctx context.Context, apiKey string, req domain.GenerationRequest) ([]domain.GenerationRecord, error) {
	m.mu.Lock()
	m.calls++
	m.lastKey = apiKey
	m.lastReq = req
	m.mu.Unlock()
	return m.Records, m.Err
}

func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockClient) LastRequest() (string, domain.GenerationRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastKey, m.lastReq
}

// Text arma un registro con generated_text para usar en tests.
func Text(s string) domain.GenerationRecord {
	return domain.GenerationRecord{GeneratedText: &s}
}
