package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockBackend is a testify mock of Backend. Name and PreferredModels are
// plain fields since every test needs them.
type mockBackend struct {
	mock.Mock
	name      string
	preferred []string
}

func newMockBackend(preferred ...string) *mockBackend {
	return &mockBackend{name: "stub", preferred: preferred}
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) PreferredModels() []string { return m.preferred }

func (m *mockBackend) ListCapableBackends(ctx context.Context, credential string) ([]string, error) {
	args := m.Called(ctx, credential)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockBackend) GenerateContent(ctx context.Context, credential, backendID, prompt string) (string, error) {
	args := m.Called(ctx, credential, backendID, prompt)
	return args.String(0), args.Error(1)
}
