package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSourceClient is a mock implementation of SourceClient for testing.
type MockSourceClient struct {
	mock.Mock
}

var _ SourceClient = &MockSourceClient{} // Compile-time check

// Fetch implements the SourceClient interface.
func (m *MockSourceClient) Fetch(ctx context.Context, location string) ([]byte, error) {
	args := m.Called(ctx, location)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// IsRemote implements the SourceClient interface.
func (m *MockSourceClient) IsRemote(location string) bool {
	args := m.Called(location)
	return args.Bool(0)
}
