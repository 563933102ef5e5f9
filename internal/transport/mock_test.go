package transport

import (
	"context"

	"odata_batch/internal/batch"

	"github.com/stretchr/testify/mock"
)

type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) HTTPPort() string    { return m.Called().String(0) }
func (m *MockConfig) BaseURI() string     { return m.Called().String(0) }
func (m *MockConfig) PathPrefix() string  { return m.Called().String(0) }
func (m *MockConfig) Strict() bool        { return m.Called().Bool(0) }
func (m *MockConfig) BufferSize() int     { return m.Called().Int(0) }
func (m *MockConfig) MaxBodyBytes() int64 { return m.Called().Get(0).(int64) }
func (m *MockConfig) NoColor() bool       { return m.Called().Bool(0) }

func newMockConfig(port, prefix string, maxBodyBytes int64) *MockConfig {
	m := &MockConfig{}
	m.On("HTTPPort").Return(port)
	m.On("BaseURI").Return("http://localhost/odata")
	m.On("PathPrefix").Return(prefix)
	m.On("Strict").Return(true)
	m.On("BufferSize").Return(64)
	m.On("MaxBodyBytes").Return(maxBodyBytes)
	m.On("NoColor").Return(true)
	return m
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, batchID string, parts []*batch.Part) (any, error) {
	args := m.Called(ctx, batchID, parts)
	return args.Get(0), args.Error(1)
}
