package middleware

import (
	"testing"

	"odata_batch/internal/version"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintHandleResponse(t *testing.T) {
	origVersion := version.Version
	defer func() { version.Version = origVersion }()

	tests := []struct {
		name     string
		version  string
		expected map[string]string
		body     []byte
		wantErr  error
	}{
		{
			name:     "Sets Server Header",
			version:  "dev",
			expected: map[string]string{"Server": "odata_batch/dev"},
			body:     []byte("Sample body"),
			wantErr:  nil,
		},
		{
			name:     "Carries Release Version",
			version:  "v1.2.0",
			expected: map[string]string{"Server": "odata_batch/v1.2.0"},
			body:     nil,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version.Version = tt.version

			mockHeader := new(mockHeader)
			for k, v := range tt.expected {
				mockHeader.On("Set", k, v).Return()
			}

			fingerprint := NewFingerprint()

			err := fingerprint.HandleResponse(mockHeader, tt.body)
			assert.ErrorIs(t, err, tt.wantErr)
			mockHeader.AssertExpectations(t)
		})
	}
}

func TestNewFingerprint(t *testing.T) {
	instance := NewFingerprint()
	assert.NotNil(t, instance)
}
