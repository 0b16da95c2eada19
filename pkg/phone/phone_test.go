package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Bare ten digits",
			raw:      "9876543210",
			expected: "+91-9876543210",
		},
		{
			name:     "Already canonical",
			raw:      "+91-9876543210",
			expected: "+91-9876543210",
		},
		{
			name:     "Country code without separators",
			raw:      "919876543210",
			expected: "+91-9876543210",
		},
		{
			name:     "Spoken with spaces and dashes",
			raw:      "98765 432-10",
			expected: "+91-9876543210",
		},
		{
			name:     "International notation",
			raw:      "+91 98765 43210",
			expected: "+91-9876543210",
		},
		{
			name:     "Too short",
			raw:      "12345",
			expected: "",
		},
		{
			name:     "Twelve digits but wrong country code",
			raw:      "129876543210",
			expected: "",
		},
		{
			name:     "Eleven digits",
			raw:      "19876543210",
			expected: "",
		},
		{
			name:     "Empty input",
			raw:      "",
			expected: "",
		},
		{
			name:     "Letters only",
			raw:      "call me maybe",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	canonical := Normalize("98765 43210")
	assert.Equal(t, "+91-9876543210", canonical)
	assert.Equal(t, canonical, Normalize(canonical))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ravi@example.com", NormalizeEmail("  Ravi@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
