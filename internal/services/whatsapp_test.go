package services

import (
	"testing"
)

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "local number with leading zero",
			input:    "09876543210",
			expected: "919876543210@c.us",
		},
		{
			name:     "bare ten digit mobile number",
			input:    "9876543210",
			expected: "919876543210@c.us",
		},
		{
			name:     "number with country code",
			input:    "919876543210",
			expected: "919876543210@c.us",
		},
		{
			name:     "number with plus prefix",
			input:    "+919876543210",
			expected: "919876543210@c.us",
		},
		{
			name:     "group id untouched",
			input:    "120363407813232111@g.us",
			expected: "120363407813232111@g.us",
		},
		{
			name:     "number already suffixed",
			input:    "919876543210@c.us",
			expected: "919876543210@c.us",
		},
		{
			name:     "suffixed local number",
			input:    "09876543210@c.us",
			expected: "919876543210@c.us",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeChatID(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeChatID(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}
