package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanNumberNullTokens(t *testing.T) {
	for _, raw := range []string{"", "-", ".", "na", "n/a", "NA", "N/A", "Na", " n/a "} {
		_, ok := CleanNumber(raw)
		assert.False(t, ok, "expected %q to be absent", raw)
	}
}

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain integer", "42", 42},
		{"decimal", "1.85", 1.85},
		{"thousands separator with percent", "1,234.50%", 1234.50},
		{"solvency style", "1,850.25%", 1850.25},
		{"currency prefix", "Rs. 12,500", 12500},
		{"bare currency prefix", "Rs12500", 12500},
		{"rupee sign", "₹1,000.50", 1000.50},
		{"negative", "-3.5", -3.5},
		{"non-breaking space", "1 234", 1234},
		{"surrounding whitespace", "  98.7  ", 98.7},
		{"stray unit suffix", "150.5 cr", 150.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanNumber(tt.raw)
			assert.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCleanNumberMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"multiple decimal points", "1.2.3"},
		{"letters only", "pending"},
		{"lone minus", "-"},
		{"symbols only", "~!@"},
		{"fiscal span", "2023-24"},
		{"interior minus", "12-5"},
		{"trailing minus", "150-"},
		{"double minus", "--5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := CleanNumber(tt.raw)
			assert.False(t, ok)
		})
	}
}
