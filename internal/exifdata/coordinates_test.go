package exifdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCoordinate(t *testing.T) {
	tests := []struct {
		name       string
		components []float64
		expected   float64
		ok         bool
	}{
		{
			name:       "single decimal component",
			components: []float64{60.1699},
			expected:   60.1699,
			ok:         true,
		},
		{
			name:       "degrees minutes seconds",
			components: []float64{60, 10, 11.64},
			expected:   60.169900,
			ok:         true,
		},
		{
			name:       "dms with fractional minutes",
			components: []float64{24, 56.4, 0},
			expected:   24.94,
			ok:         true,
		},
		{
			name:       "negative decimal stays negative",
			components: []float64{-33.8688},
			expected:   -33.8688,
			ok:         true,
		},
		{
			name:       "zero is valid",
			components: []float64{0},
			expected:   0,
			ok:         true,
		},
		{
			name:       "empty components",
			components: nil,
			ok:         false,
		},
		{
			name:       "two components rejected",
			components: []float64{60, 10},
			ok:         false,
		},
		{
			name:       "four components rejected",
			components: []float64{60, 10, 11, 5},
			ok:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := NormalizeCoordinate(tt.components)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, value, 1e-9)
			}
		})
	}
}

func TestApplyHemisphere(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		ref      string
		expected float64
	}{
		{"north keeps sign", 60.1699, "N", 60.1699},
		{"east keeps sign", 24.9384, "E", 24.9384},
		{"south negates", 33.8688, "S", -33.8688},
		{"west negates", 122.4194, "W", -122.4194},
		{"south on already negative value", -33.8688, "S", -33.8688},
		{"north restores positive sign", -60.1699, "N", 60.1699},
		{"unknown ref leaves value alone", 60.1699, "X", 60.1699},
		{"empty ref leaves value alone", -60.1699, "", -60.1699},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ApplyHemisphere(tt.value, tt.ref), 1e-9)
		})
	}
}
