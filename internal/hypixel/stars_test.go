package hypixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStarsFromExp(t *testing.T) {
	tests := []struct {
		name string
		exp  float64
		want float64
	}{
		{"no experience", 0, 0},
		{"halfway to first level", 250, 0.5},
		{"exactly level one", 500, 1},
		{"into the easy levels", 3648, 3 + 148.0/3500},
		{"exactly one prestige", 487000, 100},
		{"past a prestige", 500000, 105.2},
		{"regular level progress", 487000 + 7000 + 2500, 104.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, StarsFromExp(tt.exp), 1e-9)
		})
	}
}
