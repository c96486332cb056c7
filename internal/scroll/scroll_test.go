package scroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrolled(t *testing.T) {
	tests := []struct {
		name      string
		offset    float64
		threshold float64
		want      bool
	}{
		{"top of page", 0, NavThreshold, false},
		{"at nav threshold", 50, NavThreshold, false},
		{"just past nav threshold", 50.5, NavThreshold, true},
		{"at header offset", 80, HeaderOffset, false},
		{"past header offset", 81, HeaderOffset, true},
		{"negative overscroll", -12, NavThreshold, false},
		{"back at the top after scrolling", 0, NavThreshold, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scrolled(tt.offset, tt.threshold))
		})
	}
}

func TestNavStyle_Classes(t *testing.T) {
	assert.Equal(t, "bg-transparent py-6", DefaultNavStyle.Classes(false))
	assert.Equal(t, "bg-black/80 backdrop-blur-md py-4", DefaultNavStyle.Classes(true))
}
