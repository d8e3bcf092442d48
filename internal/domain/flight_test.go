package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationHours(t *testing.T) {
	tests := []struct {
		duration string
		want     float64
	}{
		{"2h 30m", 2.5},
		{"5h", 5},
		{"45m", 0.75},
		{"10h 15m", 10.25},
		{"", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			assert.InDelta(t, tt.want, DurationHours(tt.duration), 0.001)
		})
	}
}

func TestFlight_IsDirect(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     bool
	}{
		{"short flight", "2h 30m", true},
		{"just under threshold", "5h 59m", true},
		{"at threshold", "6h", false},
		{"long flight", "12h 45m", false},
		{"no duration info", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Flight{Duration: tt.duration}
			assert.Equal(t, tt.want, f.IsDirect())
		})
	}
}

func TestFlight_AvailableSeats(t *testing.T) {
	f := Flight{Capacity: 180, BookedSeats: 175}
	assert.Equal(t, 5, f.AvailableSeats())
}

func TestNewMemberNumber(t *testing.T) {
	assert.Regexp(t, `^MS\d{16}$`, NewMemberNumber())
}
