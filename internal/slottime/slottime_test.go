package slottime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"utc suffix", "2024-06-01T10:00:00Z", "2024-06-01 10:00 AM"},
		{"explicit offset keeps wall clock", "2024-06-01T15:30:00+05:00", "2024-06-01 03:30 PM"},
		{"fractional seconds", "2024-06-01T09:05:00.123456Z", "2024-06-01 09:05 AM"},
		{"no zone", "2024-06-01T00:15:00", "2024-06-01 12:15 AM"},
		{"space separator", "2024-06-01 13:00:00", "2024-06-01 01:00 PM"},
		{"minutes only", "2024-12-31T23:59", "2024-12-31 11:59 PM"},
		{"date only", "2024-06-01", "2024-06-01 12:00 AM"},
		{"garbage falls back", "next tuesday", "next tuesday"},
		{"empty falls back", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeIsStableOnDisplaySlots(t *testing.T) {
	for _, raw := range []string{"2024-06-01T10:00:00Z", "2024-06-01T22:45:00Z", "not a time"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "normalizing %q twice", raw)
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	got := NormalizeAll([]string{"2024-06-02T10:00:00Z", "bad", "2024-06-01T10:00:00Z"})
	assert.Equal(t, []string{"2024-06-02 10:00 AM", "bad", "2024-06-01 10:00 AM"}, got)
}

func TestDateOf(t *testing.T) {
	d, ok := DateOf("2024-06-01T23:00:00Z")
	assert.True(t, ok)
	assert.Equal(t, "2024-06-01", d)

	_, ok = DateOf("whenever")
	assert.False(t, ok)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2024-06-01 10:00 AM", "2024-06-01 10:00 AM", true},
		{"2024-06-01 at 10:00 am", "2024-06-01 10:00 AM", true},
		{"2024-6-1 9:30 pm", "2024-06-01 09:30 PM", true},
		{"2024-06-01  AT  9:30PM", "2024-06-01 09:30 PM", true},
		{"2024-02-30 10:00 AM", "", false},
		{"2024-06-01 13:00 PM", "", false},
		{"tomorrow at 10", "", false},
	}
	for _, tt := range tests {
		got, ok := Canonical(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
