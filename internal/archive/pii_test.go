package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPhone(t *testing.T) {
	h1 := HashPhone("0300-1234567")
	h2 := HashPhone("03001234567")
	h3 := HashPhone("03219876543")

	assert.Equal(t, h1, h2, "formatting should not change the hash")
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64, "SHA-256 hex should be 64 chars")
	assert.Empty(t, HashPhone(""))
}

func TestScrubPII(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"email", "contact me at ali@example.com please", "contact me at [EMAIL] please"},
		{"local phone", "phone 03001234567", "phone [PHONE]"},
		{"formatted phone", "call me at (330) 333-2654", "call me at [PHONE]"},
		{"phone with plus", "my number is +923001234567", "my number is [PHONE]"},
		{"slot kept", "book 2024-06-01 10:00 AM", "book 2024-06-01 10:00 AM"},
		{"short number kept", "barber id 1", "barber id 1"},
		{"name kept", "My name is Ali Raza", "My name is Ali Raza"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ScrubPII(tt.input))
		})
	}
}

func TestScrubMessages(t *testing.T) {
	msgs := []Message{
		{Role: "user", Content: "my email is test@test.com"},
		{Role: "assistant", Content: "Got it!"},
	}
	ScrubMessages(msgs)
	assert.Equal(t, "my email is [EMAIL]", msgs[0].Content)
	assert.Equal(t, "Got it!", msgs[1].Content)
}
