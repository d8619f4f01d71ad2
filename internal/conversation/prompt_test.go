package conversation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
)

func TestBuildKnowledgeBase_TruncatesSlots(t *testing.T) {
	var slots []string
	for h := 0; h < 12; h++ {
		slots = append(slots, fmt.Sprintf("2024-06-01T%02d:00:00Z", h))
	}
	kb := BuildKnowledgeBase([]catalog.Barber{{ID: 7, Name: "Sara", Services: []string{"Fade", "Shave"}, Slots: slots}})

	if !strings.Contains(kb, "Barber ID: 7\nBarber Name: Sara\nServices: Fade, Shave\n") {
		t.Fatalf("unexpected knowledge base:\n%s", kb)
	}
	if !strings.Contains(kb, "2024-06-01 09:00 AM...") {
		t.Fatalf("expected ten slots followed by ellipsis:\n%s", kb)
	}
	if strings.Contains(kb, "10:00 AM") {
		t.Fatalf("expected slots past ten to be omitted:\n%s", kb)
	}
}

func TestBuildSystemPrompt_IncludesContext(t *testing.T) {
	bc := booking.NewContext()
	bc.SelectBarber(1, "John")
	bc.Step = booking.StepBarberSelected

	prompt := BuildSystemPrompt("Fade Factory", testBarbers(), bc)
	for _, want := range []string{
		"AI assistant for Fade Factory",
		"- Booking Step: barber_selected",
		"- Selected Barber: John (ID: 1)",
		"- Selected Service: None",
		"Show the services of the selected barber.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestHistoryMessages(t *testing.T) {
	got := historyMessages([]string{"User: hi", "Assistant: hello", "garbage"})
	if len(got) != 2 || got[0].Role != ChatRoleUser || got[1].Content != "hello" {
		t.Fatalf("unexpected messages %#v", got)
	}
}
