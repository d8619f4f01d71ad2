package conversation

import (
	"fmt"
	"strings"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
)

// maxPromptSlots caps how many slots per barber go into the prompt.
const maxPromptSlots = 10

// WelcomeMessage greets a new session.
const WelcomeMessage = "👋 Welcome to our barber salon! I can show you our barbers, their services " +
	"and open time slots, and book an appointment for you. Try 'show all barbers' to get started."

// BuildKnowledgeBase renders the catalog as plain text for the system prompt.
func BuildKnowledgeBase(barbers []catalog.Barber) string {
	var b strings.Builder
	b.WriteString("BARBER SALON INFORMATION:\n\n")
	for _, barber := range barbers {
		fmt.Fprintf(&b, "Barber ID: %d\n", barber.ID)
		fmt.Fprintf(&b, "Barber Name: %s\n", barber.Name)
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(barber.Services, ", "))

		slots := barber.DisplaySlots()
		more := ""
		if len(slots) > maxPromptSlots {
			slots = slots[:maxPromptSlots]
			more = "..."
		}
		fmt.Fprintf(&b, "Available Slots: %s%s\n", strings.Join(slots, ", "), more)
		b.WriteString("---\n")
	}
	return b.String()
}

var stepInstructions = map[booking.Step]string{
	booking.StepInitial:           "Help the customer choose a barber or show all barbers.",
	booking.StepBarberSelected:    "Show the services of the selected barber.",
	booking.StepServiceSelected:   "Show the available time slots of the selected barber.",
	booking.StepSlotSelected:      "Ask for all three together: full name, phone number and email address.",
	booking.StepCollectingDetails: "Ask only for the customer details that are still missing.",
	booking.StepDetailsComplete:   "Summarize the booking and ask for confirmation.",
	booking.StepCompleted:         "The booking is done. Answer follow-up questions or help with a new booking.",
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

// BuildSystemPrompt combines the salon data, the booking state and the flow rules.
func BuildSystemPrompt(salonName string, barbers []catalog.Barber, bc *booking.Context) string {
	barberID := "None"
	if bc.BarberID != nil {
		barberID = fmt.Sprint(*bc.BarberID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly and helpful AI assistant for %s. ", salonName)
	b.WriteString("Your job is to help customers find barbers, services and time slots, and book appointments efficiently.\n\n")

	b.WriteString("CURRENT SALON DATA:\n")
	b.WriteString(BuildKnowledgeBase(barbers))

	b.WriteString("\nCURRENT BOOKING CONTEXT:\n")
	fmt.Fprintf(&b, "- Booking Step: %s\n", bc.Step)
	fmt.Fprintf(&b, "- Selected Barber: %s (ID: %s)\n", orNone(bc.BarberName), barberID)
	fmt.Fprintf(&b, "- Selected Service: %s\n", orNone(bc.Service))
	fmt.Fprintf(&b, "- Selected Slot: %s\n", orNone(bc.Slot))
	fmt.Fprintf(&b, "- Customer Name: %s\n", orNone(bc.CustomerName))
	fmt.Fprintf(&b, "- Customer Phone: %s\n", orNone(bc.CustomerPhone))
	fmt.Fprintf(&b, "- Customer Email: %s\n", orNone(bc.CustomerEmail))

	b.WriteString(`
BOOKING FLOW RULES:
1. Never repeat information that has already been confirmed and never ask for the same information twice.
2. Move forward in the booking process, never backwards.
3. Do not show available slots again once a slot has been selected.
4. Ask for name, phone number and email address together when collecting customer details.
5. Email address is required; never proceed to booking without it.
6. Appointments are added to Google Calendar automatically upon confirmation.
7. Time slots must be written exactly as listed, for example 2024-06-01 10:00 AM.

RESPONSE GUIDELINES:
- Be conversational and friendly like a salon receptionist.
- Use emojis sparingly (1-2 per response at most).
- Keep responses concise and acknowledge what the customer already provided.
`)
	if instr, ok := stepInstructions[bc.Step]; ok {
		fmt.Fprintf(&b, "\nCURRENT STEP INSTRUCTIONS: %s\n", instr)
	}
	return b.String()
}

// historyMessages turns "User: "/"Assistant: " history entries into chat turns.
func historyMessages(history []string) []ChatMessage {
	out := make([]ChatMessage, 0, len(history))
	for _, entry := range history {
		switch {
		case strings.HasPrefix(entry, "User: "):
			out = append(out, ChatMessage{Role: ChatRoleUser, Content: strings.TrimPrefix(entry, "User: ")})
		case strings.HasPrefix(entry, "Assistant: "):
			out = append(out, ChatMessage{Role: ChatRoleAssistant, Content: strings.TrimPrefix(entry, "Assistant: ")})
		}
	}
	return out
}
