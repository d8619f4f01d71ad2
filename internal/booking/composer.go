package booking

import (
	"fmt"
	"strings"
)

// ApologyReply is returned for a turn whose reply could not be generated.
const ApologyReply = "I apologize, but I'm having trouble processing your request right now. " +
	"Please try asking: 'show all barbers' or 'help me book an appointment'."

const detailsExample = "Example: 'Name Ali, phone 03001234567, email ali@example.com'"

// Compose applies the scripted overrides to a generated reply. A complete
// booking always gets the summary and a partially collected one always gets
// the missing-details prompt; anything else passes through unchanged.
func Compose(bc *Context, modelText string) string {
	switch bc.Step {
	case StepDetailsComplete:
		return SummaryReply(bc)
	case StepSlotSelected, StepCollectingDetails:
		if missing := MissingFields(bc); len(missing) > 0 {
			return MissingDetailsReply(missing)
		}
	}
	return modelText
}

// MissingFields lists the contact fields still needed, in asking order.
func MissingFields(bc *Context) []string {
	var missing []string
	if bc.CustomerName == "" {
		missing = append(missing, "full name")
	}
	if bc.CustomerPhone == "" {
		missing = append(missing, "phone number")
	}
	if bc.CustomerEmail == "" {
		missing = append(missing, "email address")
	}
	return missing
}

// MissingDetailsReply asks for exactly the given fields.
func MissingDetailsReply(missing []string) string {
	var ask string
	switch len(missing) {
	case 0:
		return ""
	case 1:
		ask = "your " + missing[0]
	case 2:
		ask = fmt.Sprintf("your %s and %s", missing[0], missing[1])
	default:
		ask = "your " + strings.Join(missing[:len(missing)-1], ", ") + ", and " + missing[len(missing)-1]
	}
	return "Perfect! To complete your booking, please provide " + ask + ".\n" + detailsExample
}

// SummaryReply lists every booking field and asks for confirmation.
func SummaryReply(bc *Context) string {
	var b strings.Builder
	b.WriteString("Perfect! I have all the details for your appointment:\n\n")
	b.WriteString("📋 Booking Summary:\n")
	fmt.Fprintf(&b, "- Barber: %s\n", bc.BarberName)
	fmt.Fprintf(&b, "- Service: %s\n", bc.Service)
	fmt.Fprintf(&b, "- Time: %s\n", bc.Slot)
	fmt.Fprintf(&b, "- Name: %s\n", bc.CustomerName)
	fmt.Fprintf(&b, "- Phone: %s\n", bc.CustomerPhone)
	fmt.Fprintf(&b, "- Email: %s\n\n", bc.CustomerEmail)
	b.WriteString("📅 Your appointment will be automatically added to Google Calendar upon confirmation.\n\n")
	b.WriteString("Shall I confirm this booking for you? Just say 'yes' or 'confirm' to proceed! ✅")
	return b.String()
}

// ConfirmedReply announces a successful booking.
func ConfirmedReply(bc *Context, c *Confirmation) string {
	var b strings.Builder
	b.WriteString("🎉 Perfect! Your appointment has been successfully booked and added to Google Calendar!\n\n")
	b.WriteString("📅 Booking Confirmation:\n")
	fmt.Fprintf(&b, "- Barber: %s\n", bc.BarberName)
	fmt.Fprintf(&b, "- Service: %s\n", bc.Service)
	fmt.Fprintf(&b, "- Date & Time: %s\n", bc.Slot)
	fmt.Fprintf(&b, "- Customer: %s\n", bc.CustomerName)
	fmt.Fprintf(&b, "- Phone: %s\n", bc.CustomerPhone)
	fmt.Fprintf(&b, "- Email: %s", bc.CustomerEmail)
	if c != nil && c.CalendarEventID != "" {
		b.WriteString("\n\n📅 Google Calendar: Your appointment has been added to Google Calendar!")
		if c.CalendarLink != "" {
			fmt.Fprintf(&b, "\n🔗 Calendar Link: %s", c.CalendarLink)
		}
	}
	b.WriteString("\n\nWe look forward to seeing you! 💇‍♂️")
	return b.String()
}

// FailedReply reports a failed booking with the error text shown as-is.
func FailedReply(errMsg string) string {
	return fmt.Sprintf("❌ Sorry, there was an issue booking your appointment: %s. Please try again or contact us directly.", errMsg)
}
