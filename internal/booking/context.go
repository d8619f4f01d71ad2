// Package booking holds the per-session booking state, the engine that
// extracts selections and contact details from customer messages, the
// scripted reply overrides and the finalizer that books confirmed
// appointments.
package booking

import "fmt"

// Step is the position of a session in the booking flow.
type Step string

const (
	StepInitial           Step = "initial"
	StepBarberSelected    Step = "barber_selected"
	StepServiceSelected   Step = "service_selected"
	StepSlotSelected      Step = "slot_selected"
	StepCollectingDetails Step = "collecting_details"
	StepDetailsComplete   Step = "details_complete"
	// StepConfirmingBooking is part of the ordering but the engine never
	// enters it; confirmation moves details_complete straight to completed.
	StepConfirmingBooking Step = "confirming_booking"
	StepCompleted         Step = "completed"
)

var stepOrder = map[Step]int{
	StepInitial:           0,
	StepBarberSelected:    1,
	StepServiceSelected:   2,
	StepSlotSelected:      3,
	StepCollectingDetails: 4,
	StepDetailsComplete:   5,
	StepConfirmingBooking: 6,
	StepCompleted:         7,
}

// Rank returns the forward position of the step; unknown steps rank -1.
func (s Step) Rank() int {
	if r, ok := stepOrder[s]; ok {
		return r
	}
	return -1
}

// Before reports whether s comes strictly before other.
func (s Step) Before(other Step) bool {
	return s.Rank() < other.Rank()
}

// MaxHistory bounds Context.History.
const MaxHistory = 20

// Context is the mutable booking state of one conversation.
type Context struct {
	Step            Step     `json:"booking_step"`
	BarberName      string   `json:"selected_barber"`
	BarberID        *int64   `json:"selected_barber_id"`
	Service         string   `json:"selected_service"`
	Slot            string   `json:"selected_slot"`
	CustomerName    string   `json:"customer_name"`
	CustomerPhone   string   `json:"customer_phone"`
	CustomerEmail   string   `json:"customer_email"`
	Confirmed       bool     `json:"booking_confirmed"`
	Failed          bool     `json:"booking_failed"`
	CalendarEventID string   `json:"calendar_event_id,omitempty"`
	History         []string `json:"conversation_history"`
}

// NewContext returns the state of a fresh session.
func NewContext() *Context {
	return &Context{Step: StepInitial, History: []string{}}
}

// Reset returns c to the fresh-session state in place.
func (c *Context) Reset() {
	*c = *NewContext()
}

// Clone returns a deep copy.
func (c *Context) Clone() *Context {
	out := *c
	if c.BarberID != nil {
		id := *c.BarberID
		out.BarberID = &id
	}
	out.History = append([]string{}, c.History...)
	return &out
}

// SelectBarber sets both barber fields together.
func (c *Context) SelectBarber(id int64, name string) {
	c.BarberID = &id
	c.BarberName = name
}

// HasBarber reports whether a barber is selected.
func (c *Context) HasBarber() bool {
	return c.BarberID != nil
}

// HasContactDetails reports whether name, phone and email are all present.
func (c *Context) HasContactDetails() bool {
	return c.CustomerName != "" && c.CustomerPhone != "" && c.CustomerEmail != ""
}

// IsComplete reports whether every field needed to book is present.
func (c *Context) IsComplete() bool {
	return c.HasBarber() && c.Service != "" && c.Slot != "" && c.HasContactDetails()
}

// AppendHistory records one exchange, keeping the newest MaxHistory entries.
func (c *Context) AppendHistory(userText, assistantText string) {
	c.History = append(c.History, "User: "+userText, "Assistant: "+assistantText)
	if over := len(c.History) - MaxHistory; over > 0 {
		c.History = append([]string{}, c.History[over:]...)
	}
}

// advanceTo moves the step forward; it never moves backward.
func (c *Context) advanceTo(step Step) {
	if c.Step.Before(step) {
		c.Step = step
	}
}

// Summary is a one-line description for logs.
func (c *Context) Summary() string {
	id := "none"
	if c.BarberID != nil {
		id = fmt.Sprint(*c.BarberID)
	}
	return fmt.Sprintf("step=%s barber=%s service=%q slot=%q", c.Step, id, c.Service, c.Slot)
}
