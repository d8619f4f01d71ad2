package webhook

import (
	"fmt"
	"time"
)

// Booking is the data the salon sends to the automation workflow for one
// confirmed appointment.
type Booking struct {
	BarberID        int64
	BarberName      string
	Service         string
	AppointmentTime string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
}

// Payload is the JSON body posted to the workflow.
type Payload struct {
	EventType      string          `json:"event_type"`
	BookingDetails *BookingDetails `json:"booking_details,omitempty"`
	CalendarEvent  *CalendarEvent  `json:"calendar_event,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
	Message        string          `json:"message,omitempty"`
}

type BookingDetails struct {
	BarberID        int64  `json:"barber_id"`
	BarberName      string `json:"barber_name"`
	Service         string `json:"service"`
	AppointmentTime string `json:"appointment_time"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	SalonName       string `json:"salon_name"`
	Notes           string `json:"notes"`
}

type CalendarEvent struct {
	Summary         string   `json:"summary"`
	Description     string   `json:"description"`
	StartTime       string   `json:"start_time"`
	DurationMinutes int      `json:"duration_minutes"`
	Attendees       []string `json:"attendees"`
}

const (
	EventBookingCreated = "booking_created"
	EventTestConnection = "test_connection"
)

// BuildPayload assembles the booking_created body.
func BuildPayload(b Booking, salonName string, durationMinutes int, now time.Time) Payload {
	return Payload{
		EventType: EventBookingCreated,
		BookingDetails: &BookingDetails{
			BarberID:        b.BarberID,
			BarberName:      b.BarberName,
			Service:         b.Service,
			AppointmentTime: b.AppointmentTime,
			CustomerName:    b.CustomerName,
			CustomerPhone:   b.CustomerPhone,
			CustomerEmail:   b.CustomerEmail,
			Status:          "confirmed",
			CreatedAt:       now.Format(time.RFC3339),
			SalonName:       salonName,
			Notes:           fmt.Sprintf("Booking for %s with %s", b.Service, b.BarberName),
		},
		CalendarEvent: &CalendarEvent{
			Summary: "Barber Appointment - " + b.Service,
			Description: fmt.Sprintf("Customer: %s\nPhone: %s\nEmail: %s\nService: %s\nBarber: %s",
				b.CustomerName, b.CustomerPhone, b.CustomerEmail, b.Service, b.BarberName),
			StartTime:       b.AppointmentTime,
			DurationMinutes: durationMinutes,
			Attendees:       []string{b.CustomerEmail},
		},
	}
}
