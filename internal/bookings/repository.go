package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
)

// ErrDuplicateBooking is returned when the barber already has a booking at that time.
var ErrDuplicateBooking = booking.ErrDuplicateBooking

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Record is one row of the bookings table.
type Record struct {
	ID              string    `json:"id"`
	BookingID       string    `json:"booking_id"`
	CalendarEventID string    `json:"calendar_event_id"`
	CalendarLink    string    `json:"calendar_link"`
	BarberID        int64     `json:"barber_id"`
	BarberName      string    `json:"barber_name"`
	Service         string    `json:"service"`
	AppointmentTime string    `json:"appointment_time"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerEmail   string    `json:"customer_email"`
	Channel         string    `json:"channel"`
	BookedAt        time.Time `json:"booked_at"`
}

// Repository provides persistence helpers for bookings.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository backed by a lib/pq connection.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("bookings: sql db required")
	}
	return &Repository{db: db}
}

// Insert stores rec, assigning an id when it has none.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.BookedAt.IsZero() {
		rec.BookedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bookings (id, booking_id, calendar_event_id, calendar_link, barber_id, barber_name,
		    service, appointment_time, customer_name, customer_phone, customer_email, channel, booked_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.BookingID, rec.CalendarEventID, rec.CalendarLink, rec.BarberID, rec.BarberName,
		rec.Service, rec.AppointmentTime, rec.CustomerName, rec.CustomerPhone, rec.CustomerEmail,
		rec.Channel, rec.BookedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("bookings: insert: %w", err)
	}
	return nil
}

// List returns the most recent bookings, optionally for one barber (barberID > 0).
func (r *Repository) List(ctx context.Context, barberID int64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, calendar_event_id, calendar_link, barber_id, barber_name, service,
		       appointment_time, customer_name, customer_phone, customer_email, channel, booked_at
		FROM bookings
		WHERE ($1::bigint = 0 OR barber_id = $1::bigint)
		ORDER BY booked_at DESC
		LIMIT $2`, barberID, limit)
	if err != nil {
		return nil, fmt.Errorf("bookings: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.BookingID, &rec.CalendarEventID, &rec.CalendarLink,
			&rec.BarberID, &rec.BarberName, &rec.Service, &rec.AppointmentTime, &rec.CustomerName,
			&rec.CustomerPhone, &rec.CustomerEmail, &rec.Channel, &rec.BookedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
