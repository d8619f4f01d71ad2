// Package catalog reads barber records (services and available slots) from
// the salon data store and caches them per conversation session.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/slottime"
)

// ErrNotFound is returned when a barber id has no row.
var ErrNotFound = errors.New("catalog: barber not found")

// Barber is one row of the barber_bookings table.
type Barber struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Services []string `json:"services"`
	// Slots are raw timestamps as stored; see DisplaySlots.
	Slots []string `json:"slots"`
}

// DisplaySlots returns the normalized form of every raw slot.
func (b Barber) DisplaySlots() []string {
	return slottime.NormalizeAll(b.Slots)
}

// OffersService reports whether service is one of the barber's services (exact match).
func (b Barber) OffersService(service string) bool {
	for _, s := range b.Services {
		if s == service {
			return true
		}
	}
	return false
}

// ParseServices splits a comma-separated services field, trimming entries and
// dropping empty ones.
func ParseServices(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DataStore is the read/update contract of the salon data store.
type DataStore interface {
	ListBarbers(ctx context.Context) ([]Barber, error)
	GetBarber(ctx context.Context, id int64) (*Barber, error)
	// UpdateSlots replaces the raw available slots of one barber.
	UpdateSlots(ctx context.Context, id int64, slots []string) error
	Ping(ctx context.Context) error
}
