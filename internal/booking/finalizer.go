package booking

import (
	"context"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// ChannelChat labels bookings made through the chat assistant.
const ChannelChat = "chat"

// Archiver stores the transcript of a completed booking.
type Archiver interface {
	ArchiveBooking(ctx context.Context, sessionID string, c Confirmation, transcript []string) error
}

// CacheInvalidator drops a cached catalog.
type CacheInvalidator interface {
	Invalidate()
}

// Finalizer books a complete context once the customer confirms.
type Finalizer struct {
	booker   *Booker
	archiver Archiver
	logger   *logging.Logger
}

// NewFinalizer creates a Finalizer; archiver may be nil.
func NewFinalizer(booker *Booker, archiver Archiver, logger *logging.Logger) *Finalizer {
	if booker == nil {
		panic("booking: booker cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Finalizer{booker: booker, archiver: archiver, logger: logger}
}

// ShouldFinalize reports whether text confirms a complete booking.
func ShouldFinalize(bc *Context, text string) bool {
	return bc.Step == StepDetailsComplete && IsConfirmation(text)
}

// Finalize books bc and returns the reply for the customer. On failure the
// context stays in details_complete with Failed set so the customer can
// confirm again.
func (f *Finalizer) Finalize(ctx context.Context, sessionID string, bc *Context, cache CacheInvalidator, userText string) string {
	if !bc.IsComplete() {
		bc.Failed = true
		return FailedReply(ErrIncompleteBooking.Error())
	}

	barberID := *bc.BarberID
	conf, err := f.booker.Book(ctx, ChannelChat, Request{
		BarberID:      &barberID,
		Service:       bc.Service,
		Slot:          bc.Slot,
		CustomerName:  bc.CustomerName,
		CustomerPhone: bc.CustomerPhone,
		CustomerEmail: bc.CustomerEmail,
	})
	if err != nil {
		f.logger.Warn("chat booking failed", "session_id", sessionID, "error", err)
		bc.Failed = true
		return FailedReply(err.Error())
	}

	if cache != nil {
		cache.Invalidate()
	}
	bc.CalendarEventID = conf.CalendarEventID
	bc.Confirmed = true
	bc.Failed = false
	bc.advanceTo(StepCompleted)

	reply := ConfirmedReply(bc, conf)

	if f.archiver != nil {
		transcript := append(append([]string{}, bc.History...), "User: "+userText, "Assistant: "+reply)
		if err := f.archiver.ArchiveBooking(ctx, sessionID, *conf, transcript); err != nil {
			f.logger.Warn("failed to archive booking transcript", "session_id", sessionID, "error", err)
		}
	}
	return reply
}
