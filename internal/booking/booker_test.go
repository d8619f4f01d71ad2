package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/observability/metrics"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webhook"
)

func idPtr(id int64) *int64 { return &id }

func validRequest() Request {
	return Request{
		BarberID:      idPtr(1),
		Service:       "Haircut",
		Slot:          "2024-06-01 10:00 AM",
		CustomerName:  "Ali",
		CustomerPhone: "03001234567",
		CustomerEmail: "ali@example.com",
	}
}

func TestBookerBookRemovesSlotAndRecords(t *testing.T) {
	barber := johnBarber()
	barber.Slots = []string{"2024-06-01T10:00:00Z", "2024-06-01T10:00:00+00:00", "2024-06-02T09:00:00Z"}
	store := catalog.NewMemoryStore(barber)
	wh := &fakeWebhook{}
	ledger := &recordingLedger{}
	notifier := &recordingNotifier{}
	booker := NewBooker(store, wh,
		WithLedger(ledger),
		WithNotifier(notifier),
		WithMetrics(metrics.NewBookingMetrics(prometheus.NewRegistry())))

	conf, err := booker.Book(context.Background(), "rest", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "bk_1", conf.BookingID)
	assert.Equal(t, "John", conf.BarberName)
	assert.Equal(t, "rest", conf.Channel)

	require.Len(t, wh.calls, 1)
	assert.Equal(t, webhook.Booking{
		BarberID: 1, BarberName: "John", Service: "Haircut", AppointmentTime: "2024-06-01 10:00 AM",
		CustomerName: "Ali", CustomerPhone: "03001234567", CustomerEmail: "ali@example.com",
	}, wh.calls[0])

	updated, err := store.GetBarber(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-01T10:00:00+00:00", "2024-06-02T09:00:00Z"}, updated.Slots)

	assert.Len(t, ledger.records, 1)
	assert.Len(t, notifier.sent, 1)
}

func TestBookerRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"unknown barber", func(r *Request) { r.BarberID = idPtr(99) }, ErrBarberNotFound},
		{"missing barber", func(r *Request) { r.BarberID = nil }, ErrIncompleteBooking},
		{"slot not offered", func(r *Request) { r.Slot = "2024-06-01 11:00 AM" }, ErrSlotUnavailable},
		{"service not offered", func(r *Request) { r.Service = "Fade" }, ErrServiceNotOffered},
		{"missing name", func(r *Request) { r.CustomerName = " " }, ErrIncompleteBooking},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wh := &fakeWebhook{}
			booker := NewBooker(catalog.NewMemoryStore(johnBarber()), wh)
			req := validRequest()
			tc.mutate(&req)

			_, err := booker.Book(context.Background(), "rest", req)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, wh.calls)
		})
	}
}

func TestBookerServiceErrorListsServices(t *testing.T) {
	booker := NewBooker(catalog.NewMemoryStore(johnBarber()), &fakeWebhook{})
	req := validRequest()
	req.Service = "Fade"

	_, err := booker.Book(context.Background(), "rest", req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available services: Haircut, Shave")
}

func TestBookerWebhookFailureKeepsSlot(t *testing.T) {
	store := catalog.NewMemoryStore(johnBarber())
	wh := &fakeWebhook{err: &webhook.Error{StatusCode: 500, Message: "Failed to create calendar event: 500 Internal Server Error"}}
	ledger := &recordingLedger{}
	booker := NewBooker(store, wh, WithLedger(ledger))

	_, err := booker.Book(context.Background(), "chat", validRequest())
	var werr *webhook.Error
	require.True(t, errors.As(err, &werr))

	barber, _ := store.GetBarber(context.Background(), 1)
	assert.Equal(t, []string{"2024-06-01T10:00:00Z"}, barber.Slots)
	assert.Empty(t, ledger.records)
}

func TestBookerSlotUpdateFailureIsNotFatal(t *testing.T) {
	store := failingUpdateStore{catalog.NewMemoryStore(johnBarber())}
	ledger := &recordingLedger{err: errors.New("db down")}
	booker := NewBooker(store, &fakeWebhook{}, WithLedger(ledger))

	conf, err := booker.Book(context.Background(), "chat", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "evt_1", conf.CalendarEventID)
}

func TestRemoveSlotDropsFirstMatchOnly(t *testing.T) {
	raw := []string{"bad", "2024-06-01T10:00:00Z", "2024-06-01 10:00:00"}
	out, ok := removeSlot(raw, "2024-06-01 10:00 AM")
	assert.True(t, ok)
	assert.Equal(t, []string{"bad", "2024-06-01 10:00:00"}, out)
	assert.Equal(t, "2024-06-01T10:00:00Z", raw[1])

	_, ok = removeSlot(raw, "2030-01-01 10:00 AM")
	assert.False(t, ok)
}

func TestBookerAcceptsBarberIDZero(t *testing.T) {
	barber := johnBarber()
	barber.ID = 0
	store := catalog.NewMemoryStore(barber)
	wh := &fakeWebhook{}
	req := validRequest()
	req.BarberID = idPtr(0)

	conf, err := NewBooker(store, wh).Book(context.Background(), "rest", req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), conf.BarberID)
	require.Len(t, wh.calls, 1)
	assert.Equal(t, int64(0), wh.calls[0].BarberID)
}

func TestBookerDuplicateLedgerRowFailsBooking(t *testing.T) {
	ledger := &recordingLedger{err: fmt.Errorf("insert: %w", ErrDuplicateBooking)}
	booker := NewBooker(catalog.NewMemoryStore(johnBarber()), &fakeWebhook{}, WithLedger(ledger))

	conf, err := booker.Book(context.Background(), "rest", validRequest())
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Nil(t, conf)
	assert.Equal(t, "rejected", outcomeFor(err))
}
