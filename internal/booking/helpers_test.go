package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webhook"
)

func johnBarber() catalog.Barber {
	return catalog.Barber{
		ID:       1,
		Name:     "John",
		Services: catalog.ParseServices("Haircut, Shave"),
		Slots:    []string{"2024-06-01T10:00:00Z"},
	}
}

func newTestCatalog(barbers ...catalog.Barber) (*catalog.Catalog, *catalog.MemoryStore) {
	if len(barbers) == 0 {
		barbers = []catalog.Barber{johnBarber()}
	}
	store := catalog.NewMemoryStore(barbers...)
	return catalog.New(store, nil), store
}

type fakeWebhook struct {
	mu    sync.Mutex
	calls []webhook.Booking
	err   error
}

func (f *fakeWebhook) CreateBooking(_ context.Context, b webhook.Booking) (*webhook.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, b)
	if f.err != nil {
		return nil, f.err
	}
	return &webhook.Result{CalendarEventID: "evt_1", BookingID: "bk_1", CalendarLink: "https://cal/evt_1"}, nil
}

type recordingLedger struct {
	records []Confirmation
	err     error
}

func (l *recordingLedger) Record(_ context.Context, c Confirmation) error {
	l.records = append(l.records, c)
	return l.err
}

type recordingNotifier struct {
	sent []Confirmation
}

func (n *recordingNotifier) SendBookingConfirmation(_ context.Context, c Confirmation) error {
	n.sent = append(n.sent, c)
	return nil
}

type recordingArchiver struct {
	sessionID  string
	transcript []string
}

func (a *recordingArchiver) ArchiveBooking(_ context.Context, sessionID string, _ Confirmation, transcript []string) error {
	a.sessionID = sessionID
	a.transcript = transcript
	return nil
}

type failingUpdateStore struct {
	*catalog.MemoryStore
}

func (failingUpdateStore) UpdateSlots(context.Context, int64, []string) error {
	return errors.New("update failed")
}
