package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webhook"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

type stubLLMClient struct {
	mu        sync.Mutex
	response  LLMResponse
	err       error
	requests  []LLMRequest
	responses []LLMResponse
	calls     int
}

func (s *stubLLMClient) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	defer func() { s.calls++ }()

	if s.err != nil {
		return LLMResponse{}, s.err
	}
	if len(s.responses) > 0 {
		if s.calls >= len(s.responses) {
			return LLMResponse{}, errors.New("no scripted response")
		}
		return s.responses[s.calls], nil
	}
	return s.response, nil
}

func (s *stubLLMClient) lastRequest() LLMRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

type countingWebhook struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingWebhook) CreateBooking(context.Context, webhook.Booking) (*webhook.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &webhook.Result{CalendarEventID: "evt_1", BookingID: "bk_1", CalendarLink: "https://cal/evt_1"}, nil
}

func testBarbers() []catalog.Barber {
	return []catalog.Barber{{
		ID:       1,
		Name:     "John",
		Services: catalog.ParseServices("Haircut, Shave"),
		Slots:    []string{"2024-06-01T10:00:00Z", "2024-06-01T14:30:00Z"},
	}}
}

type serviceFixture struct {
	service *Service
	llm     *stubLLMClient
	webhook *countingWebhook
	store   *catalog.MemoryStore
}

func newServiceFixture(t *testing.T, sessions SessionStore) *serviceFixture {
	t.Helper()
	store := catalog.NewMemoryStore(testBarbers()...)
	llm := &stubLLMClient{response: LLMResponse{Text: "Happy to help!"}}
	wh := &countingWebhook{}
	logger := logging.Default()

	svc, err := NewService(Config{
		Store:     store,
		Sessions:  sessions,
		LLM:       llm,
		Finalizer: booking.NewFinalizer(booking.NewBooker(store, wh), nil, logger),
		Logger:    logger,
		ModelID:   "test-model",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &serviceFixture{service: svc, llm: llm, webhook: wh, store: store}
}
