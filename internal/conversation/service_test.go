package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
)

func TestService_FullBookingFlow(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	start, err := f.service.StartSession(ctx)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if start.Message != WelcomeMessage || start.Step != booking.StepInitial {
		t.Fatalf("unexpected start reply: %#v", start)
	}

	resp, err := f.service.ProcessMessage(ctx, start.SessionID, "show all barbers")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if resp.Message != "Happy to help!" {
		t.Fatalf("expected model text to pass through, got %q", resp.Message)
	}

	resp, err = f.service.ProcessMessage(ctx, start.SessionID, "haircut with John at 2024-06-01 10:00 AM")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if resp.Step != booking.StepCollectingDetails {
		t.Fatalf("expected collecting_details, got %s", resp.Step)
	}
	if !strings.Contains(resp.Message, "your full name, phone number, and email address") {
		t.Fatalf("expected details prompt, got %q", resp.Message)
	}

	resp, _ = f.service.ProcessMessage(ctx, start.SessionID, "Name Ali, phone 03001234567, email ali@example.com")
	if resp.Step != booking.StepDetailsComplete {
		t.Fatalf("expected details_complete, got %s", resp.Step)
	}
	if !strings.Contains(resp.Message, "Booking Summary") {
		t.Fatalf("expected summary, got %q", resp.Message)
	}

	llmCalls := f.llm.calls
	resp, _ = f.service.ProcessMessage(ctx, start.SessionID, "yes")
	if f.webhook.calls != 1 {
		t.Fatalf("expected one webhook call, got %d", f.webhook.calls)
	}
	if f.llm.calls != llmCalls {
		t.Fatalf("confirmation turn should not call the llm")
	}
	if resp.Step != booking.StepCompleted || !resp.Context.Confirmed {
		t.Fatalf("expected completed booking, got %#v", resp.Context)
	}
	if resp.Context.CalendarEventID != "evt_1" {
		t.Fatalf("expected calendar id, got %q", resp.Context.CalendarEventID)
	}

	barber, _ := f.store.GetBarber(ctx, 1)
	if len(barber.Slots) != 1 || barber.Slots[0] != "2024-06-01T14:30:00Z" {
		t.Fatalf("expected booked slot removed, got %v", barber.Slots)
	}
}

func TestService_PromptCarriesHistoryAndCatalog(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	start, _ := f.service.StartSession(ctx)

	_, _ = f.service.ProcessMessage(ctx, start.SessionID, "hello")
	_, _ = f.service.ProcessMessage(ctx, start.SessionID, "who is available?")

	req := f.llm.lastRequest()
	if req.Model != "test-model" {
		t.Fatalf("expected model id, got %q", req.Model)
	}
	if len(req.System) != 1 || !strings.Contains(req.System[0], "Barber Name: John") {
		t.Fatalf("expected knowledge base in system prompt, got %v", req.System)
	}
	if len(req.Messages) != 3 {
		t.Fatalf("expected 2 history turns plus the new message, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != ChatRoleUser || req.Messages[0].Content != "hello" {
		t.Fatalf("unexpected first message %#v", req.Messages[0])
	}
	if req.Messages[1].Role != ChatRoleAssistant {
		t.Fatalf("expected assistant turn, got %#v", req.Messages[1])
	}
	if req.Messages[2].Content != "who is available?" {
		t.Fatalf("unexpected last message %#v", req.Messages[2])
	}
}

func TestService_BooksInTheTurnDetailsComplete(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	start, _ := f.service.StartSession(ctx)

	resp, _ := f.service.ProcessMessage(ctx, start.SessionID,
		"book with John for Haircut at 2024-06-01 10:00 AM, Name Ali, phone 03001234567, email ali@example.com")
	if f.webhook.calls != 1 {
		t.Fatalf("expected one webhook call, got %d", f.webhook.calls)
	}
	if resp.Step != booking.StepCompleted {
		t.Fatalf("expected completed booking, got %s %q", resp.Step, resp.Message)
	}
	if f.llm.calls != 0 {
		t.Fatalf("booking turn should not call the llm, got %d calls", f.llm.calls)
	}
}

func TestService_CompleteDetailsWithoutKeywordShowSummary(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	start, _ := f.service.StartSession(ctx)

	resp, _ := f.service.ProcessMessage(ctx, start.SessionID,
		"John for Haircut at 2024-06-01 10:00 AM, Name Ali, phone 03001234567, email ali@example.com")
	if f.webhook.calls != 0 {
		t.Fatalf("expected no webhook call, got %d", f.webhook.calls)
	}
	if resp.Step != booking.StepDetailsComplete || !strings.Contains(resp.Message, "Shall I confirm") {
		t.Fatalf("expected summary, got %s %q", resp.Step, resp.Message)
	}
}

func TestService_LLMFailureReturnsApology(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	start, _ := f.service.StartSession(ctx)

	f.llm.err = errors.New("quota exceeded")
	resp, err := f.service.ProcessMessage(ctx, start.SessionID, "book with John")
	if err != nil {
		t.Fatalf("turn must not fail: %v", err)
	}
	if resp.Message != booking.ApologyReply {
		t.Fatalf("expected apology, got %q", resp.Message)
	}
	if resp.Context.BarberName != "John" {
		t.Fatalf("extraction should still apply, got %#v", resp.Context)
	}
	if len(resp.Context.History) != 0 {
		t.Fatalf("failed turn should not be recorded, got %v", resp.Context.History)
	}
}

func TestService_WebhookFailureIsRetryable(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	start, _ := f.service.StartSession(ctx)

	f.webhook.err = errors.New("Failed to create calendar event: 500 Internal Server Error")
	resp, _ := f.service.ProcessMessage(ctx, start.SessionID,
		"book with John for Haircut at 2024-06-01 10:00 AM, Name Ali, phone 03001234567, email ali@example.com")
	if !resp.Context.Failed || resp.Step != booking.StepDetailsComplete {
		t.Fatalf("expected failed booking in details_complete, got %#v", resp.Context)
	}
	if !strings.Contains(resp.Message, "500 Internal Server Error") {
		t.Fatalf("expected error surfaced, got %q", resp.Message)
	}

	f.webhook.err = nil
	resp, _ = f.service.ProcessMessage(ctx, start.SessionID, "confirm")
	if resp.Step != booking.StepCompleted {
		t.Fatalf("expected retry to complete, got %s", resp.Step)
	}
	if f.webhook.calls != 2 {
		t.Fatalf("expected two webhook calls, got %d", f.webhook.calls)
	}
}

func TestService_PruneKeepsSessionWithTurnInFlight(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return now }

	busy, _ := f.service.StartSession(ctx)
	idle, _ := f.service.StartSession(ctx)

	f.service.mu.Lock()
	held := f.service.live[busy.SessionID]
	f.service.mu.Unlock()
	held.mu.Lock()
	defer held.mu.Unlock()

	now = now.Add(f.service.idleTimeout + time.Minute)
	if _, err := f.service.StartSession(ctx); err != nil {
		t.Fatalf("start session: %v", err)
	}

	f.service.mu.Lock()
	defer f.service.mu.Unlock()
	if f.service.live[busy.SessionID] != held {
		t.Fatalf("session with a running turn was evicted")
	}
	if _, ok := f.service.live[idle.SessionID]; ok {
		t.Fatalf("idle session should have been evicted")
	}
}

func TestService_ResetIsTotal(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	start, _ := f.service.StartSession(ctx)

	_, _ = f.service.ProcessMessage(ctx, start.SessionID, "John haircut")
	if err := f.store.UpdateSlots(ctx, 1, nil); err != nil {
		t.Fatalf("update slots: %v", err)
	}

	resp, err := f.service.Reset(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	want := booking.NewContext()
	if resp.Context.Step != want.Step || resp.Context.BarberID != nil || resp.Context.Service != "" || len(resp.Context.History) != 0 {
		t.Fatalf("expected fresh context, got %#v", resp.Context)
	}

	// The cache was dropped, so the prompt reflects the emptied slots.
	_, _ = f.service.ProcessMessage(ctx, start.SessionID, "slots?")
	if strings.Contains(f.llm.lastRequest().System[0], "2024-06-01 10:00 AM") {
		t.Fatalf("expected catalog to be refetched after reset")
	}
}

func TestService_UnknownSessionAndEmptyMessage(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	if _, err := f.service.ProcessMessage(ctx, "missing", "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	start, _ := f.service.StartSession(ctx)
	if _, err := f.service.ProcessMessage(ctx, start.SessionID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestService_SessionSurvivesRestartWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	first := newServiceFixture(t, NewRedisSessionStore(client, 0, nil))
	start, _ := first.service.StartSession(ctx)
	_, _ = first.service.ProcessMessage(ctx, start.SessionID, "John please, a shave")

	second := newServiceFixture(t, NewRedisSessionStore(client, 0, nil))
	bc, err := second.service.State(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if bc.BarberName != "John" || bc.Service != "Shave" || bc.Step != booking.StepServiceSelected {
		t.Fatalf("expected restored context, got %#v", bc)
	}
}
