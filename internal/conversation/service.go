// Package conversation runs chat turns: it applies each customer message to
// the session's booking context, books confirmed appointments, and otherwise
// asks the text generator for a reply that the scripted overrides may replace.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/observability/metrics"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// ErrEmptyMessage is returned for blank customer messages.
var ErrEmptyMessage = errors.New("conversation: message is empty")

// Session is one live conversation. Turns on a session run one at a time.
type Session struct {
	ID      string
	Booking *booking.Context
	Catalog *catalog.Catalog

	mu       sync.Mutex
	lastSeen time.Time
}

// Reply is the outcome of a turn.
type Reply struct {
	SessionID string           `json:"session_id"`
	Message   string           `json:"message"`
	Step      booking.Step     `json:"booking_step"`
	Context   *booking.Context `json:"context"`
}

// Config holds the Service dependencies.
type Config struct {
	Store      catalog.DataStore
	Sessions   SessionStore
	LLM        LLMClient
	Finalizer  *booking.Finalizer
	Metrics    *metrics.BookingMetrics
	Logger     *logging.Logger
	SalonName  string
	ModelID    string
	LLMTimeout time.Duration
	// IdleTimeout evicts live sessions not used for this long; they are
	// reloaded from Sessions on the next message.
	IdleTimeout time.Duration
}

// Service processes chat turns.
type Service struct {
	store       catalog.DataStore
	sessions    SessionStore
	llm         LLMClient
	finalizer   *booking.Finalizer
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	salonName   string
	modelID     string
	llmTimeout  time.Duration
	idleTimeout time.Duration

	mu   sync.Mutex
	live map[string]*Session
	now  func() time.Time
}

// NewService validates cfg and creates a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("conversation: data store is required")
	}
	if cfg.LLM == nil {
		return nil, errors.New("conversation: llm client is required")
	}
	if cfg.Finalizer == nil {
		return nil, errors.New("conversation: finalizer is required")
	}
	if cfg.Sessions == nil {
		cfg.Sessions = NewMemorySessionStore(cfg.IdleTimeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if strings.TrimSpace(cfg.SalonName) == "" {
		cfg.SalonName = "AI Barber Salon"
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultSessionTTL
	}
	return &Service{
		store:       cfg.Store,
		sessions:    cfg.Sessions,
		llm:         cfg.LLM,
		finalizer:   cfg.Finalizer,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		salonName:   cfg.SalonName,
		modelID:     cfg.ModelID,
		llmTimeout:  cfg.LLMTimeout,
		idleTimeout: cfg.IdleTimeout,
		live:        make(map[string]*Session),
		now:         time.Now,
	}, nil
}

// StartSession creates a session in the initial step.
func (s *Service) StartSession(ctx context.Context) (*Reply, error) {
	sess := s.newSession(uuid.NewString(), booking.NewContext())
	if err := s.sessions.Save(ctx, sess.ID, sess.Booking); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pruneLocked()
	s.live[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("chat session started", "session_id", sess.ID)
	return &Reply{SessionID: sess.ID, Message: WelcomeMessage, Step: sess.Booking.Step, Context: sess.Booking.Clone()}, nil
}

// ProcessMessage runs one turn. Domain failures never surface as errors;
// only unknown sessions, blank input and session persistence do.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	reply := s.turn(ctx, sess, text)
	if err := s.sessions.Save(ctx, sess.ID, sess.Booking); err != nil {
		s.logger.Error("failed to persist session", "session_id", sess.ID, "error", err)
	}
	return &Reply{SessionID: sess.ID, Message: reply, Step: sess.Booking.Step, Context: sess.Booking.Clone()}, nil
}

func (s *Service) turn(ctx context.Context, sess *Session, text string) string {
	bc := sess.Booking
	logger := s.logger.With("session_id", sess.ID)

	changed := booking.Extract(ctx, sess.Catalog, bc, text)
	s.metrics.ObserveExtracted(changed...)
	logger.Debug("extraction applied", "fields", changed, "context", bc.Summary())

	if booking.ShouldFinalize(bc, text) {
		reply := s.finalizer.Finalize(ctx, sess.ID, bc, sess.Catalog, text)
		bc.AppendHistory(text, reply)
		s.metrics.ObserveTurn(string(bc.Step), "booking")
		return reply
	}

	modelText, err := s.generate(ctx, sess, text)
	if err != nil {
		logger.Error("reply generation failed", "error", err)
		s.metrics.ObserveLLMFailure("turn")
		s.metrics.ObserveTurn(string(bc.Step), "apology")
		return booking.ApologyReply
	}

	reply := booking.Compose(bc, modelText)
	bc.AppendHistory(text, reply)
	s.metrics.ObserveTurn(string(bc.Step), "ok")
	return reply
}

func (s *Service) generate(ctx context.Context, sess *Session, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	bc := sess.Booking
	messages := append(historyMessages(bc.History), ChatMessage{Role: ChatRoleUser, Content: text})
	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.modelID,
		System:      []string{BuildSystemPrompt(s.salonName, sess.Catalog.FetchAll(ctx), bc)},
		Messages:    messages,
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", errors.New("conversation: empty reply from llm")
	}
	return resp.Text, nil
}

// Reset returns the session to its initial state and drops its catalog cache.
func (s *Service) Reset(ctx context.Context, sessionID string) (*Reply, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.Booking.Reset()
	sess.Catalog.Invalidate()
	if err := s.sessions.Save(ctx, sess.ID, sess.Booking); err != nil {
		return nil, err
	}
	s.logger.Info("chat session reset", "session_id", sess.ID)
	return &Reply{SessionID: sess.ID, Message: WelcomeMessage, Step: sess.Booking.Step, Context: sess.Booking.Clone()}, nil
}

// State returns a copy of the session's booking context.
func (s *Service) State(ctx context.Context, sessionID string) (*booking.Context, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Booking.Clone(), nil
}

// End forgets a session.
func (s *Service) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.live, sessionID)
	s.mu.Unlock()
	return s.sessions.Delete(ctx, sessionID)
}

func (s *Service) session(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.live[sessionID]; ok {
		sess.lastSeen = s.now()
		return sess, nil
	}
	bc, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess := s.newSession(sessionID, bc)
	s.live[sessionID] = sess
	return sess, nil
}

func (s *Service) newSession(id string, bc *booking.Context) *Session {
	return &Session{
		ID:       id,
		Booking:  bc,
		Catalog:  catalog.New(s.store, s.logger),
		lastSeen: s.now(),
	}
}

// pruneLocked evicts idle sessions. A session whose turn is still running
// is kept so no two turns ever hold different copies of it.
func (s *Service) pruneLocked() {
	cutoff := s.now().Add(-s.idleTimeout)
	for id, sess := range s.live {
		if !sess.lastSeen.Before(cutoff) {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		delete(s.live, id)
		sess.mu.Unlock()
	}
}
