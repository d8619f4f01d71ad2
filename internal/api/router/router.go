package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/conversation"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/http/handlers"
	httpmiddleware "github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/http/middleware"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webchat"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Salon          *handlers.SalonHandler
	Chat           *conversation.Handler
	WebChat        *webchat.Handler
	MetricsHandler http.Handler

	// AdminAuthSecret enables the /admin routes when set.
	AdminAuthSecret    string
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Websocket upgrades bypass compression and rate limiting.
	if cfg.WebChat != nil {
		r.Get("/chat/ws", cfg.WebChat.HandleWebSocket)
	}

	r.Group(func(public chi.Router) {
		public.Use(middleware.Compress(5))
		if cfg.RateLimiter != nil {
			public.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
		}

		if cfg.Salon != nil {
			public.Get("/", cfg.Salon.Root)
			public.Get("/health", cfg.Salon.Health)
			public.Get("/services", cfg.Salon.ListServices)
			public.Route("/barbers", func(r chi.Router) {
				r.Get("/", cfg.Salon.ListBarbers)
				r.Get("/{barberID}", cfg.Salon.GetBarber)
				r.Get("/{barberID}/availability", cfg.Salon.Availability)
			})
			public.Post("/bookings", cfg.Salon.CreateBooking)
			public.Get("/bookings", cfg.Salon.ListBookings)
		}
		if cfg.Chat != nil {
			cfg.Chat.Routes(public)
		}
		if cfg.WebChat != nil {
			public.Post("/chat/message", cfg.WebChat.HandleMessage)
			public.Get("/chat/history", cfg.WebChat.HandleHistory)
			public.Get("/chat/widget.js", cfg.WebChat.HandleWidgetJS)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by HS256 JWT)
	if cfg.AdminAuthSecret != "" && cfg.Salon != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Post("/test-webhook", cfg.Salon.TestWebhook)
			admin.Get("/webhook/ping", cfg.Salon.PingWebhook)
		})
	}

	return r
}
