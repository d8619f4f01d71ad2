package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// Catalog is the session-scoped accessor over a DataStore. The first
// successful fetch is cached until Invalidate is called.
type Catalog struct {
	store  DataStore
	logger *logging.Logger

	mu      sync.Mutex
	barbers []Barber
	cached  bool
}

// New creates a catalog accessor.
func New(store DataStore, logger *logging.Logger) *Catalog {
	if store == nil {
		panic("catalog: data store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Catalog{store: store, logger: logger}
}

// Store exposes the underlying data store for slot updates.
func (c *Catalog) Store() DataStore {
	return c.store
}

// FetchAll returns every barber. Data-source errors are logged and produce
// an empty result; failures are not cached.
func (c *Catalog) FetchAll(ctx context.Context) []Barber {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached {
		return c.barbers
	}

	barbers, err := c.store.ListBarbers(ctx)
	if err != nil {
		c.logger.Error("catalog fetch failed", "error", err)
		return []Barber{}
	}
	c.logger.Debug("catalog fetched", "barbers", len(barbers))
	c.barbers = barbers
	c.cached = true
	return c.barbers
}

// Invalidate drops the cache so the next call re-queries the data store.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.barbers = nil
	c.cached = false
	c.mu.Unlock()
}

// ByID finds a barber by id.
func (c *Catalog) ByID(ctx context.Context, id int64) (Barber, bool) {
	for _, b := range c.FetchAll(ctx) {
		if b.ID == id {
			return b, true
		}
	}
	return Barber{}, false
}

// ByName finds a barber by case-insensitive exact name after trimming.
func (c *Catalog) ByName(ctx context.Context, name string) (Barber, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, b := range c.FetchAll(ctx) {
		if strings.ToLower(strings.TrimSpace(b.Name)) == want {
			return b, true
		}
	}
	return Barber{}, false
}

// ServicesOf lists the services of a barber, or nil when unknown.
func (c *Catalog) ServicesOf(ctx context.Context, id int64) []string {
	b, ok := c.ByID(ctx, id)
	if !ok {
		return nil
	}
	return b.Services
}

// SlotsOf lists the normalized available slots of a barber.
func (c *Catalog) SlotsOf(ctx context.Context, id int64) []string {
	b, ok := c.ByID(ctx, id)
	if !ok {
		return nil
	}
	return b.DisplaySlots()
}
