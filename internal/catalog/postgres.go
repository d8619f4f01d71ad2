package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	barberTable       = "barber_bookings"
	defaultSlotColumn = "available_slots"
)

type pgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PostgresStore reads barbers from the barber_bookings table. The slot column
// is discovered by name (any column containing "available" and "slot").
type PostgresStore struct {
	db pgxConn

	mu         sync.RWMutex
	slotColumn string
}

// NewPostgresStore wraps a pgx pool.
func NewPostgresStore(db pgxConn) *PostgresStore {
	if db == nil {
		panic("catalog: pgx pool cannot be nil")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListBarbers(ctx context.Context) ([]Barber, error) {
	rows, err := s.db.Query(ctx, "SELECT * FROM "+barberTable+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("catalog: list barbers: %w", err)
	}
	defer rows.Close()

	barbers, err := s.scanBarbers(rows)
	if err != nil {
		return nil, fmt.Errorf("catalog: list barbers: %w", err)
	}
	return barbers, nil
}

func (s *PostgresStore) GetBarber(ctx context.Context, id int64) (*Barber, error) {
	rows, err := s.db.Query(ctx, "SELECT * FROM "+barberTable+" WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("catalog: get barber %d: %w", id, err)
	}
	defer rows.Close()

	barbers, err := s.scanBarbers(rows)
	if err != nil {
		return nil, fmt.Errorf("catalog: get barber %d: %w", id, err)
	}
	if len(barbers) == 0 {
		return nil, ErrNotFound
	}
	return &barbers[0], nil
}

func (s *PostgresStore) UpdateSlots(ctx context.Context, id int64, slots []string) error {
	column := pgx.Identifier{s.slotColumnName()}.Sanitize()
	if slots == nil {
		slots = []string{}
	}
	tag, err := s.db.Exec(ctx, "UPDATE "+barberTable+" SET "+column+" = $1 WHERE id = $2", slots, id)
	if err != nil {
		return fmt.Errorf("catalog: update slots for barber %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) slotColumnName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.slotColumn == "" {
		return defaultSlotColumn
	}
	return s.slotColumn
}

func (s *PostgresStore) scanBarbers(rows pgx.Rows) ([]Barber, error) {
	fields := rows.FieldDescriptions()
	idIdx, nameIdx, servicesIdx, slotIdx := -1, -1, -1, -1
	for i, fd := range fields {
		name := strings.ToLower(fd.Name)
		switch {
		case name == "id":
			idIdx = i
		case name == "barber" || name == "name":
			nameIdx = i
		case name == "services":
			servicesIdx = i
		case strings.Contains(name, "available") && strings.Contains(name, "slot"):
			slotIdx = i
			s.mu.Lock()
			s.slotColumn = fd.Name
			s.mu.Unlock()
		}
	}
	if idIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("table %s is missing id or barber column", barberTable)
	}

	barbers := []Barber{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		id, err := toInt64(values[idIdx])
		if err != nil {
			return nil, fmt.Errorf("barber id: %w", err)
		}
		b := Barber{ID: id, Name: toString(values[nameIdx])}
		if servicesIdx >= 0 {
			b.Services = ParseServices(toString(values[servicesIdx]))
		}
		if slotIdx >= 0 {
			b.Slots = toStringSlice(values[slotIdx])
		}
		barbers = append(barbers, b)
	}
	return barbers, rows.Err()
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case []string:
		return strings.Join(s, ", ")
	case []any:
		parts := make([]string, 0, len(s))
		for _, p := range s {
			parts = append(parts, toString(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// toStringSlice accepts the shapes a slot column can decode to: a text array,
// a timestamp array, a JSON array in a text column or a single value.
func toStringSlice(v any) []string {
	switch s := v.(type) {
	case nil:
		return nil
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if item == nil {
				continue
			}
			out = append(out, toStringSlice(item)...)
		}
		return out
	case time.Time:
		return []string{s.Format(time.RFC3339)}
	case []time.Time:
		out := make([]string, 0, len(s))
		for _, t := range s {
			out = append(out, t.Format(time.RFC3339))
		}
		return out
	case []byte:
		return toStringSlice(string(s))
	case string:
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return nil
		}
		if strings.HasPrefix(trimmed, "[") {
			var decoded []string
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				return decoded
			}
		}
		return []string{trimmed}
	default:
		return []string{fmt.Sprint(v)}
	}
}
