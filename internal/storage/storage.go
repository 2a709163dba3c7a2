package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
)

const defaultMaxTraces = 64

var (
	// ErrNotFound indicates no trace is stored under the requested ID.
	ErrNotFound = errors.New("trace not found")
	// ErrNilTrace indicates an attempt to store a nil trace.
	ErrNilTrace = errors.New("trace must not be nil")
)

// Record is a stored trace. The trace must be treated as read-only.
type Record struct {
	ID        string
	Trace     *knapsack.Trace
	CreatedAt time.Time
}

// Storage keeps solved traces so viewers can page through their steps.
type Storage interface {
	Save(trace *knapsack.Trace) (Record, error)
	Get(id string) (Record, error)
	Delete(id string) error
	Len() int
}

// Option configures MemoryStorage.
type Option func(*MemoryStorage)

// WithMaxTraces bounds the number of stored traces. Values <= 0 keep the default.
func WithMaxTraces(n int) Option {
	return func(s *MemoryStorage) {
		if n > 0 {
			s.maxTraces = n
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

// WithIDGenerator overrides how record IDs are minted, primarily for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStorage) {
		s.newID = gen
	}
}

// MemoryStorage keeps traces in-memory and guards access with a RWMutex.
// When full, the oldest record is evicted.
type MemoryStorage struct {
	mu        sync.RWMutex
	records   map[string]Record
	order     []string
	maxTraces int
	clock     func() time.Time
	newID     func() string
}

// NewMemoryStorage initialises an empty store.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	s := &MemoryStorage{
		records:   make(map[string]Record),
		maxTraces: defaultMaxTraces,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID: func() string {
			return uuid.New().String()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores trace under a fresh ID.
func (s *MemoryStorage) Save(trace *knapsack.Trace) (Record, error) {
	if trace == nil {
		return Record{}, ErrNilTrace
	}

	rec := Record{
		ID:        s.newID(),
		Trace:     trace,
		CreatedAt: s.clock(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		s.removeLocked(rec.ID)
	}
	for len(s.order) >= s.maxTraces {
		s.removeLocked(s.order[0])
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	return rec, nil
}

// Get returns the record stored under id.
func (s *MemoryStorage) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete discards the record stored under id.
func (s *MemoryStorage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	s.removeLocked(id)
	return nil
}

// Len reports the number of stored records.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStorage) removeLocked(id string) {
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
