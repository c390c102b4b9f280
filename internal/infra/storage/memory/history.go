package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/defect-vision/internal/domain/analysis"
	"github.com/bryanwahyu/defect-vision/internal/domain/history"
)

// DefaultCapacity bounds how many analyses the store retains.
const DefaultCapacity = 100

// Store is a bounded in-memory history repository with FIFO eviction.
// Requests are served concurrently, so every buffer access is mutex-guarded.
type Store struct {
	mu       sync.Mutex
	records  []*history.Record
	index    map[history.RecordID]*history.Record
	capacity int
	now      func() time.Time
}

// NewStore creates a store with the given capacity; zero or negative means
// DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		index:    make(map[history.RecordID]*history.Record),
		capacity: capacity,
		now:      time.Now,
	}
}

// WithNow overrides the timestamp source, for tests.
func (s *Store) WithNow(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Save(ctx context.Context, imageURL, description string, results map[string]*analysis.ModelResult, runtime map[string]float64) (*history.Record, error) {
	rec := &history.Record{
		ID:          history.RecordID(uuid.New().String()),
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Description: description,
		ImageURL:    imageURL,
		Results:     cloneResults(results),
		Runtime:     cloneRuntime(runtime),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	s.index[rec.ID] = rec
	if len(s.records) > s.capacity {
		evicted := s.records[0]
		delete(s.index, evicted.ID)
		s.records = s.records[1:]
	}

	return copyRecord(rec), nil
}

func (s *Store) List(ctx context.Context) ([]*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*history.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id history.RecordID) (*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.index[id]
	if !ok {
		return nil, history.ErrNotFound
	}
	return copyRecord(rec), nil
}

// Len reports the current number of retained records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// copyRecord returns an independent copy so callers never hold references
// into the buffer.
func copyRecord(rec *history.Record) *history.Record {
	cp := *rec
	cp.Results = cloneResults(rec.Results)
	cp.Runtime = cloneRuntime(rec.Runtime)
	return &cp
}

func cloneResults(in map[string]*analysis.ModelResult) map[string]*analysis.ModelResult {
	if in == nil {
		return map[string]*analysis.ModelResult{}
	}
	out := make(map[string]*analysis.ModelResult, len(in))
	for k, v := range in {
		if v == nil {
			out[k] = nil
			continue
		}
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneRuntime(in map[string]float64) map[string]float64 {
	if in == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
