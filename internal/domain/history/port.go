package history

import (
	"context"
	"errors"

	"github.com/bryanwahyu/defect-vision/internal/domain/analysis"
)

// ErrNotFound is returned by Get for an unknown record ID. Absence is a valid
// outcome, not a server fault.
var ErrNotFound = errors.New("history record not found")

// Repository port for the bounded analysis history. There is no update or
// delete operation; records only leave the store through FIFO eviction.
type Repository interface {
	// Save assigns a fresh ID and UTC timestamp, appends the record and
	// evicts the oldest entry once the buffer exceeds its capacity.
	Save(ctx context.Context, imageURL, description string, results map[string]*analysis.ModelResult, runtime map[string]float64) (*Record, error)

	// List returns a snapshot copy in insertion order, most-recent-last.
	List(ctx context.Context) ([]*Record, error)

	// Get looks up one record by ID; ErrNotFound when absent.
	Get(ctx context.Context, id RecordID) (*Record, error)
}
