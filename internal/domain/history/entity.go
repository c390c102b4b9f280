package history

import (
	"github.com/bryanwahyu/defect-vision/internal/domain/analysis"
)

// RecordID identifier type
type RecordID string

// Record is one immutable history entry of a completed analysis. Results keep
// the per-slot shape from the aggregate response, reserved-slot nulls
// included.
type Record struct {
	ID          RecordID                         `json:"id"`
	Timestamp   string                           `json:"timestamp"`
	Description string                           `json:"description,omitempty"`
	ImageURL    string                           `json:"image_url"`
	Results     map[string]*analysis.ModelResult `json:"results"`
	Runtime     map[string]float64               `json:"runtime"`
}
