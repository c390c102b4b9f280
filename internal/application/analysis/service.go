package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/defect-vision/internal/domain/analysis"
	"github.com/bryanwahyu/defect-vision/internal/domain/history"
)

// Models selects which model identifier serves each implemented slot.
type Models struct {
	OpenAI string // openai slot, e.g. gpt-4o
	GPT41  string // gpt4_1 slot
}

// Clock abstraction for testable timing
type Clock interface {
	Now() time.Time
}

// Service implements the analyze use case: fan the request out to every
// implemented provider slot, time each one, persist the aggregate and return
// it. Service is safe for concurrent use.
//
// Provider may be nil when no credential is configured at startup; the
// service then fills implemented slots with an initialization error instead
// of invoking anything.
type Service struct {
	Provider domain.Provider
	Models   Models
	History  history.Repository
	Clock    Clock
	Log      *zap.Logger
}

const errAdapterNotInitialized = "openai adapter not initialized, check API key configuration"

// Analyze handles one analyze request. Everything below this boundary is
// recovered: provider failures become error-tagged slot results and a history
// write failure is logged and dropped. The returned response always carries
// all five slots plus per-slot runtimes.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (*domain.Response, error) {
	resp := &domain.Response{Runtime: make(map[string]float64)}

	slots := []struct {
		name  string
		model string
		dst   **domain.ModelResult
	}{
		{domain.SlotOpenAI, s.Models.OpenAI, &resp.OpenAI},
		{domain.SlotGPT41, s.Models.GPT41, &resp.GPT41},
	}

	if s.Provider == nil {
		for _, slot := range slots {
			*slot.dst = &domain.ModelResult{Error: errAdapterNotInitialized}
			resp.Runtime[slot.name] = 0
		}
	} else {
		// The slots have no data dependency on each other, so run them
		// concurrently and join before assembling the response.
		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, slot := range slots {
			wg.Add(1)
			go func() {
				defer wg.Done()
				start := s.Clock.Now()
				res, err := s.Provider.Analyze(ctx, slot.model, req)
				elapsed := s.Clock.Now().Sub(start).Seconds()
				if err != nil {
					s.Log.Warn("model analysis failed",
						zap.String("slot", slot.name),
						zap.String("model", slot.model),
						zap.Error(err),
					)
					res = domain.ModelResult{Error: fmt.Sprintf("%s analysis failed: %v", slot.name, err)}
				}
				mu.Lock()
				*slot.dst = &res
				resp.Runtime[slot.name] = elapsed
				mu.Unlock()
			}()
		}
		wg.Wait()
	}

	// gemini, qwen and llama stay nil: present in the shape, explicitly null,
	// never error objects.

	if s.History != nil {
		if _, err := s.History.Save(ctx, req.ImageURL, req.Description, resp.Results(), resp.Runtime); err != nil {
			s.Log.Warn("failed to save analysis to history", zap.Error(err))
		}
	}

	return resp, nil
}

// History lists all retained records, oldest first.
func (s *Service) ListHistory(ctx context.Context) ([]*history.Record, error) {
	return s.History.List(ctx)
}

// GetHistory looks up one record; history.ErrNotFound when absent.
func (s *Service) GetHistory(ctx context.Context, id history.RecordID) (*history.Record, error) {
	return s.History.Get(ctx, id)
}
