package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/defect-vision/internal/domain/analysis"
	"github.com/bryanwahyu/defect-vision/internal/domain/history"
)

func TestStore_SaveAssignsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	store := NewStore(10).WithNow(func() time.Time { return fixed })

	rec, err := store.Save(context.Background(), "https://example.com/a.jpg", "scratch on panel", nil, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "2026-03-14T15:09:26Z", rec.Timestamp)
	assert.Equal(t, "https://example.com/a.jpg", rec.ImageURL)
	assert.Equal(t, "scratch on panel", rec.Description)
}

func TestStore_FIFOEviction(t *testing.T) {
	store := NewStore(100)
	ctx := context.Background()

	var saved []history.RecordID
	for i := 0; i < 105; i++ {
		rec, err := store.Save(ctx, fmt.Sprintf("https://example.com/%d.jpg", i), "", nil, nil)
		require.NoError(t, err)
		saved = append(saved, rec.ID)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 100)

	// The survivors are the 100 most recent saves, in insertion order.
	for i, rec := range list {
		assert.Equal(t, saved[i+5], rec.ID)
	}

	// Evicted records are gone from point lookup too.
	_, err = store.Get(ctx, saved[0])
	assert.ErrorIs(t, err, history.ErrNotFound)

	_, err = store.Get(ctx, saved[104])
	assert.NoError(t, err)
}

func TestStore_GetNotFound(t *testing.T) {
	store := NewStore(10)

	_, err := store.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestStore_ListReturnsSnapshot(t *testing.T) {
	store := NewStore(10)
	ctx := context.Background()

	results := map[string]*analysis.ModelResult{
		analysis.SlotOpenAI: {Severity: "high"},
		analysis.SlotQwen:   nil,
	}
	_, err := store.Save(ctx, "https://example.com/a.jpg", "", results, map[string]float64{"openai": 1.2})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Mutating the returned slice and record must not leak into the store.
	list[0].Results[analysis.SlotOpenAI].Severity = "low"
	list[0].Runtime["openai"] = 99

	fresh, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "high", fresh[0].Results[analysis.SlotOpenAI].Severity)
	assert.Equal(t, 1.2, fresh[0].Runtime["openai"])

	// Reserved-slot nulls survive the round trip.
	val, ok := fresh[0].Results[analysis.SlotQwen]
	assert.True(t, ok)
	assert.Nil(t, val)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	store := NewStore(50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Save(ctx, fmt.Sprintf("https://example.com/%d.jpg", i), "", nil, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
