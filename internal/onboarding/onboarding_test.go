package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/storage/memory"
)

func TestStateClamping(t *testing.T) {
	s := New()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 4, s.Total)

	assert.Equal(t, 1, s.Back().Page, "back stops at the first page")

	for i := 0; i < 10; i++ {
		s = s.Next()
	}
	assert.Equal(t, 5, s.Page, "next stops one past the last page")
	assert.True(t, s.Done())
	_, ok := s.Current()
	assert.False(t, ok)

	s = s.Back()
	assert.Equal(t, 4, s.Page)
	assert.False(t, s.Done())
	page, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Create Groups", page.Title)

	assert.Equal(t, 1, s.Reset().Page)
	assert.True(t, New().Skip().Done())
}

func TestStateProgress(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  float64
	}{
		{"first page", State{Page: 1, Total: 4}, 0.25},
		{"last page", State{Page: 4, Total: 4}, 1},
		{"done", State{Page: 5, Total: 4}, 1},
		{"no pages", State{Page: 1, Total: 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.state.Progress(), 1e-9)
		})
	}
}

func TestTrackerPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tracker := NewTracker(store)

	s, err := tracker.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, New(), s)

	s, err = tracker.Apply(ctx, State.Next)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Page)

	s, err = tracker.Apply(ctx, State.Next)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Page)

	loaded, err := NewTracker(store).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Page)

	require.NoError(t, store.PutSetting(ctx, SettingKey, "99"))
	loaded, err = tracker.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Page)

	require.NoError(t, store.PutSetting(ctx, SettingKey, "garbage"))
	loaded, err = tracker.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Page)
}
