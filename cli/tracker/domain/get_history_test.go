package domain

import (
	"context"
	"testing"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHistory записывает точки с широтами 0..n-1; точка i получает время start+(i+1) минут.
func seedHistory(t *testing.T, n int, start time.Time) (*GetHistory, string) {
	t.Helper()
	repo := newTestRepository()
	id := addUser(t, repo, "USER1")
	withClock(t, start)

	d := RecordLocation{PrimaryRepository: repo}
	for i := 0; i < n; i++ {
		_, err := d.Run(context.Background(), types.UserRef(id), sampleAt(float64(i), 0), alwaysAppend)
		require.NoError(t, err)
	}
	return &GetHistory{PrimaryRepository: repo}, id
}

func latitudes(t *testing.T, d *GetHistory, id string, q HistoryQuery) []float64 {
	t.Helper()
	history, err := d.Run(types.UserRef(id), q)
	require.NoError(t, err)

	result := make([]float64, 0, len(history))
	for i, p := range history {
		if i > 0 {
			assert.False(t, p.RecordedAt.Before(history[i-1].RecordedAt), "history is ascending")
		}
		result = append(result, p.Latitude)
	}
	return result
}

func TestGetHistory_Filters(t *testing.T) {
	start := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	d, id := seedHistory(t, 6, start)

	at := func(minutes int) *time.Time {
		v := start.Add(time.Duration(minutes) * time.Minute)
		return &v
	}

	tests := []struct {
		name     string
		query    HistoryQuery
		expected []float64
	}{
		{name: "everything", query: HistoryQuery{}, expected: []float64{0, 1, 2, 3, 4, 5}},
		{name: "limit keeps most recent", query: HistoryQuery{Limit: 2}, expected: []float64{4, 5}},
		{name: "limit above size", query: HistoryQuery{Limit: 100}, expected: []float64{0, 1, 2, 3, 4, 5}},
		{name: "range is inclusive", query: HistoryQuery{Start: at(2), End: at(4)}, expected: []float64{1, 2, 3}},
		{name: "range with limit keeps first", query: HistoryQuery{Start: at(2), End: at(5), Limit: 2}, expected: []float64{1, 2}},
		{name: "open end", query: HistoryQuery{Start: at(5)}, expected: []float64{4, 5}},
		{name: "since is strict", query: HistoryQuery{Since: at(4)}, expected: []float64{4, 5}},
		{name: "range outside history", query: HistoryQuery{Start: at(100), End: at(200)}, expected: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, latitudes(t, d, id, tt.query))
		})
	}
}

func TestGetHistory_EmptyHistory(t *testing.T) {
	repo := newTestRepository()
	id := addUser(t, repo, "USER1")
	d := GetHistory{PrimaryRepository: repo}

	history, err := d.Run(types.UserRef(id), HistoryQuery{Limit: 100})
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestGetHistory_Errors(t *testing.T) {
	repo := newTestRepository()
	id := addUser(t, repo, "USER1")
	d := GetHistory{PrimaryRepository: repo}

	_, err := d.Run(types.UserRef("missing"), HistoryQuery{})
	assert.ErrorIs(t, err, types.ErrNotFound)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err = d.Run(types.UserRef(id), HistoryQuery{Start: &start, End: &end})
	var validationErr *types.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = d.Run(types.UserRef(id), HistoryQuery{Limit: -1})
	assert.ErrorAs(t, err, &validationErr)

	_, _, err = d.RunByCode("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetHistory_RunByCode(t *testing.T) {
	d, id := seedHistory(t, 3, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))

	entity, history, err := d.RunByCode("USER1")
	require.NoError(t, err)
	assert.Equal(t, id, entity.ID)
	assert.Len(t, history, 3)
}
