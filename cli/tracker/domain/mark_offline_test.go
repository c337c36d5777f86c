package domain

import (
	"context"
	"testing"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkOffline_KeepsDistanceAndHistory(t *testing.T) {
	repo := newTestRepository()
	id := addUser(t, repo, "USER1")
	record := RecordLocation{PrimaryRepository: repo}

	tracking := true
	sample := sampleAt(0, 0)
	sample.IsTracking = &tracking
	_, err := record.Run(context.Background(), types.UserRef(id), sample, alwaysAppend)
	require.NoError(t, err)
	before, err := record.Run(context.Background(), types.UserRef(id), sampleAt(0, 1), alwaysAppend)
	require.NoError(t, err)
	require.True(t, before.Entity.IsOnline)
	require.True(t, before.Entity.IsTracking)

	d := MarkOffline{PrimaryRepository: repo}
	for i := 0; i < 2; i++ {
		require.NoError(t, d.Run(types.UserRef(id)))
	}

	after, err := repo.GetEntity(types.UserRef(id))
	require.NoError(t, err)
	assert.False(t, after.IsOnline)
	assert.False(t, after.IsTracking)
	assert.Equal(t, before.Entity.TotalDistance, after.TotalDistance)
	assert.Equal(t, before.Entity.CurrentLocation(), after.CurrentLocation())

	history, err := repo.GetAllLocations(id)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMarkOffline_UnknownEntity(t *testing.T) {
	d := MarkOffline{PrimaryRepository: newTestRepository()}
	assert.ErrorIs(t, d.Run(types.DeviceRef("missing")), types.ErrNotFound)
}
