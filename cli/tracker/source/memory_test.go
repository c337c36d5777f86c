package source

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/update"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func appendDecider(lat, lon float64, recordedAt time.Time) LocationDecider {
	return func(entity out.Entity, last *out.Location) (*update.EntityLocation, error) {
		delta := 0.0
		if last != nil {
			delta = types.HaversineKm(last.Latitude, last.Longitude, lat, lon)
		}
		return &update.EntityLocation{
			Latitude:          lat,
			Longitude:         lon,
			LocationType:      types.LocationTypeGPS,
			LastUpdated:       recordedAt,
			DistanceIncrement: delta,
			Point: insert.Location{
				EntityID:         entity.ID,
				Latitude:         lat,
				Longitude:        lon,
				LocationType:     types.LocationTypeGPS,
				DistanceFromLast: delta,
				RecordedAt:       recordedAt,
			},
		}, nil
	}
}

func TestMemory_EntityLookup(t *testing.T) {
	m := NewMemory()

	userID, err := m.AddEntity(insert.Entity{Kind: types.EntityKindUser, Name: strPtr("Анна"), QRCode: "USERCODE", UniqueCode: strPtr("USERCODE")})
	require.NoError(t, err)
	deviceID, err := m.AddEntity(insert.Entity{Kind: types.EntityKindDevice, OwnerID: &userID, QRCode: "1234567890123456"})
	require.NoError(t, err)

	_, err = m.GetEntity(types.DeviceRef(userID))
	assert.ErrorIs(t, err, types.ErrNotFound)

	user, err := m.GetEntity(types.UserRef(userID))
	require.NoError(t, err)
	assert.Equal(t, "Анна", *user.Name)
	assert.Nil(t, user.CurrentLocation())

	byCode, err := m.GetEntityByCode("1234567890123456")
	require.NoError(t, err)
	assert.Equal(t, deviceID, byCode.ID)

	byCode, err = m.GetEntityByCode("USERCODE")
	require.NoError(t, err)
	assert.Equal(t, userID, byCode.ID)

	_, err = m.GetEntityByCode("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	devices, err := m.GetEntities(filter.Entities{OwnerID: &userID})
	require.NoError(t, err)
	assert.Len(t, devices, 1)

	taken, err := m.IsCodeTaken("USERCODE")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestMemory_UpdateEntityLocation_NoOp(t *testing.T) {
	m := NewMemory()
	id, err := m.AddEntity(insert.Entity{Kind: types.EntityKindDevice, QRCode: "1"})
	require.NoError(t, err)

	entity, point, err := m.UpdateEntityLocation(types.DeviceRef(id), func(out.Entity, *out.Location) (*update.EntityLocation, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, point)
	assert.Equal(t, int64(0), entity.Version)
	assert.False(t, entity.IsOnline)

	locations, err := m.GetLocations(filter.Locations{EntityID: id})
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestMemory_UpdateEntityLocation_DeciderErrorLeavesStateUntouched(t *testing.T) {
	m := NewMemory()
	id, err := m.AddEntity(insert.Entity{Kind: types.EntityKindUser, QRCode: "1"})
	require.NoError(t, err)

	_, _, err = m.UpdateEntityLocation(types.UserRef(id), func(out.Entity, *out.Location) (*update.EntityLocation, error) {
		return nil, fmt.Errorf("отказ")
	})
	assert.Error(t, err)

	entity, err := m.GetEntity(types.UserRef(id))
	require.NoError(t, err)
	assert.False(t, entity.HasLocation())
}

func TestMemory_ConcurrentUpdatesAreSerialized(t *testing.T) {
	m := NewMemory()
	id, err := m.AddEntity(insert.Entity{Kind: types.EntityKindUser, QRCode: "1"})
	require.NoError(t, err)

	const updates = 50
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := m.UpdateEntityLocation(types.UserRef(id), appendDecider(0, float64(i%2), base.Add(time.Duration(i)*time.Second)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entity, err := m.GetEntity(types.UserRef(id))
	require.NoError(t, err)
	assert.Equal(t, int64(updates), entity.Version)

	m.mu.RLock()
	history := append([]out.Location(nil), m.locations[id]...)
	m.mu.RUnlock()
	require.Len(t, history, updates)

	sum := 0.0
	for i := range history {
		assert.Equal(t, int64(i+1), history[i].Seq)
		if i > 0 {
			sum += history[i-1].Position().DistanceKmTo(history[i].Position())
		}
	}
	assert.InDelta(t, sum, entity.TotalDistance, 1e-9)
}

func TestMemory_GetLocations_Limit(t *testing.T) {
	m := NewMemory()
	id, err := m.AddEntity(insert.Entity{Kind: types.EntityKindUser, QRCode: "1"})
	require.NoError(t, err)

	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, _, err := m.UpdateEntityLocation(types.UserRef(id), appendDecider(float64(i), 0, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	latest, err := m.GetLocations(filter.Locations{EntityID: id, Limit: 2, TakeLatest: true})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 3.0, latest[0].Latitude)
	assert.Equal(t, 4.0, latest[1].Latitude)

	start, end := base.Add(time.Hour), base.Add(3*time.Hour)
	ranged, err := m.GetLocations(filter.Locations{EntityID: id, Start: &start, End: &end, Limit: 2})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, 1.0, ranged[0].Latitude)
	assert.Equal(t, 2.0, ranged[1].Latitude)
}

func TestMemory_UpdateLocationName(t *testing.T) {
	m := NewMemory()
	id, err := m.AddEntity(insert.Entity{Kind: types.EntityKindDevice, QRCode: "1"})
	require.NoError(t, err)

	_, point, err := m.UpdateEntityLocation(types.DeviceRef(id), appendDecider(10, 10, time.Now()))
	require.NoError(t, err)

	unnamed, err := m.GetUnnamedLocations(filter.UnnamedLocations{EntityID: &id})
	require.NoError(t, err)
	require.Len(t, unnamed, 1)

	require.NoError(t, m.UpdateLocationName(point.ID, "Москва"))
	require.NoError(t, m.UpdateLocationName(point.ID, "Другое"))

	unnamed, err = m.GetUnnamedLocations(filter.UnnamedLocations{EntityID: &id})
	require.NoError(t, err)
	assert.Empty(t, unnamed)

	entity, err := m.GetEntity(types.DeviceRef(id))
	require.NoError(t, err)
	assert.Equal(t, "Москва", *entity.CurrentLocationName)
}

func TestMemory_AddDeviceWithCode(t *testing.T) {
	m := NewMemory()
	owner := "owner-1"

	_, err := m.AddDeviceWithCode(insert.Entity{Kind: types.EntityKindDevice, OwnerID: &owner, QRCode: "0000000000000001"})
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, m.AddGeneratedCodes([]insert.GeneratedCode{{QRCode: "0000000000000001", GeneratedBy: "admin"}}))

	_, err = m.AddDeviceWithCode(insert.Entity{Kind: types.EntityKindDevice, OwnerID: &owner, QRCode: "0000000000000001"})
	require.NoError(t, err)

	_, err = m.AddDeviceWithCode(insert.Entity{Kind: types.EntityKindDevice, OwnerID: &owner, QRCode: "0000000000000001"})
	var validationErr *types.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
