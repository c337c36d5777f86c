package out

import (
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

type Entity struct {
	ID                  string              `json:"id" gorm:"column:id"`
	Kind                types.EntityKind    `json:"kind"`
	Name                *string             `json:"name"`
	OwnerID             *string             `json:"owner_id"`
	QRCode              string              `json:"qr_code" gorm:"column:qr_code"`
	UniqueCode          *string             `json:"unique_code"`
	CurrentLatitude     *float64            `json:"current_latitude"`
	CurrentLongitude    *float64            `json:"current_longitude"`
	CurrentLocationName *string             `json:"current_location_name"`
	CurrentLocationType *types.LocationType `json:"current_location_type"`
	CurrentLastUpdated  *time.Time          `json:"current_last_updated"`
	TotalDistance       float64             `json:"total_distance"`
	IsOnline            bool                `json:"is_online"`
	IsTracking          bool                `json:"is_tracking"`
	IsActive            bool                `json:"is_active"`
	Version             int64               `json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
}

type CurrentLocation struct {
	Latitude     float64
	Longitude    float64
	LocationName *string
	LocationType types.LocationType
	LastUpdated  time.Time
}

func (e Entity) HasLocation() bool {
	return e.CurrentLatitude != nil && e.CurrentLongitude != nil
}

// CurrentLocation возвращает nil, пока сущность ни разу не обновляла местоположение.
func (e Entity) CurrentLocation() *CurrentLocation {
	if !e.HasLocation() {
		return nil
	}

	current := &CurrentLocation{
		Latitude:     *e.CurrentLatitude,
		Longitude:    *e.CurrentLongitude,
		LocationName: e.CurrentLocationName,
		LocationType: types.LocationTypeGPS,
	}
	if e.CurrentLocationType != nil {
		current.LocationType = *e.CurrentLocationType
	}
	if e.CurrentLastUpdated != nil {
		current.LastUpdated = *e.CurrentLastUpdated
	}
	return current
}

func (e Entity) Ref() types.EntityRef {
	return types.EntityRef{ID: e.ID, Kind: e.Kind}
}
