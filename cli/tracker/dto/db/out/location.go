package out

import (
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

type Location struct {
	ID               string             `json:"id" gorm:"column:id"`
	EntityID         string             `json:"entity_id"`
	Seq              int64              `json:"seq"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	LocationName     *string            `json:"location_name"`
	LocationType     types.LocationType `json:"location_type"`
	Accuracy         *float64           `json:"accuracy"`
	Speed            *float64           `json:"speed"`
	Heading          *float64           `json:"heading"`
	DistanceFromLast float64            `json:"distance_from_last"`
	RecordedAt       time.Time          `json:"recorded_at"`
}

func (l Location) Position() types.Position2D {
	return types.Position2D{Latitude: l.Latitude, Longitude: l.Longitude}
}
