package insert

import (
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

type Location struct {
	EntityID         string             `json:"entity_id"`
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
