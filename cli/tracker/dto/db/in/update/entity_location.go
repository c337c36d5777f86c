package update

import (
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

// EntityLocation описывает одно принятое обновление: новый снимок, прирост
// пробега и точку истории. Всё применяется одной транзакцией.
type EntityLocation struct {
	Latitude          float64
	Longitude         float64
	LocationName      *string
	LocationType      types.LocationType
	LastUpdated       time.Time
	DistanceIncrement float64
	IsTracking        *bool
	Point             insert.Location
}
