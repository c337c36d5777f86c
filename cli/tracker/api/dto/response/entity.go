package response

import (
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/domain"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

type Entity struct {
	ID              string           `json:"id"`
	Kind            types.EntityKind `json:"kind"`
	Name            *string          `json:"name"`
	OwnerID         *string          `json:"ownerId,omitempty"`
	QRCode          string           `json:"qrCode"`
	UniqueCode      *string          `json:"uniqueCode,omitempty"`
	CurrentLocation *CurrentLocation `json:"currentLocation"`
	TotalDistance   float64          `json:"totalDistance"`
	IsOnline        bool             `json:"isOnline"`
	IsTracking      bool             `json:"isTracking"`
	IsActive        bool             `json:"isActive"`
}

func NewEntity(e out.Entity) Entity {
	return Entity{
		ID:              e.ID,
		Kind:            e.Kind,
		Name:            e.Name,
		OwnerID:         e.OwnerID,
		QRCode:          e.QRCode,
		UniqueCode:      e.UniqueCode,
		CurrentLocation: NewCurrentLocation(e),
		TotalDistance:   e.TotalDistance,
		IsOnline:        e.IsOnline,
		IsTracking:      e.IsTracking,
		IsActive:        e.IsActive,
	}
}

func NewEntities(entities []out.Entity) []Entity {
	result := make([]Entity, 0, len(entities))
	for _, e := range entities {
		result = append(result, NewEntity(e))
	}
	return result
}

type CodeLocation struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName *string `json:"locationName"`
}

type CodeDetails struct {
	QRNumber  string        `json:"qrNumber"`
	ScannedBy string        `json:"scannedBy"`
	Location  *CodeLocation `json:"location"`
	Timestamp time.Time     `json:"timestamp"`
	Status    string        `json:"status"`
}

func NewCodeDetails(details domain.CodeDetails) CodeDetails {
	e := details.Entity
	result := CodeDetails{
		QRNumber:  e.QRCode,
		ScannedBy: UnknownName,
		Timestamp: e.CreatedAt,
		Status:    "inactive",
	}
	if details.ScannedBy != nil {
		result.ScannedBy = *details.ScannedBy
	}
	if current := e.CurrentLocation(); current != nil {
		result.Location = &CodeLocation{
			Latitude:     current.Latitude,
			Longitude:    current.Longitude,
			LocationName: current.LocationName,
		}
		if !current.LastUpdated.IsZero() {
			result.Timestamp = current.LastUpdated
		}
	}
	if e.IsOnline {
		result.Status = "active"
	}
	return result
}

type GeneratedCodes struct {
	Msg   string   `json:"msg"`
	Codes []string `json:"codes"`
}
