package response

import (
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

const (
	// PendingName подставляется в историю вместо отсутствующего названия.
	PendingName = "Future"
	UnknownName = "Unknown"
)

type CurrentLocation struct {
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	LocationName *string            `json:"locationName"`
	LocationType types.LocationType `json:"locationType"`
	LastUpdated  time.Time          `json:"lastUpdated"`
}

func NewCurrentLocation(entity out.Entity) *CurrentLocation {
	current := entity.CurrentLocation()
	if current == nil {
		return nil
	}
	return &CurrentLocation{
		Latitude:     current.Latitude,
		Longitude:    current.Longitude,
		LocationName: current.LocationName,
		LocationType: current.LocationType,
		LastUpdated:  current.LastUpdated,
	}
}

// Location: точка истории в ответах /locations/history и /devices/:id/history.
type Location struct {
	ID               string             `json:"id"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	LocationName     *string            `json:"locationName"`
	LocationType     types.LocationType `json:"locationType"`
	Accuracy         *float64           `json:"accuracy,omitempty"`
	Speed            *float64           `json:"speed,omitempty"`
	Heading          *float64           `json:"heading,omitempty"`
	DistanceFromLast float64            `json:"distanceFromLast"`
	Timestamp        time.Time          `json:"timestamp"`
}

func NewLocations(locations []out.Location) []Location {
	result := make([]Location, 0, len(locations))
	for _, l := range locations {
		result = append(result, Location{
			ID:               l.ID,
			Latitude:         l.Latitude,
			Longitude:        l.Longitude,
			LocationName:     l.LocationName,
			LocationType:     l.LocationType,
			Accuracy:         l.Accuracy,
			Speed:            l.Speed,
			Heading:          l.Heading,
			DistanceFromLast: l.DistanceFromLast,
			Timestamp:        l.RecordedAt,
		})
	}
	return result
}

// HistoryPoint: точка истории в ответах маршрутов /qrcodes.
type HistoryPoint struct {
	ID           string    `json:"id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	LocationName string    `json:"locationName"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func NewHistory(locations []out.Location, placeholder string) []HistoryPoint {
	result := make([]HistoryPoint, 0, len(locations))
	for _, l := range locations {
		name := placeholder
		if l.LocationName != nil {
			name = *l.LocationName
		}
		result = append(result, HistoryPoint{
			ID:           l.ID,
			Latitude:     l.Latitude,
			Longitude:    l.Longitude,
			LocationName: name,
			LastUpdated:  l.RecordedAt,
		})
	}
	return result
}

type LocationUpdated struct {
	Msg             string           `json:"msg"`
	CurrentLocation *CurrentLocation `json:"currentLocation"`
	TotalDistance   float64          `json:"totalDistance"`
	IsTracking      bool             `json:"isTracking"`
}

type QRLocationUpdated struct {
	Message         string         `json:"message"`
	QRCode          string         `json:"qrCode"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	LocationName    *string        `json:"locationName"`
	LastUpdated     time.Time      `json:"lastUpdated"`
	TotalDistance   float64        `json:"totalDistance"`
	Appended        bool           `json:"appended"`
	LocationHistory []HistoryPoint `json:"locationHistory"`
}

type QRHistory struct {
	QRCode          string         `json:"qrCode"`
	LocationHistory []HistoryPoint `json:"locationHistory"`
}

type LocationNamesFixed struct {
	Message         string         `json:"message"`
	Named           int            `json:"named"`
	Failed          int            `json:"failed"`
	LocationHistory []HistoryPoint `json:"locationHistory"`
}
