package types

import "math"

const EarthRadiusKm = 6371.0

type Position2D struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineKm возвращает расстояние по дуге большого круга в километрах.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Для почти антиподальных точек округление выводит a за пределы [0, 1].
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func (p Position2D) DistanceKmTo(position Position2D) float64 {
	return HaversineKm(p.Latitude, p.Longitude, position.Latitude, position.Longitude)
}

// EqualsTo сравнивает координаты точно, без допуска.
func (p Position2D) EqualsTo(position Position2D) bool {
	return p.Latitude == position.Latitude && p.Longitude == position.Longitude
}

func (p Position2D) IsValid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) || math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}
