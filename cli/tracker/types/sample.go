package types

// Sample описывает входящее местоположение от клиента. Accuracy, Speed и Heading носят
// описательный характер и в вычислениях не участвуют.
type Sample struct {
	Latitude     *float64
	Longitude    *float64
	LocationName *string
	Accuracy     *float64
	Speed        *float64
	Heading      *float64
	IsTracking   *bool
	LocationType *LocationType
}

func (s Sample) Validate() error {
	if s.Latitude == nil || s.Longitude == nil {
		return &ValidationError{Message: "latitude and longitude are required"}
	}
	if !s.Position().IsValid() {
		return &ValidationError{Message: "latitude and longitude are out of range"}
	}
	if s.LocationType != nil && !s.LocationType.IsValid() {
		return &ValidationError{Message: "locationType must be manual or gps"}
	}
	return nil
}

// Position вызывать только после успешной Validate.
func (s Sample) Position() Position2D {
	return Position2D{Latitude: *s.Latitude, Longitude: *s.Longitude}
}

// NormalizeName приводит пустую строку к nil.
func NormalizeName(name *string) *string {
	if name == nil || *name == "" {
		return nil
	}
	return name
}
