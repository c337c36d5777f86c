package request

import "github.com/daniil11ru/qrtrack/cli/tracker/types"

// UpdateLocation описывает тело запросов обновления местоположения. Координаты декодируются
// только из JSON-чисел, строки и bool отклоняются на этапе разбора.
type UpdateLocation struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	LocationName *string  `json:"locationName"`
	Accuracy     *float64 `json:"accuracy"`
	Speed        *float64 `json:"speed"`
	Heading      *float64 `json:"heading"`
	IsTracking   *bool    `json:"isTracking"`
	LocationType *string  `json:"locationType"`
}

func (r UpdateLocation) ToSample() types.Sample {
	sample := types.Sample{
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		LocationName: r.LocationName,
		Accuracy:     r.Accuracy,
		Speed:        r.Speed,
		Heading:      r.Heading,
		IsTracking:   r.IsTracking,
	}
	if r.LocationType != nil {
		lt := types.LocationType(*r.LocationType)
		sample.LocationType = &lt
	}
	return sample
}
