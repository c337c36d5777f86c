package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type LocationType string

const (
	LocationTypeManual LocationType = "manual"
	LocationTypeGPS    LocationType = "gps"
)

var locationTypeSet = map[LocationType]struct{}{
	LocationTypeManual: {},
	LocationTypeGPS:    {},
}

func (lt LocationType) IsValid() bool {
	_, ok := locationTypeSet[lt]
	return ok
}

func ParseLocationType(s string) (LocationType, error) {
	v := LocationType(s)
	if !v.IsValid() {
		return "", fmt.Errorf("недопустимый location_type: %q", s)
	}
	return v, nil
}

// ResolveLocationType: явное значение, иначе manual при переданном названии, иначе gps.
func ResolveLocationType(explicit *LocationType, callerName *string) LocationType {
	if explicit != nil {
		return *explicit
	}
	if callerName != nil {
		return LocationTypeManual
	}
	return LocationTypeGPS
}

func (lt *LocationType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseLocationType(s)
	if err != nil {
		return err
	}
	*lt = v
	return nil
}

func (lt LocationType) MarshalJSON() ([]byte, error) {
	if !lt.IsValid() {
		return nil, fmt.Errorf("недопустимый location_type: %q", string(lt))
	}
	return json.Marshal(string(lt))
}

func (lt *LocationType) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*lt = LocationType(string(v))
	case string:
		*lt = LocationType(v)
	default:
		return fmt.Errorf("невозможно извлечь LocationType из %T", value)
	}
	if !lt.IsValid() {
		return fmt.Errorf("недопустимый LocationType: %q", string(*lt))
	}
	return nil
}

func (lt LocationType) Value() (driver.Value, error) {
	if !lt.IsValid() {
		return nil, fmt.Errorf("недопустимый LocationType: %q", string(lt))
	}
	return string(lt), nil
}
