package types

import (
	"database/sql/driver"
	"fmt"
)

type EntityKind string

const (
	EntityKindUser   EntityKind = "user"
	EntityKindDevice EntityKind = "device"
)

func (k EntityKind) IsValid() bool {
	return k == EntityKindUser || k == EntityKindDevice
}

func (k *EntityKind) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*k = EntityKind(string(v))
	case string:
		*k = EntityKind(v)
	default:
		return fmt.Errorf("невозможно извлечь EntityKind из %T", value)
	}
	if !k.IsValid() {
		return fmt.Errorf("недопустимый EntityKind: %q", string(*k))
	}
	return nil
}

func (k EntityKind) Value() (driver.Value, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("недопустимый EntityKind: %q", string(k))
	}
	return string(k), nil
}

// EntityRef указывает на отслеживаемую сущность. Пустой Kind означает любой вид.
type EntityRef struct {
	ID   string
	Kind EntityKind
}

func UserRef(id string) EntityRef {
	return EntityRef{ID: id, Kind: EntityKindUser}
}

func DeviceRef(id string) EntityRef {
	return EntityRef{ID: id, Kind: EntityKindDevice}
}

func (r EntityRef) String() string {
	if r.Kind == "" {
		return r.ID
	}
	return string(r.Kind) + ":" + r.ID
}
