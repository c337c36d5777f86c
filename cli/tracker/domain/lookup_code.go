package domain

import (
	"errors"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

type CodeDetails struct {
	Entity out.Entity
	// ScannedBy: имя владельца устройства или самого пользователя; nil, если неизвестно.
	ScannedBy *string
}

type LookupCode struct {
	PrimaryRepository PrimaryRepository
}

func (d *LookupCode) Run(code string) (CodeDetails, error) {
	entity, err := d.PrimaryRepository.GetEntityByCode(code)
	if err != nil {
		return CodeDetails{}, err
	}

	details := CodeDetails{Entity: entity}
	switch entity.Kind {
	case types.EntityKindUser:
		details.ScannedBy = entity.Name
	case types.EntityKindDevice:
		if entity.OwnerID != nil {
			owner, err := d.PrimaryRepository.GetEntity(types.UserRef(*entity.OwnerID))
			if err != nil && !errors.Is(err, types.ErrNotFound) {
				return CodeDetails{}, err
			}
			if err == nil {
				details.ScannedBy = owner.Name
			}
		}
	}
	return details, nil
}
