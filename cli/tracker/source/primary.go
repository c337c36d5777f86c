package source

import (
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/update"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

// LocationDecider получает текущее состояние сущности и последнюю точку истории
// (nil, если истории нет) и решает, что записать. nil означает отказ от изменений.
type LocationDecider func(entity out.Entity, last *out.Location) (*update.EntityLocation, error)

type Primary interface {
	GetEntity(ref types.EntityRef) (out.Entity, error)
	GetEntityByCode(code string) (out.Entity, error)
	GetEntities(filter filter.Entities) ([]out.Entity, error)
	AddEntity(entity insert.Entity) (string, error)
	AddDeviceWithCode(device insert.Entity) (string, error)
	UpdateEntityStatus(ref types.EntityRef, update update.EntityStatus) error

	// UpdateEntityLocation выполняет чтение, решение и запись атомарно для одной сущности.
	UpdateEntityLocation(ref types.EntityRef, decide LocationDecider) (out.Entity, *out.Location, error)

	GetLocations(filter filter.Locations) ([]out.Location, error)
	GetUnnamedLocations(filter filter.UnnamedLocations) ([]out.Location, error)
	UpdateLocationName(id string, name string) error

	IsCodeTaken(code string) (bool, error)
	AddGeneratedCodes(codes []insert.GeneratedCode) error

	Close() error
}
