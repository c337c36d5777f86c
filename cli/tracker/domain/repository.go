package domain

import (
	"context"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/source"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

// PrimaryRepository реализуется repository.Primary.
type PrimaryRepository interface {
	GetEntity(ref types.EntityRef) (out.Entity, error)
	GetEntityByCode(code string) (out.Entity, error)
	GetDevicesByOwner(ownerID string) ([]out.Entity, error)
	GetLocatedEntities(kind types.EntityKind) ([]out.Entity, error)
	AddUser(name string, code string) (string, error)
	AddDevice(ownerID string, name *string, qrCode string) (string, error)
	MarkOffline(ref types.EntityRef) error
	UpdateEntityLocation(ref types.EntityRef, decide source.LocationDecider) (out.Entity, *out.Location, error)
	GetAllLocations(entityID string) ([]out.Location, error)
	GetLocations(filter filter.Locations) ([]out.Location, error)
	GetUnnamedLocations(entityID *string, limit int) ([]out.Location, error)
	UpdateLocationName(locationID string, name string) error
	IsCodeTaken(code string) (bool, error)
	AddGeneratedCodes(codes []string, generatedBy string) error
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, position types.Position2D) (string, error)
}

// Publisher получает принятые обновления; реализуется storage.AsyncRepository.
type Publisher interface {
	Save(interface{ ToBytes() ([]byte, error) }) error
}
