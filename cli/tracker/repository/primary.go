package repository

import (
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/update"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/source"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

type Primary struct {
	Source source.Primary
}

func (p *Primary) GetEntity(ref types.EntityRef) (out.Entity, error) {
	return p.Source.GetEntity(ref)
}

func (p *Primary) GetEntityByCode(code string) (out.Entity, error) {
	return p.Source.GetEntityByCode(code)
}

func (p *Primary) GetDevicesByOwner(ownerID string) ([]out.Entity, error) {
	kind := types.EntityKindDevice
	return p.Source.GetEntities(filter.Entities{Kind: &kind, OwnerID: &ownerID})
}

func (p *Primary) GetLocatedEntities(kind types.EntityKind) ([]out.Entity, error) {
	return p.Source.GetEntities(filter.Entities{Kind: &kind, WithLocation: true})
}

func (p *Primary) AddUser(name string, code string) (string, error) {
	return p.Source.AddEntity(insert.Entity{
		Kind:       types.EntityKindUser,
		Name:       &name,
		QRCode:     code,
		UniqueCode: &code,
	})
}

func (p *Primary) AddDevice(ownerID string, name *string, qrCode string) (string, error) {
	return p.Source.AddDeviceWithCode(insert.Entity{
		Kind:    types.EntityKindDevice,
		Name:    name,
		OwnerID: &ownerID,
		QRCode:  qrCode,
	})
}

func (p *Primary) MarkOffline(ref types.EntityRef) error {
	offline := false
	return p.Source.UpdateEntityStatus(ref, update.EntityStatus{IsOnline: &offline, IsTracking: &offline})
}

func (p *Primary) UpdateEntityLocation(ref types.EntityRef, decide source.LocationDecider) (out.Entity, *out.Location, error) {
	return p.Source.UpdateEntityLocation(ref, decide)
}

func (p *Primary) GetAllLocations(entityID string) ([]out.Location, error) {
	return p.Source.GetLocations(filter.Locations{EntityID: entityID})
}

func (p *Primary) GetLocations(filter filter.Locations) ([]out.Location, error) {
	return p.Source.GetLocations(filter)
}

func (p *Primary) GetUnnamedLocations(entityID *string, limit int) ([]out.Location, error) {
	return p.Source.GetUnnamedLocations(filter.UnnamedLocations{EntityID: entityID, Limit: limit})
}

func (p *Primary) UpdateLocationName(locationID string, name string) error {
	return p.Source.UpdateLocationName(locationID, name)
}

func (p *Primary) IsCodeTaken(code string) (bool, error) {
	return p.Source.IsCodeTaken(code)
}

func (p *Primary) AddGeneratedCodes(codes []string, generatedBy string) error {
	rows := make([]insert.GeneratedCode, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, insert.GeneratedCode{QRCode: code, GeneratedBy: generatedBy})
	}
	return p.Source.AddGeneratedCodes(rows)
}

