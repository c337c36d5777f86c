package domain

import (
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

// ListLocations возвращает сущности заданного вида, у которых есть текущее местоположение.
type ListLocations struct {
	PrimaryRepository PrimaryRepository
}

func (d *ListLocations) Run(kind types.EntityKind) ([]out.Entity, error) {
	return d.PrimaryRepository.GetLocatedEntities(kind)
}
