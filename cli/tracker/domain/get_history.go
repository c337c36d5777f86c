package domain

import (
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

type HistoryQuery struct {
	Since *time.Time
	Start *time.Time
	End   *time.Time
	// Limit без диапазона оставляет последние точки, с диапазоном первые.
	Limit int
}

type GetHistory struct {
	PrimaryRepository PrimaryRepository
}

func (q HistoryQuery) validate() error {
	if q.Limit < 0 {
		return &types.ValidationError{Message: "limit must be a positive number"}
	}
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return &types.ValidationError{Message: "start must not be after end"}
	}
	return nil
}

func (d *GetHistory) Run(ref types.EntityRef, query HistoryQuery) ([]out.Location, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}
	entity, err := d.PrimaryRepository.GetEntity(ref)
	if err != nil {
		return nil, err
	}

	f := filter.Locations{
		EntityID: entity.ID,
		Since:    query.Since,
		Start:    query.Start,
		End:      query.End,
		Limit:    query.Limit,
	}
	f.TakeLatest = !f.HasRange()

	return d.PrimaryRepository.GetLocations(f)
}

func (d *GetHistory) RunByCode(code string) (out.Entity, []out.Location, error) {
	entity, err := d.PrimaryRepository.GetEntityByCode(code)
	if err != nil {
		return out.Entity{}, nil, err
	}

	history, err := d.PrimaryRepository.GetAllLocations(entity.ID)
	if err != nil {
		return out.Entity{}, nil, err
	}
	return entity, history, nil
}
