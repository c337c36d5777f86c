package domain

import (
	"context"
	"errors"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	cron "github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const DefaultFillLocationNamesBatch = 100

type FillResult struct {
	Named  int
	Failed int
}

// FillLocationNames дописывает названия точкам истории, для которых их не удалось получить сразу.
// Неудача геокодера оставляет точку без названия.
type FillLocationNames struct {
	PrimaryRepository PrimaryRepository
	Geocoder          Geocoder
	Batch             int

	cronScheduler *cron.Cron
}

func (d *FillLocationNames) batch() int {
	if d.Batch <= 0 {
		return DefaultFillLocationNamesBatch
	}
	return d.Batch
}

func (d *FillLocationNames) fill(ctx context.Context, locations []out.Location) (FillResult, error) {
	var result FillResult
	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name, err := d.Geocoder.ReverseGeocode(ctx, location.Position())
		if err != nil || name == "" {
			result.Failed++
			log.WithFields(log.Fields{"location_id": location.ID, "err": err}).Debug("Название точки не определено")
			continue
		}

		if err := d.PrimaryRepository.UpdateLocationName(location.ID, name); err != nil {
			return result, err
		}
		result.Named++
	}
	return result, nil
}

// RunByCode обрабатывает всю историю сущности с указанным кодом и возвращает её целиком.
func (d *FillLocationNames) RunByCode(ctx context.Context, code string) (out.Entity, []out.Location, FillResult, error) {
	entity, err := d.PrimaryRepository.GetEntityByCode(code)
	if err != nil {
		return out.Entity{}, nil, FillResult{}, err
	}

	var result FillResult
	if d.Geocoder != nil {
		unnamed, err := d.PrimaryRepository.GetUnnamedLocations(&entity.ID, 0)
		if err != nil {
			return out.Entity{}, nil, FillResult{}, err
		}
		if result, err = d.fill(ctx, unnamed); err != nil {
			return out.Entity{}, nil, result, err
		}
	}

	history, err := d.PrimaryRepository.GetAllLocations(entity.ID)
	if err != nil {
		return out.Entity{}, nil, result, err
	}
	return entity, history, result, nil
}

// Run обрабатывает одну пачку безымянных точек всех сущностей.
func (d *FillLocationNames) Run(ctx context.Context) (FillResult, error) {
	if d.Geocoder == nil {
		return FillResult{}, nil
	}

	unnamed, err := d.PrimaryRepository.GetUnnamedLocations(nil, d.batch())
	if err != nil {
		return FillResult{}, err
	}
	return d.fill(ctx, unnamed)
}

func (d *FillLocationNames) Schedule(spec string) error {
	if spec == "" {
		return errors.New("не задано расписание заполнения названий")
	}

	d.cronScheduler = cron.New()
	_, err := d.cronScheduler.AddFunc(spec, func() {
		log.Info("Запуск запланированного заполнения названий мест")
		result, err := d.Run(context.Background())
		if err != nil {
			log.WithField("err", err).Error("Ошибка заполнения названий мест")
			return
		}
		log.WithFields(log.Fields{"named": result.Named, "failed": result.Failed}).Info("Заполнение названий мест завершено")
	})
	if err != nil {
		return err
	}

	d.cronScheduler.Start()
	log.WithField("schedule", spec).Info("Запланировано заполнение названий мест")
	return nil
}

func (d *FillLocationNames) Shutdown() {
	if d.cronScheduler != nil {
		<-d.cronScheduler.Stop().Done()
		log.Info("Cron-планировщик остановлен")
	}
}
