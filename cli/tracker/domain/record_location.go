package domain

import (
	"context"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/update"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
)

var now = time.Now

type RecordOptions struct {
	Policy UpdatePolicy
	// Geocode включает обратное геокодирование, если клиент не передал название.
	Geocode bool
	// WithHistory загружает всю историю после обновления.
	WithHistory bool
}

type LocationUpdate struct {
	Entity   out.Entity
	Point    *out.Location
	Appended bool
	History  []out.Location
}

type RecordLocation struct {
	PrimaryRepository PrimaryRepository
	Geocoder          Geocoder
	Publisher         Publisher
	EventFormat       storage.Format
}

func (d *RecordLocation) Run(ctx context.Context, ref types.EntityRef, sample types.Sample, opts RecordOptions) (LocationUpdate, error) {
	if err := sample.Validate(); err != nil {
		return LocationUpdate{}, err
	}
	if _, err := d.PrimaryRepository.GetEntity(ref); err != nil {
		return LocationUpdate{}, err
	}

	return d.record(ctx, ref, sample, opts)
}

// RunByCode находит сущность по QR- или уникальному коду: сначала устройство, затем пользователя.
func (d *RecordLocation) RunByCode(ctx context.Context, code string, sample types.Sample, opts RecordOptions) (LocationUpdate, error) {
	if err := sample.Validate(); err != nil {
		return LocationUpdate{}, err
	}
	entity, err := d.PrimaryRepository.GetEntityByCode(code)
	if err != nil {
		return LocationUpdate{}, err
	}

	return d.record(ctx, entity.Ref(), sample, opts)
}

func (d *RecordLocation) resolveName(ctx context.Context, ref types.EntityRef, position types.Position2D, callerName *string, opts RecordOptions) *string {
	if callerName != nil || !opts.Geocode || d.Geocoder == nil {
		return callerName
	}

	name, err := d.Geocoder.ReverseGeocode(ctx, position)
	if err != nil {
		log.WithFields(log.Fields{"entity_id": ref.ID, "err": err}).Warn("Не удалось определить название места")
		return nil
	}
	return types.NormalizeName(&name)
}

func (d *RecordLocation) record(ctx context.Context, ref types.EntityRef, sample types.Sample, opts RecordOptions) (LocationUpdate, error) {
	position := sample.Position()
	callerName := types.NormalizeName(sample.LocationName)
	locationType := types.ResolveLocationType(sample.LocationType, callerName)
	name := d.resolveName(ctx, ref, position, callerName, opts)

	decide := func(entity out.Entity, last *out.Location) (*update.EntityLocation, error) {
		if !opts.Policy.ShouldAppend(last, position) {
			return nil, nil
		}

		delta := 0.0
		if previous := previousPosition(entity, last); previous != nil {
			delta = previous.DistanceKmTo(position)
		}
		recordedAt := now().UTC()

		return &update.EntityLocation{
			Latitude:          position.Latitude,
			Longitude:         position.Longitude,
			LocationName:      name,
			LocationType:      locationType,
			LastUpdated:       recordedAt,
			DistanceIncrement: delta,
			IsTracking:        sample.IsTracking,
			Point: insert.Location{
				EntityID:         entity.ID,
				Latitude:         position.Latitude,
				Longitude:        position.Longitude,
				LocationName:     name,
				LocationType:     locationType,
				Accuracy:         sample.Accuracy,
				Speed:            sample.Speed,
				Heading:          sample.Heading,
				DistanceFromLast: delta,
				RecordedAt:       recordedAt,
			},
		}, nil
	}

	entity, point, err := d.PrimaryRepository.UpdateEntityLocation(ref, decide)
	if err != nil {
		return LocationUpdate{}, err
	}

	result := LocationUpdate{Entity: entity, Point: point, Appended: point != nil}

	if point != nil {
		log.WithFields(log.Fields{
			"entity_id": entity.ID,
			"distance":  point.DistanceFromLast,
			"total":     entity.TotalDistance,
		}).Debug("Местоположение записано")
		d.publish(entity, *point)
	} else {
		log.WithField("entity_id", entity.ID).Debug("Координаты не изменились, точка не записана")
	}

	if opts.WithHistory {
		// Обновление к этому моменту уже зафиксировано.
		history, err := d.PrimaryRepository.GetAllLocations(entity.ID)
		if err != nil {
			log.WithFields(log.Fields{"entity_id": entity.ID, "err": err}).Warn("Не удалось загрузить историю после обновления")
			history = []out.Location{}
		}
		result.History = history
	}

	return result, nil
}

func (d *RecordLocation) publish(entity out.Entity, point out.Location) {
	if d.Publisher == nil {
		return
	}

	event := storage.LocationEvent{
		EntityID:         entity.ID,
		EntityKind:       string(entity.Kind),
		QRCode:           entity.QRCode,
		PointID:          point.ID,
		Seq:              point.Seq,
		Latitude:         point.Latitude,
		Longitude:        point.Longitude,
		LocationName:     point.LocationName,
		LocationType:     string(point.LocationType),
		Accuracy:         point.Accuracy,
		Speed:            point.Speed,
		Heading:          point.Heading,
		DistanceFromLast: point.DistanceFromLast,
		TotalDistance:    entity.TotalDistance,
		IsTracking:       entity.IsTracking,
		RecordedAt:       point.RecordedAt,
		Format:           d.EventFormat,
	}
	if err := d.Publisher.Save(event); err != nil {
		log.WithFields(log.Fields{"entity_id": entity.ID, "err": err}).Warn("Событие местоположения не отправлено на экспорт")
	}
}
