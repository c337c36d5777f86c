package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/update"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const entityColumns = `id, kind, name, owner_id, qr_code, unique_code,
	current_latitude, current_longitude, current_location_name, current_location_type, current_last_updated,
	total_distance, is_online, is_tracking, is_active, version, created_at`

const locationColumns = `id, entity_id, seq, latitude, longitude, location_name, location_type,
	accuracy, speed, heading, distance_from_last, recorded_at`

type DefaultPrimary struct {
	db *gorm.DB
}

func NewDefaultPrimary(dsn string) (*DefaultPrimary, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	return &DefaultPrimary{db: db}, nil
}

func persistence(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrNotFound
	}
	return &types.PersistenceError{Op: op, Err: err}
}

func (s *DefaultPrimary) entityQuery(db *gorm.DB, ref types.EntityRef) *gorm.DB {
	q := db.Table("tracked_entity").Select(entityColumns).Where("id = ?", ref.ID)
	if ref.Kind != "" {
		q = q.Where("kind = ?", ref.Kind)
	}
	return q
}

func (s *DefaultPrimary) GetEntity(ref types.EntityRef) (out.Entity, error) {
	if _, err := uuid.Parse(ref.ID); err != nil {
		return out.Entity{}, types.ErrNotFound
	}

	var entity out.Entity
	if err := s.entityQuery(s.db, ref).Take(&entity).Error; err != nil {
		return out.Entity{}, persistence("get entity", err)
	}
	return entity, nil
}

func (s *DefaultPrimary) GetEntityByCode(code string) (out.Entity, error) {
	var entity out.Entity

	err := s.db.Table("tracked_entity").Select(entityColumns).
		Where("kind = ? AND qr_code = ?", types.EntityKindDevice, code).
		Take(&entity).Error
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return out.Entity{}, persistence("get device by code", err)
	}

	err = s.db.Table("tracked_entity").Select(entityColumns).
		Where("kind = ? AND (qr_code = ? OR unique_code = ?)", types.EntityKindUser, code, code).
		Take(&entity).Error
	if err != nil {
		return out.Entity{}, persistence("get user by code", err)
	}
	return entity, nil
}

func (s *DefaultPrimary) GetEntities(filter filter.Entities) ([]out.Entity, error) {
	var entities []out.Entity

	q := s.db.Table("tracked_entity").Select(entityColumns)

	if filter.Kind != nil {
		q = q.Where("kind = ?", *filter.Kind)
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.WithLocation {
		q = q.Where("current_latitude IS NOT NULL AND current_longitude IS NOT NULL")
	}

	if err := q.Order("created_at").Scan(&entities).Error; err != nil {
		return nil, persistence("get entities", err)
	}
	return entities, nil
}

func (s *DefaultPrimary) insertEntity(tx *gorm.DB, entity insert.Entity) (string, error) {
	if !entity.Kind.IsValid() || entity.QRCode == "" {
		return "", fmt.Errorf("вид сущности и QR-код не могут быть пустыми")
	}

	const q = `
		INSERT INTO tracked_entity (id, kind, name, owner_id, qr_code, unique_code)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id := uuid.NewString()
	if err := tx.Exec(q, id, entity.Kind, types.NormalizeName(entity.Name), entity.OwnerID, entity.QRCode, entity.UniqueCode).Error; err != nil {
		return "", persistence("add entity", err)
	}
	return id, nil
}

func (s *DefaultPrimary) AddEntity(entity insert.Entity) (string, error) {
	return s.insertEntity(s.db, entity)
}

func (s *DefaultPrimary) AddDeviceWithCode(device insert.Entity) (string, error) {
	var id string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var code out.GeneratedCode
		if err := tx.Table("generated_qr_code").
			Select("qr_code, is_used, used_by, generated_by, created_at, used_at").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("qr_code = ?", device.QRCode).
			Take(&code).Error; err != nil {
			return persistence("get generated code", err)
		}
		if code.IsUsed {
			return &types.ValidationError{Message: "QR code is already in use"}
		}

		var err error
		if id, err = s.insertEntity(tx, device); err != nil {
			return err
		}

		res := tx.Table("generated_qr_code").Where("qr_code = ?", device.QRCode).Updates(map[string]interface{}{
			"is_used": true,
			"used_by": device.OwnerID,
			"used_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return persistence("claim generated code", res.Error)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *DefaultPrimary) UpdateEntityStatus(ref types.EntityRef, update update.EntityStatus) error {
	if _, err := uuid.Parse(ref.ID); err != nil {
		return types.ErrNotFound
	}

	updates := map[string]interface{}{}
	if update.IsOnline != nil {
		updates["is_online"] = *update.IsOnline
	}
	if update.IsTracking != nil {
		updates["is_tracking"] = *update.IsTracking
	}

	q := s.db.Table("tracked_entity").Where("id = ?", ref.ID)
	if ref.Kind != "" {
		q = q.Where("kind = ?", ref.Kind)
	}

	if len(updates) == 0 {
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return persistence("count entity", err)
		}
		if count == 0 {
			return types.ErrNotFound
		}
		return nil
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return persistence("update entity status", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *DefaultPrimary) UpdateEntityLocation(ref types.EntityRef, decide LocationDecider) (out.Entity, *out.Location, error) {
	if _, err := uuid.Parse(ref.ID); err != nil {
		return out.Entity{}, nil, types.ErrNotFound
	}

	var (
		entity out.Entity
		point  *out.Location
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.entityQuery(tx, ref).Clauses(clause.Locking{Strength: "UPDATE"}).Take(&entity).Error; err != nil {
			return persistence("lock entity", err)
		}

		var last *out.Location
		var lastRows []out.Location
		if err := tx.Table("location_point").Select(locationColumns).
			Where("entity_id = ?", entity.ID).
			Order("seq DESC").
			Limit(1).
			Scan(&lastRows).Error; err != nil {
			return persistence("get last location", err)
		}
		if len(lastRows) == 1 {
			last = &lastRows[0]
		}

		change, err := decide(entity, last)
		if err != nil {
			return err
		}
		if change == nil {
			return nil
		}

		var seq int64 = 1
		if last != nil {
			seq = last.Seq + 1
		}
		newPoint := out.Location{
			ID:               uuid.NewString(),
			EntityID:         entity.ID,
			Seq:              seq,
			Latitude:         change.Point.Latitude,
			Longitude:        change.Point.Longitude,
			LocationName:     types.NormalizeName(change.Point.LocationName),
			LocationType:     change.Point.LocationType,
			Accuracy:         change.Point.Accuracy,
			Speed:            change.Point.Speed,
			Heading:          change.Point.Heading,
			DistanceFromLast: change.Point.DistanceFromLast,
			RecordedAt:       change.Point.RecordedAt,
		}

		const insertPoint = `
			INSERT INTO location_point (id, entity_id, seq, latitude, longitude, location_name, location_type,
				accuracy, speed, heading, distance_from_last, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if err := tx.Exec(insertPoint, newPoint.ID, newPoint.EntityID, newPoint.Seq, newPoint.Latitude, newPoint.Longitude,
			newPoint.LocationName, newPoint.LocationType, newPoint.Accuracy, newPoint.Speed, newPoint.Heading,
			newPoint.DistanceFromLast, newPoint.RecordedAt).Error; err != nil {
			return persistence("add location", err)
		}

		updates := map[string]interface{}{
			"current_latitude":      change.Latitude,
			"current_longitude":     change.Longitude,
			"current_location_name": types.NormalizeName(change.LocationName),
			"current_location_type": change.LocationType,
			"current_last_updated":  change.LastUpdated,
			"total_distance":        gorm.Expr("total_distance + ?", change.DistanceIncrement),
			"is_online":             true,
			"version":               gorm.Expr("version + 1"),
		}
		if change.IsTracking != nil {
			updates["is_tracking"] = *change.IsTracking
		}

		res := tx.Table("tracked_entity").Where("id = ? AND version = ?", entity.ID, entity.Version).Updates(updates)
		if res.Error != nil {
			return persistence("update entity location", res.Error)
		}
		if res.RowsAffected != 1 {
			return &types.PersistenceError{Op: "update entity location", Err: fmt.Errorf("версия сущности %s изменилась", entity.ID)}
		}

		if err := s.entityQuery(tx, ref).Take(&entity).Error; err != nil {
			return persistence("reload entity", err)
		}
		point = &newPoint
		return nil
	})
	if err != nil {
		return out.Entity{}, nil, err
	}

	return entity, point, nil
}

func (s *DefaultPrimary) GetLocations(filter filter.Locations) ([]out.Location, error) {
	var locations []out.Location

	sub := s.db.Table("location_point").Select(locationColumns).Where("entity_id = ?", filter.EntityID)

	if filter.Since != nil {
		sub = sub.Where("recorded_at > ?", *filter.Since)
	}
	if filter.Start != nil {
		sub = sub.Where("recorded_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		sub = sub.Where("recorded_at <= ?", *filter.End)
	}

	if filter.Limit > 0 {
		if filter.TakeLatest {
			sub = sub.Order("recorded_at DESC, seq DESC")
		} else {
			sub = sub.Order("recorded_at, seq")
		}
		sub = sub.Limit(filter.Limit)
	}

	q := s.db.Table("(?) AS selected", sub).
		Select(locationColumns).
		Order("recorded_at, seq")

	if err := q.Scan(&locations).Error; err != nil {
		return nil, persistence("get locations", err)
	}
	return locations, nil
}

func (s *DefaultPrimary) GetUnnamedLocations(filter filter.UnnamedLocations) ([]out.Location, error) {
	var locations []out.Location

	q := s.db.Table("location_point").Select(locationColumns).Where("location_name IS NULL")
	if filter.EntityID != nil {
		q = q.Where("entity_id = ?", *filter.EntityID)
	}
	q = q.Order("recorded_at, seq")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	if err := q.Scan(&locations).Error; err != nil {
		return nil, persistence("get unnamed locations", err)
	}
	return locations, nil
}

// UpdateLocationName заполняет только отсутствующее название; остальные поля точки неизменны.
func (s *DefaultPrimary) UpdateLocationName(id string, name string) error {
	if name == "" {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Table("location_point").Where("id = ? AND location_name IS NULL", id).Update("location_name", name)
		if res.Error != nil {
			return persistence("update location name", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		// снимок синхронизирован с последней точкой истории
		return tx.Exec(`
			UPDATE tracked_entity e SET current_location_name = ?
			FROM location_point p
			WHERE p.id = ? AND e.id = p.entity_id AND e.current_location_name IS NULL
				AND p.seq = (SELECT MAX(seq) FROM location_point WHERE entity_id = p.entity_id)
		`, name, id).Error
	})
}

func (s *DefaultPrimary) IsCodeTaken(code string) (bool, error) {
	var count int64

	if err := s.db.Table("generated_qr_code").Where("qr_code = ?", code).Count(&count).Error; err != nil {
		return false, persistence("check generated code", err)
	}
	if count > 0 {
		return true, nil
	}

	if err := s.db.Table("tracked_entity").Where("qr_code = ? OR unique_code = ?", code, code).Count(&count).Error; err != nil {
		return false, persistence("check entity code", err)
	}
	return count > 0, nil
}

func (s *DefaultPrimary) AddGeneratedCodes(codes []insert.GeneratedCode) error {
	if len(codes) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, code := range codes {
			if err := tx.Exec("INSERT INTO generated_qr_code (qr_code, generated_by) VALUES (?, ?)", code.QRCode, code.GeneratedBy).Error; err != nil {
				return persistence("add generated code", err)
			}
		}
		return nil
	})
}

func (s *DefaultPrimary) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
