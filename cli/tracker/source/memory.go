package source

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/filter"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/insert"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/in/update"
	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"github.com/google/uuid"
)

var now = time.Now

// Memory хранит всё в памяти процесса. Обновления одной сущности
// сериализуются её мьютексом, разные сущности обновляются параллельно.
type Memory struct {
	mu        sync.RWMutex
	entities  map[string]*out.Entity
	locks     map[string]*sync.Mutex
	locations map[string][]out.Location
	codes     map[string]*out.GeneratedCode
}

func NewMemory() *Memory {
	return &Memory{
		entities:  make(map[string]*out.Entity),
		locks:     make(map[string]*sync.Mutex),
		locations: make(map[string][]out.Location),
		codes:     make(map[string]*out.GeneratedCode),
	}
}

func matchesRef(entity *out.Entity, ref types.EntityRef) bool {
	return entity != nil && (ref.Kind == "" || entity.Kind == ref.Kind)
}

func (m *Memory) GetEntity(ref types.EntityRef) (out.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entity, ok := m.entities[ref.ID]
	if !ok || !matchesRef(entity, ref) {
		return out.Entity{}, types.ErrNotFound
	}
	return *entity, nil
}

func (m *Memory) GetEntityByCode(code string) (out.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var user *out.Entity
	for _, entity := range m.entities {
		switch entity.Kind {
		case types.EntityKindDevice:
			if entity.QRCode == code {
				return *entity, nil
			}
		case types.EntityKindUser:
			if user == nil && (entity.QRCode == code || (entity.UniqueCode != nil && *entity.UniqueCode == code)) {
				user = entity
			}
		}
	}
	if user == nil {
		return out.Entity{}, types.ErrNotFound
	}
	return *user, nil
}

func (m *Memory) GetEntities(filter filter.Entities) ([]out.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entities := []out.Entity{}
	for _, entity := range m.entities {
		if filter.Kind != nil && entity.Kind != *filter.Kind {
			continue
		}
		if filter.OwnerID != nil && (entity.OwnerID == nil || *entity.OwnerID != *filter.OwnerID) {
			continue
		}
		if filter.WithLocation && !entity.HasLocation() {
			continue
		}
		entities = append(entities, *entity)
	}

	sort.Slice(entities, func(i, j int) bool {
		if entities[i].CreatedAt.Equal(entities[j].CreatedAt) {
			return entities[i].ID < entities[j].ID
		}
		return entities[i].CreatedAt.Before(entities[j].CreatedAt)
	})
	return entities, nil
}

func (m *Memory) codeTakenLocked(code string) bool {
	if _, ok := m.codes[code]; ok {
		return true
	}
	for _, entity := range m.entities {
		if entity.QRCode == code || (entity.UniqueCode != nil && *entity.UniqueCode == code) {
			return true
		}
	}
	return false
}

func (m *Memory) addEntityLocked(entity insert.Entity) (string, error) {
	if !entity.Kind.IsValid() || entity.QRCode == "" {
		return "", fmt.Errorf("вид сущности и QR-код не могут быть пустыми")
	}
	for _, existing := range m.entities {
		if existing.QRCode == entity.QRCode {
			return "", &types.PersistenceError{Op: "add entity", Err: fmt.Errorf("QR-код %s уже занят", entity.QRCode)}
		}
	}

	id := uuid.NewString()
	m.entities[id] = &out.Entity{
		ID:         id,
		Kind:       entity.Kind,
		Name:       types.NormalizeName(entity.Name),
		OwnerID:    entity.OwnerID,
		QRCode:     entity.QRCode,
		UniqueCode: entity.UniqueCode,
		IsActive:   true,
		CreatedAt:  now().UTC(),
	}
	m.locks[id] = &sync.Mutex{}
	return id, nil
}

func (m *Memory) AddEntity(entity insert.Entity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.addEntityLocked(entity)
}

func (m *Memory) AddDeviceWithCode(device insert.Entity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, ok := m.codes[device.QRCode]
	if !ok {
		return "", types.ErrNotFound
	}
	if code.IsUsed {
		return "", &types.ValidationError{Message: "QR code is already in use"}
	}

	id, err := m.addEntityLocked(device)
	if err != nil {
		return "", err
	}

	usedAt := now().UTC()
	code.IsUsed = true
	code.UsedBy = device.OwnerID
	code.UsedAt = &usedAt
	return id, nil
}

func (m *Memory) entityLock(ref types.EntityRef) (*sync.Mutex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entity, ok := m.entities[ref.ID]
	if !ok || !matchesRef(entity, ref) {
		return nil, types.ErrNotFound
	}
	return m.locks[ref.ID], nil
}

func (m *Memory) UpdateEntityStatus(ref types.EntityRef, update update.EntityStatus) error {
	lock, err := m.entityLock(ref)
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	entity := m.entities[ref.ID]
	if update.IsOnline != nil {
		entity.IsOnline = *update.IsOnline
	}
	if update.IsTracking != nil {
		entity.IsTracking = *update.IsTracking
	}
	return nil
}

func (m *Memory) UpdateEntityLocation(ref types.EntityRef, decide LocationDecider) (out.Entity, *out.Location, error) {
	lock, err := m.entityLock(ref)
	if err != nil {
		return out.Entity{}, nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	entity := *m.entities[ref.ID]
	var last *out.Location
	if history := m.locations[ref.ID]; len(history) > 0 {
		lastCopy := history[len(history)-1]
		last = &lastCopy
	}
	m.mu.RUnlock()

	change, err := decide(entity, last)
	if err != nil {
		return out.Entity{}, nil, err
	}
	if change == nil {
		return entity, nil, nil
	}

	var seq int64 = 1
	if last != nil {
		seq = last.Seq + 1
	}
	point := out.Location{
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

	latitude, longitude := change.Latitude, change.Longitude
	locationType := change.LocationType
	lastUpdated := change.LastUpdated

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.entities[ref.ID]
	stored.CurrentLatitude = &latitude
	stored.CurrentLongitude = &longitude
	stored.CurrentLocationName = types.NormalizeName(change.LocationName)
	stored.CurrentLocationType = &locationType
	stored.CurrentLastUpdated = &lastUpdated
	stored.TotalDistance += change.DistanceIncrement
	stored.IsOnline = true
	if change.IsTracking != nil {
		stored.IsTracking = *change.IsTracking
	}
	stored.Version++
	m.locations[ref.ID] = append(m.locations[ref.ID], point)

	return *stored, &point, nil
}

func sortLocations(locations []out.Location) {
	sort.SliceStable(locations, func(i, j int) bool {
		if locations[i].RecordedAt.Equal(locations[j].RecordedAt) {
			return locations[i].Seq < locations[j].Seq
		}
		return locations[i].RecordedAt.Before(locations[j].RecordedAt)
	})
}

func (m *Memory) GetLocations(filter filter.Locations) ([]out.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	locations := []out.Location{}
	for _, location := range m.locations[filter.EntityID] {
		if filter.Matches(location.RecordedAt) {
			locations = append(locations, location)
		}
	}
	sortLocations(locations)

	if filter.Limit > 0 && len(locations) > filter.Limit {
		if filter.TakeLatest {
			locations = locations[len(locations)-filter.Limit:]
		} else {
			locations = locations[:filter.Limit]
		}
	}
	return locations, nil
}

func (m *Memory) GetUnnamedLocations(filter filter.UnnamedLocations) ([]out.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	locations := []out.Location{}
	for entityID, history := range m.locations {
		if filter.EntityID != nil && entityID != *filter.EntityID {
			continue
		}
		for _, location := range history {
			if location.LocationName == nil {
				locations = append(locations, location)
			}
		}
	}
	sortLocations(locations)

	if filter.Limit > 0 && len(locations) > filter.Limit {
		locations = locations[:filter.Limit]
	}
	return locations, nil
}

func (m *Memory) UpdateLocationName(id string, name string) error {
	if name == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for entityID, history := range m.locations {
		for i := range history {
			if history[i].ID != id {
				continue
			}
			if history[i].LocationName != nil {
				return nil
			}
			stored := name
			history[i].LocationName = &stored

			entity := m.entities[entityID]
			if i == len(history)-1 && entity != nil && entity.CurrentLocationName == nil {
				entity.CurrentLocationName = &stored
			}
			return nil
		}
	}
	return nil
}

func (m *Memory) IsCodeTaken(code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.codeTakenLocked(code), nil
}

func (m *Memory) AddGeneratedCodes(codes []insert.GeneratedCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, code := range codes {
		if _, ok := m.codes[code.QRCode]; ok {
			return &types.PersistenceError{Op: "add generated code", Err: fmt.Errorf("код %s уже существует", code.QRCode)}
		}
	}
	for _, code := range codes {
		m.codes[code.QRCode] = &out.GeneratedCode{
			QRCode:      code.QRCode,
			GeneratedBy: code.GeneratedBy,
			CreatedAt:   now().UTC(),
		}
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
