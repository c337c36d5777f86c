package domain

import (
	"strings"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
)

type RegisterEntity struct {
	PrimaryRepository PrimaryRepository
	Generator         *CodeGenerator
}

// RunUser создаёт пользователя с новым уникальным кодом; он же служит QR-кодом.
func (d *RegisterEntity) RunUser(name string) (out.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return out.Entity{}, &types.ValidationError{Message: "name is required"}
	}

	code, err := d.Generator.Generate(AlphanumericUpper)
	if err != nil {
		return out.Entity{}, err
	}

	id, err := d.PrimaryRepository.AddUser(name, code)
	if err != nil {
		return out.Entity{}, err
	}

	log.WithField("entity_id", id).Info("Зарегистрирован пользователь")
	return d.PrimaryRepository.GetEntity(types.UserRef(id))
}

// RunDevice привязывает к пользователю устройство по ранее сгенерированному неиспользованному QR-коду.
func (d *RegisterEntity) RunDevice(ownerID string, name *string, qrCode string) (out.Entity, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return out.Entity{}, &types.ValidationError{Message: "qrCode is required"}
	}
	if _, err := d.PrimaryRepository.GetEntity(types.UserRef(ownerID)); err != nil {
		return out.Entity{}, err
	}

	id, err := d.PrimaryRepository.AddDevice(ownerID, types.NormalizeName(name), qrCode)
	if err != nil {
		return out.Entity{}, err
	}

	log.WithFields(log.Fields{"entity_id": id, "owner_id": ownerID}).Info("Зарегистрировано устройство")
	return d.PrimaryRepository.GetEntity(types.DeviceRef(id))
}

type GetDevices struct {
	PrimaryRepository PrimaryRepository
}

func (d *GetDevices) Run(ownerID string) ([]out.Entity, error) {
	if _, err := d.PrimaryRepository.GetEntity(types.UserRef(ownerID)); err != nil {
		return nil, err
	}
	return d.PrimaryRepository.GetDevicesByOwner(ownerID)
}
