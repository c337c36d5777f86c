package domain

import (
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
)

type MarkOffline struct {
	PrimaryRepository PrimaryRepository
}

func (d *MarkOffline) Run(ref types.EntityRef) error {
	if err := d.PrimaryRepository.MarkOffline(ref); err != nil {
		return err
	}
	log.WithField("entity_id", ref.ID).Debug("Сущность переведена в офлайн")
	return nil
}
