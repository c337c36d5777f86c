package storage

import (
	"errors"

	"github.com/daniil11ru/qrtrack/cli/tracker/storage/store/mysql"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage/store/nats"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage/store/postgresql"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage/store/rabbitmq"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage/store/redis"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage/store/tarantool_queue"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownStorage = errors.New("хранилище не поддерживается")

type Message = interface {
	ToBytes() ([]byte, error)
}

type Store interface {
	Connector
	Saver
}

// Saver интерфейс для подключения внешних хранилищ
type Saver interface {
	// Save сохранение в хранилище
	Save(Message) error
}

// Connector интерфейс для подключения внешних хранилищ
type Connector interface {
	// Init установка соединения с хранилищем
	Init(map[string]string) error

	// Close закрытие соединения с хранилищем
	Close() error
}

// Repository набор выходных хранилищ
type Repository struct {
	storages []Saver
}

func NewRepository() *Repository {
	return &Repository{}
}

// AddStore добавляет хранилище для сохранения данных
func (r *Repository) AddStore(s Saver) {
	r.storages = append(r.storages, s)
}

func (r *Repository) Len() int {
	return len(r.storages)
}

// Save отправляет событие во все хранилища; ошибка одного не мешает остальным.
func (r *Repository) Save(m Message) error {
	var errs []error
	for _, store := range r.storages {
		if err := store.Save(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadStorages загружает хранилища из структуры конфига
func (r *Repository) LoadStorages(storages map[string]map[string]string) error {
	for name, params := range storages {
		db, err := newStore(name)
		if err != nil {
			return err
		}

		if err := db.Init(params); err != nil {
			return err
		}

		log.WithField("store", name).Info("Хранилище для экспорта событий подключено")
		r.AddStore(db)
	}
	return nil
}

func newStore(name string) (Store, error) {
	switch name {
	case "rabbitmq":
		return &rabbitmq.Connector{}, nil
	case "postgresql":
		return &postgresql.Connector{}, nil
	case "nats":
		return &nats.Connector{}, nil
	case "tarantool_queue":
		return &tarantool_queue.Connector{}, nil
	case "redis":
		return &redis.Connector{}, nil
	case "mysql":
		return &mysql.Connector{}, nil
	default:
		return nil, ErrUnknownStorage
	}
}

// Close закрывает все хранилища, которые держат соединение.
func (r *Repository) Close() error {
	var errs []error
	for _, store := range r.storages {
		if c, ok := store.(Connector); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
