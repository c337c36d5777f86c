package postgresql

/*
Экспорт событий местоположения в таблицу PostgreSQL. Событие пишется одним
значением (JSON, msgpack или protobuf) в колонку event_data_field_name.

host = "localhost"
port = "5432"
user = "postgres"
password = "postgres"
database = "tracker_export"
table = "location_event"
event_data_field_name = "event_data"   # по умолчанию event_data
sslmode = "disable"
create_table = "true"                  # необязательно
*/

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const defaultEventField = "event_data"

type Connector struct {
	connection *sql.DB
	insert     *sql.Stmt
}

func statements(cfg map[string]string) (create, insert string, err error) {
	if cfg["table"] == "" {
		return "", "", errors.New("не задана таблица для экспорта событий")
	}
	field := cfg["event_data_field_name"]
	if field == "" {
		log.Warnf("Ключ 'event_data_field_name' не задан, используется '%s'", defaultEventField)
		field = defaultEventField
	}

	table := pq.QuoteIdentifier(cfg["table"])
	column := pq.QuoteIdentifier(field)

	create = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		%s BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, table, column)
	insert = fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1)", table, column)
	return create, insert, nil
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return errors.New("некорректная ссылка на конфигурацию")
	}
	createQuery, insertQuery, err := statements(cfg)
	if err != nil {
		return err
	}

	connStr := fmt.Sprintf("dbname=%s host=%s port=%s user=%s password=%s sslmode=%s",
		cfg["database"], cfg["host"], cfg["port"], cfg["user"], cfg["password"], cfg["sslmode"])
	if c.connection, err = sql.Open("postgres", connStr); err != nil {
		return fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}
	if err = c.connection.Ping(); err != nil {
		c.connection.Close()
		return fmt.Errorf("PostgreSQL недоступен: %w", err)
	}

	if cfg["create_table"] == "true" {
		if _, err = c.connection.Exec(createQuery); err != nil {
			c.connection.Close()
			return fmt.Errorf("не удалось создать таблицу %s: %w", cfg["table"], err)
		}
	}

	if c.insert, err = c.connection.Prepare(insertQuery); err != nil {
		c.connection.Close()
		return fmt.Errorf("не удалось подготовить запрос вставки: %w", err)
	}
	return nil
}

func (c *Connector) Save(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return errors.New("некорректная ссылка на событие")
	}

	event, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}

	if _, err = c.insert.Exec(event); err != nil {
		return fmt.Errorf("не удалось вставить событие: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	if c.insert != nil {
		c.insert.Close()
	}
	return c.connection.Close()
}
