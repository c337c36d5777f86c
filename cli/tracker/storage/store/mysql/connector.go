package mysql

/*
Экспорт событий местоположения в таблицу MySQL.

host = "localhost"
port = "3306"
user = "root"
password = "root"
database = "tracker_export"
table = "location_event"
event_data_field_name = "event_data"
*/

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
)

type Connector struct {
	connection  *sql.DB
	insertQuery string
}

func dsn(cfg map[string]string) string {
	c := mysql.NewConfig()
	c.User = cfg["user"]
	c.Passwd = cfg["password"]
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg["host"], cfg["port"])
	c.DBName = cfg["database"]
	c.ParseTime = true
	return c.FormatDSN()
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func insertQuery(cfg map[string]string) (string, error) {
	if cfg["table"] == "" {
		return "", errors.New("не задана таблица для экспорта событий")
	}
	field := cfg["event_data_field_name"]
	if field == "" {
		field = "event_data"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", quoteIdentifier(cfg["table"]), quoteIdentifier(field)), nil
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return errors.New("некорректная ссылка на конфигурацию")
	}

	var err error
	if c.insertQuery, err = insertQuery(cfg); err != nil {
		return err
	}

	if c.connection, err = sql.Open("mysql", dsn(cfg)); err != nil {
		return fmt.Errorf("ошибка подключения к MySQL: %w", err)
	}
	if err = c.connection.Ping(); err != nil {
		c.connection.Close()
		return fmt.Errorf("MySQL недоступен: %w", err)
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

	if _, err = c.connection.Exec(c.insertQuery, event); err != nil {
		return fmt.Errorf("не удалось вставить событие: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}
