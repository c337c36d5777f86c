package tarantool_queue

/*
Экспорт событий местоположения в очередь Tarantool.

host = "localhost"
port = "3301"
user = "user"
password = "pass"
max_recons = 5
timeout = 1
reconnect = 1
queue = "locations"
ttl_sec = 3600      # необязательно: время жизни задачи в очереди
create = "true"     # необязательно: создать fifottl-очередь, если её нет
*/

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tarantool/go-tarantool"
	"github.com/tarantool/go-tarantool/queue"
)

type settings struct {
	address string
	queue   string
	ttl     time.Duration
	create  bool
	opts    tarantool.Opts
}

type Connector struct {
	connection *tarantool.Connection
	queue      queue.Queue
	ttl        time.Duration
}

func seconds(cfg map[string]string, key string, def int) (time.Duration, error) {
	v := cfg[key]
	if v == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("некорректное значение %s: %q", key, v)
	}
	return time.Duration(n) * time.Second, nil
}

func parseSettings(cfg map[string]string) (settings, error) {
	if cfg == nil {
		return settings{}, errors.New("некорректная ссылка на конфигурацию")
	}
	if cfg["queue"] == "" {
		return settings{}, errors.New("не задано имя очереди Tarantool")
	}

	s := settings{
		address: fmt.Sprintf("%s:%s", cfg["host"], cfg["port"]),
		queue:   cfg["queue"],
		create:  cfg["create"] == "true",
		opts: tarantool.Opts{
			User:          cfg["user"],
			Pass:          cfg["password"],
			MaxReconnects: 5,
		},
	}

	if v := cfg["max_recons"]; v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return settings{}, fmt.Errorf("некорректное значение max_recons: %q", v)
		}
		s.opts.MaxReconnects = uint(n)
	}

	var err error
	if s.opts.Timeout, err = seconds(cfg, "timeout", 1); err != nil {
		return settings{}, err
	}
	if s.opts.Reconnect, err = seconds(cfg, "reconnect", 1); err != nil {
		return settings{}, err
	}
	if s.ttl, err = seconds(cfg, "ttl_sec", 0); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (c *Connector) Init(cfg map[string]string) error {
	s, err := parseSettings(cfg)
	if err != nil {
		return err
	}

	c.connection, err = tarantool.Connect(s.address, s.opts)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к Tarantool: %w", err)
	}
	c.queue = queue.New(c.connection, s.queue)
	c.ttl = s.ttl

	if s.create {
		err = c.queue.Create(queue.Cfg{IfNotExists: true, Kind: queue.FIFO_TTL})
		if err != nil {
			c.connection.Close()
			return fmt.Errorf("не удалось создать очередь %s: %w", s.queue, err)
		}
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

	if c.ttl > 0 {
		_, err = c.queue.PutWithOpts(event, queue.Opts{Ttl: c.ttl})
	} else {
		_, err = c.queue.Put(event)
	}
	if err != nil {
		return fmt.Errorf("не удалось поставить событие в очередь: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}
