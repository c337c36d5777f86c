package redis

/*
Плагин для работы с Redis: событие публикуется в канал и, если задан list,
добавляется в список ограниченной длины.

host = "localhost"
port = "6379"
password = ""
db = "0"
channel = "locations"
list = "locations:recent"
list_size = "1000"
*/

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const opTimeout = 5 * time.Second

type settings struct {
	options  redis.Options
	channel  string
	list     string
	listSize int64
}

type Connector struct {
	client   *redis.Client
	channel  string
	list     string
	listSize int64
}

func parseSettings(cfg map[string]string) (settings, error) {
	if cfg == nil {
		return settings{}, fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	if cfg["channel"] == "" && cfg["list"] == "" {
		return settings{}, fmt.Errorf("не задан ни channel, ни list")
	}

	s := settings{
		options: redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg["host"], cfg["port"]),
			Password: cfg["password"],
		},
		channel:  cfg["channel"],
		list:     cfg["list"],
		listSize: 1000,
	}

	if v := cfg["db"]; v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return settings{}, fmt.Errorf("некорректный номер базы Redis: %q", v)
		}
		s.options.DB = db
	}

	if v := cfg["list_size"]; v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil || size <= 0 {
			return settings{}, fmt.Errorf("некорректный list_size: %q", v)
		}
		s.listSize = size
	}
	return s, nil
}

func (c *Connector) Init(cfg map[string]string) error {
	s, err := parseSettings(cfg)
	if err != nil {
		return err
	}
	c.channel, c.list, c.listSize = s.channel, s.list, s.listSize
	c.client = redis.NewClient(&s.options)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis недоступен: %v", err)
	}
	return nil
}

func (c *Connector) Save(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("некорректная ссылка на событие")
	}

	event, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if c.channel != "" {
		if err := c.client.Publish(ctx, c.channel, event).Err(); err != nil {
			return fmt.Errorf("не удалось опубликовать событие: %v", err)
		}
	}

	if c.list != "" {
		pipe := c.client.TxPipeline()
		pipe.LPush(ctx, c.list, event)
		pipe.LTrim(ctx, c.list, 0, c.listSize-1)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("не удалось сохранить событие в список: %v", err)
		}
	}
	return nil
}

func (c *Connector) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
