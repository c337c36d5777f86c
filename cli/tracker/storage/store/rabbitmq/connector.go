package rabbitmq

/*
Плагин для работы с RabbitMQ.

host = "localhost"
port = "5672"
user = "guest"
password = "guest"
exchange = "tracker"
exchange_type = "topic"
key = "locations"
*/

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/streadway/amqp"
)

type settings struct {
	url          string
	exchange     string
	exchangeType string
	key          string
}

type Connector struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	key        string
	mu         sync.Mutex
}

func parseSettings(cfg map[string]string) (settings, error) {
	if cfg == nil {
		return settings{}, fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	if cfg["exchange"] == "" {
		return settings{}, fmt.Errorf("не задан exchange")
	}

	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     cfg["host"],
		Port:     5672,
		Username: cfg["user"],
		Password: cfg["password"],
		Vhost:    "/",
	}
	if v := cfg["port"]; v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return settings{}, fmt.Errorf("некорректный порт RabbitMQ: %q", v)
		}
		uri.Port = port
	}

	s := settings{
		url:          uri.String(),
		exchange:     cfg["exchange"],
		exchangeType: cfg["exchange_type"],
		key:          cfg["key"],
	}
	switch s.exchangeType {
	case "":
		s.exchangeType = amqp.ExchangeTopic
	case amqp.ExchangeDirect, amqp.ExchangeFanout, amqp.ExchangeTopic, amqp.ExchangeHeaders:
	default:
		return settings{}, fmt.Errorf("неизвестный тип exchange: %q", s.exchangeType)
	}
	return s, nil
}

func (c *Connector) Init(cfg map[string]string) error {
	s, err := parseSettings(cfg)
	if err != nil {
		return err
	}
	c.exchange, c.key = s.exchange, s.key

	if c.connection, err = amqp.Dial(s.url); err != nil {
		return fmt.Errorf("ошибка подключения к RabbitMQ: %v", err)
	}

	if c.channel, err = c.connection.Channel(); err != nil {
		c.connection.Close()
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %v", err)
	}

	if err = c.channel.ExchangeDeclare(c.exchange, s.exchangeType, true, false, false, false, nil); err != nil {
		c.connection.Close()
		return fmt.Errorf("не удалось объявить exchange: %v", err)
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

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(c.exchange, c.key, false, false, amqp.Publishing{
		ContentType:  "application/octet-stream",
		DeliveryMode: amqp.Persistent,
		Body:         event,
	})
	if err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	if err := c.channel.Close(); err != nil {
		c.connection.Close()
		return err
	}
	return c.connection.Close()
}
