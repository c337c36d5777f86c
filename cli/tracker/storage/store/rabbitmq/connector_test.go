package rabbitmq

import (
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings(t *testing.T) {
	s, err := parseSettings(map[string]string{
		"host":     "mq.local",
		"port":     "5673",
		"user":     "tracker",
		"password": "p@ss:word",
		"exchange": "tracker",
		"key":      "locations",
	})
	require.NoError(t, err)

	assert.Equal(t, "tracker", s.exchange)
	assert.Equal(t, amqp.ExchangeTopic, s.exchangeType)
	assert.Equal(t, "locations", s.key)

	uri, err := amqp.ParseURI(s.url)
	require.NoError(t, err)
	assert.Equal(t, "mq.local", uri.Host)
	assert.Equal(t, 5673, uri.Port)
	assert.Equal(t, "tracker", uri.Username)
	assert.Equal(t, "p@ss:word", uri.Password)
}

func TestParseSettingsDefaultPort(t *testing.T) {
	s, err := parseSettings(map[string]string{"host": "mq.local", "user": "u", "password": "p", "exchange": "e", "exchange_type": "fanout"})
	require.NoError(t, err)
	assert.Equal(t, amqp.ExchangeFanout, s.exchangeType)

	uri, err := amqp.ParseURI(s.url)
	require.NoError(t, err)
	assert.Equal(t, 5672, uri.Port)
}

func TestParseSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]string
	}{
		{"nil config", nil},
		{"no exchange", map[string]string{"host": "localhost"}},
		{"bad port", map[string]string{"exchange": "e", "port": "amqp"}},
		{"port out of range", map[string]string{"exchange": "e", "port": "70000"}},
		{"unknown exchange type", map[string]string{"exchange": "e", "exchange_type": "broadcast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSettings(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestSaveRejectsNilMessage(t *testing.T) {
	c := &Connector{}
	assert.Error(t, c.Save(nil))
	assert.NoError(t, c.Close())
}
