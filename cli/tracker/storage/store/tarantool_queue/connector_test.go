package tarantool_queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings(t *testing.T) {
	s, err := parseSettings(map[string]string{
		"host":     "localhost",
		"port":     "3301",
		"user":     "guest",
		"password": "secret",
		"queue":    "locations",
		"ttl_sec":  "60",
		"create":   "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:3301", s.address)
	assert.Equal(t, "locations", s.queue)
	assert.Equal(t, time.Minute, s.ttl)
	assert.True(t, s.create)
	assert.Equal(t, "guest", s.opts.User)
	assert.Equal(t, "secret", s.opts.Pass)
	assert.Equal(t, uint(5), s.opts.MaxReconnects)
	assert.Equal(t, time.Second, s.opts.Timeout)
	assert.Equal(t, time.Second, s.opts.Reconnect)
}

func TestParseSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]string
	}{
		{"nil config", nil},
		{"no queue", map[string]string{"host": "localhost"}},
		{"bad timeout", map[string]string{"queue": "q", "timeout": "soon"}},
		{"negative ttl", map[string]string{"queue": "q", "ttl_sec": "-5"}},
		{"bad max_recons", map[string]string{"queue": "q", "max_recons": "many"}},
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
