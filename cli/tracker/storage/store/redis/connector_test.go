package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettings(t *testing.T) {
	s, err := parseSettings(map[string]string{
		"host":      "cache.local",
		"port":      "6380",
		"password":  "secret",
		"db":        "2",
		"channel":   "locations",
		"list":      "locations:recent",
		"list_size": "50",
	})
	require.NoError(t, err)

	assert.Equal(t, "cache.local:6380", s.options.Addr)
	assert.Equal(t, "secret", s.options.Password)
	assert.Equal(t, 2, s.options.DB)
	assert.Equal(t, "locations", s.channel)
	assert.Equal(t, "locations:recent", s.list)
	assert.Equal(t, int64(50), s.listSize)
}

func TestParseSettingsDefaults(t *testing.T) {
	s, err := parseSettings(map[string]string{"host": "localhost", "port": "6379", "list": "recent"})
	require.NoError(t, err)

	assert.Equal(t, 0, s.options.DB)
	assert.Empty(t, s.channel)
	assert.Equal(t, int64(1000), s.listSize)
}

func TestParseSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]string
	}{
		{"nil config", nil},
		{"no channel or list", map[string]string{"host": "localhost"}},
		{"bad db", map[string]string{"channel": "c", "db": "first"}},
		{"negative db", map[string]string{"channel": "c", "db": "-1"}},
		{"zero list size", map[string]string{"list": "l", "list_size": "0"}},
		{"bad list size", map[string]string{"list": "l", "list_size": "many"}},
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
