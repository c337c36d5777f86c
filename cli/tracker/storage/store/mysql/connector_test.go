package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	got := dsn(map[string]string{
		"host":     "db.local",
		"port":     "3306",
		"user":     "tracker",
		"password": "secret",
		"database": "export",
	})
	assert.Equal(t, "tracker:secret@tcp(db.local:3306)/export?parseTime=true", got)
}

func TestInsertQuery(t *testing.T) {
	q, err := insertQuery(map[string]string{"table": "location_event"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `location_event` (`event_data`) VALUES (?)", q)

	q, err = insertQuery(map[string]string{"table": "ev`il", "event_data_field_name": "payload"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `ev``il` (`payload`) VALUES (?)", q)

	_, err = insertQuery(map[string]string{})
	assert.Error(t, err)
}
