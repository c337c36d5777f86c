package domain

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/repository"
	"github.com/daniil11ru/qrtrack/cli/tracker/source"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

func newTestRepository() *repository.Primary {
	return &repository.Primary{Source: source.NewMemory()}
}

func addUser(t *testing.T, repo *repository.Primary, code string) string {
	t.Helper()
	id, err := repo.AddUser("Тест", code)
	require.NoError(t, err)
	return id
}

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}

func sampleAt(lat, lon float64) types.Sample {
	return types.Sample{Latitude: floatPtr(lat), Longitude: floatPtr(lon)}
}

// withClock подменяет now последовательностью моментов с шагом в минуту.
func withClock(t *testing.T, start time.Time) {
	t.Helper()
	var mu sync.Mutex
	current := start
	original := now
	now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Minute)
		return current
	}
	t.Cleanup(func() { now = original })
}

type fakeGeocoder struct {
	mu    sync.Mutex
	name  string
	err   error
	calls int
}

func (g *fakeGeocoder) ReverseGeocode(ctx context.Context, position types.Position2D) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.name, g.err
}

func (g *fakeGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var errGeocoderDown = &types.UpstreamDependencyError{Service: "nominatim", Err: errors.New("timeout")}

type fakePublisher struct {
	mu     sync.Mutex
	events []interface{ ToBytes() ([]byte, error) }
}

func (p *fakePublisher) Save(m interface{ ToBytes() ([]byte, error) }) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, m)
	return nil
}
