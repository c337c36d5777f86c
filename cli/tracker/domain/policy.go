package domain

import (
	"fmt"

	"github.com/daniil11ru/qrtrack/cli/tracker/dto/db/out"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
)

// UpdatePolicy решает, записывать ли новую точку.
type UpdatePolicy string

const (
	// PolicyAlwaysAppend записывает каждое обновление.
	PolicyAlwaysAppend UpdatePolicy = "always_append"
	// PolicyAppendIfMoved пропускает точку, совпадающую с последней записанной.
	PolicyAppendIfMoved UpdatePolicy = "append_if_moved"
)

func (p UpdatePolicy) IsValid() bool {
	return p == PolicyAlwaysAppend || p == PolicyAppendIfMoved
}

func ParseUpdatePolicy(s string) (UpdatePolicy, error) {
	p := UpdatePolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("неизвестная политика обновления: %q", s)
	}
	return p, nil
}

func (p UpdatePolicy) ShouldAppend(last *out.Location, position types.Position2D) bool {
	switch p {
	case PolicyAppendIfMoved:
		return last == nil || !last.Position().EqualsTo(position)
	default:
		return true
	}
}

// previousPosition возвращает точку, от которой отсчитывается прирост пробега.
// Снимок используется только если история пуста.
func previousPosition(entity out.Entity, last *out.Location) *types.Position2D {
	if last != nil {
		p := last.Position()
		return &p
	}
	if current := entity.CurrentLocation(); current != nil {
		return &types.Position2D{Latitude: current.Latitude, Longitude: current.Longitude}
	}
	return nil
}
