package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/vmihailenco/msgpack.v2"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMsgpack  Format = "msgpack"
	FormatProtobuf Format = "protobuf"
)

func (f Format) IsValid() bool {
	return f == FormatJSON || f == FormatMsgpack || f == FormatProtobuf
}

// ParseFormat: пустая строка означает json.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatJSON, nil
	}
	f := Format(s)
	if !f.IsValid() {
		return "", fmt.Errorf("неизвестный формат событий: %q", s)
	}
	return f, nil
}

// LocationEvent публикуется после каждого принятого обновления местоположения.
type LocationEvent struct {
	EntityID         string    `json:"entity_id"`
	EntityKind       string    `json:"entity_kind"`
	QRCode           string    `json:"qr_code"`
	PointID          string    `json:"point_id"`
	Seq              int64     `json:"seq"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	LocationName     *string   `json:"location_name"`
	LocationType     string    `json:"location_type"`
	Accuracy         *float64  `json:"accuracy,omitempty"`
	Speed            *float64  `json:"speed,omitempty"`
	Heading          *float64  `json:"heading,omitempty"`
	DistanceFromLast float64   `json:"distance_from_last"`
	TotalDistance    float64   `json:"total_distance"`
	IsTracking       bool      `json:"is_tracking"`
	RecordedAt       time.Time `json:"recorded_at"`

	Format Format `json:"-"`
}

func (e LocationEvent) toMap() map[string]interface{} {
	m := map[string]interface{}{
		"entity_id":          e.EntityID,
		"entity_kind":        e.EntityKind,
		"qr_code":            e.QRCode,
		"point_id":           e.PointID,
		"seq":                float64(e.Seq),
		"latitude":           e.Latitude,
		"longitude":          e.Longitude,
		"location_name":      nil,
		"location_type":      e.LocationType,
		"distance_from_last": e.DistanceFromLast,
		"total_distance":     e.TotalDistance,
		"is_tracking":        e.IsTracking,
		"recorded_at":        e.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.LocationName != nil {
		m["location_name"] = *e.LocationName
	}
	if e.Accuracy != nil {
		m["accuracy"] = *e.Accuracy
	}
	if e.Speed != nil {
		m["speed"] = *e.Speed
	}
	if e.Heading != nil {
		m["heading"] = *e.Heading
	}
	return m
}

func (e LocationEvent) ToBytes() ([]byte, error) {
	switch e.Format {
	case "", FormatJSON:
		return json.Marshal(e)
	case FormatMsgpack:
		return msgpack.Marshal(e.toMap())
	case FormatProtobuf:
		s, err := structpb.NewStruct(e.toMap())
		if err != nil {
			return nil, fmt.Errorf("ошибка преобразования события в protobuf: %w", err)
		}
		return proto.Marshal(s)
	default:
		return nil, fmt.Errorf("неизвестный формат событий: %q", e.Format)
	}
}
