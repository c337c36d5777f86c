package insert

import "github.com/daniil11ru/qrtrack/cli/tracker/types"

type Entity struct {
	Kind       types.EntityKind `json:"kind"`
	Name       *string          `json:"name"`
	OwnerID    *string          `json:"owner_id"`
	QRCode     string           `json:"qr_code"`
	UniqueCode *string          `json:"unique_code"`
}
