package filter

import "github.com/daniil11ru/qrtrack/cli/tracker/types"

type Entities struct {
	Kind         *types.EntityKind
	OwnerID      *string
	WithLocation bool
}
