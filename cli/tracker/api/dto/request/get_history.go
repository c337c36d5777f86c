package request

import "time"

type GetHistory struct {
	Limit int
	Since *time.Time
	Start *time.Time
	End   *time.Time
}
