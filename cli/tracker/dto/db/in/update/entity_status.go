package update

type EntityStatus struct {
	IsOnline   *bool `json:"is_online"`
	IsTracking *bool `json:"is_tracking"`
}
