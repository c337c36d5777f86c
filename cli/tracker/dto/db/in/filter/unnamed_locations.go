package filter

type UnnamedLocations struct {
	EntityID *string
	Limit    int
}
