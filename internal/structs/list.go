package structs

// Listing is Reddit's paginated envelope.
//
//	{"kind": "Listing", "data": {"after": "ModAction_...", "children": [...]}}
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

type ListingData struct {
	After    string         `json:"after"`
	Before   string         `json:"before"`
	Children []ListingChild `json:"children"`
}

type ListingChild struct {
	Kind string   `json:"kind"`
	Data LogEntry `json:"data"`
}
