package model

// RegionAggregate groups the events of one region.
type RegionAggregate struct {
	Key      string `json:"key"`  // RegionKey of the group
	Name     string `json:"name"` // first spelling seen in the data
	Count    int    `json:"count"`
	Clubs    int    `json:"clubs"`
	Students int    `json:"students"`
	Teachers int    `json:"teachers"`
}

// YearAggregate groups the events of one year.
type YearAggregate struct {
	Year     string `json:"year"`
	Count    int    `json:"count"`
	Clubs    int    `json:"clubs"`
	Students int    `json:"students"`
	Teachers int    `json:"teachers"`
}

// Summary holds the KPI figures of a filtered subset.
type Summary struct {
	Coverage  int `json:"coverage"`  // distinct non-empty regions
	Total     int `json:"total"`     // matched events
	Attendees int `json:"attendees"` // summed students
	Clubs     int `json:"clubs"`
	Teachers  int `json:"teachers"`
}

// FilterOptions lists the distinct values available for each selector, in
// first-seen order. The "all" sentinel is not included.
type FilterOptions struct {
	Years        []string `json:"years"`
	Regions      []string `json:"regions"`
	Institutions []string `json:"institutions"`
	Scopes       []string `json:"scopes"`
}
