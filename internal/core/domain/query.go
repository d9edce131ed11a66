package domain

// ProductFilter selects stored products. Zero values mean "any".
// Price bounds are inclusive.
type ProductFilter struct {
	Domain   string
	Brand    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Text     string
	Limit    int
	Skip     int
}

// ListingFilter selects stored listings. Zero values mean "any".
// Price bounds are inclusive.
type ListingFilter struct {
	Domain       string
	ListingType  ListingType
	PropertyType string
	District     string
	City         string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  int
	Text         string
	Limit        int
	Skip         int
}

// Group-count limits for Stats breakdowns.
const (
	TopBrands    = 20
	TopDistricts = 10
)

// GroupCount is one bucket of a grouped count.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Stats is a grouped count over a stored collection. Only ByGroup is
// truncated; Total always counts every record.
type Stats struct {
	Total      int          `json:"total"`
	ByDomain   []GroupCount `json:"byDomain"`
	GroupField string       `json:"groupField"`
	ByGroup    []GroupCount `json:"byGroup"`
	ByType     []GroupCount `json:"byType,omitempty"`
}
