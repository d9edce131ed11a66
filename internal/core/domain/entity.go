package domain

import "time"

// Price is the monetary value attached to an entity.
// Only Amount and Currency take part in change tracking.
type Price struct {
	Amount   float64 `json:"amount" bson:"amount"`
	Currency string  `json:"currency" bson:"currency"`

	// Label names the price variant the amount came from (e.g. "internetPrice").
	Label string `json:"label,omitempty" bson:"label,omitempty"`

	// Original is the crossed-out list price, when the site shows one.
	Original float64 `json:"original,omitempty" bson:"original,omitempty"`

	// Flags carries site-specific markers such as "crossed" or "negotiable".
	Flags []string `json:"flags,omitempty" bson:"flags,omitempty"`
}

// Equal reports whether two prices are the same for history purposes.
func (p Price) Equal(other Price) bool {
	return p.Amount == other.Amount && p.Currency == other.Currency
}

// Rating is an aggregate review score. A nil *Rating means "no rating";
// a zero value is never stored.
type Rating struct {
	Value float64 `json:"value" bson:"value"`
	Count int     `json:"count" bson:"count"`
}

// Provenance records where and when an entity was extracted.
type Provenance struct {
	Domain    string    `json:"domain" bson:"domain"`
	URL       string    `json:"url" bson:"url"`
	ScrapedAt time.Time `json:"scrapedAt" bson:"scrapedAt"`
	JobID     string    `json:"jobId,omitempty" bson:"jobId,omitempty"`
}

// Extension is the original site record, kept verbatim so that fields the
// canonical shape does not model yet are not lost.
type Extension map[string]any

// Availability flags for a product.
type Availability struct {
	InStock      bool `json:"inStock" bson:"inStock"`
	HomeDelivery bool `json:"homeDelivery,omitempty" bson:"homeDelivery,omitempty"`
	StorePickup  bool `json:"storePickup,omitempty" bson:"storePickup,omitempty"`
}

// Variant is one selectable product dimension (size, colour...).
type Variant struct {
	Type    string   `json:"type" bson:"type"`
	Options []string `json:"options" bson:"options"`
}

// Seller identifies a marketplace seller.
type Seller struct {
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
	Name string `json:"name" bson:"name"`
}

// Product is a canonical commerce entity.
type Product struct {
	ProductID    string       `json:"productId" bson:"productId"`
	Name         string       `json:"name" bson:"name"`
	Brand        string       `json:"brand,omitempty" bson:"brand,omitempty"`
	Category     string       `json:"category,omitempty" bson:"category,omitempty"`
	Description  string       `json:"description,omitempty" bson:"description,omitempty"`
	URL          string       `json:"url,omitempty" bson:"url,omitempty"`
	Price        Price        `json:"price" bson:"price"`
	Rating       *Rating      `json:"rating,omitempty" bson:"rating,omitempty"`
	Images       []string     `json:"images,omitempty" bson:"images,omitempty"`
	Availability Availability `json:"availability" bson:"availability"`
	Badges       []string     `json:"badges,omitempty" bson:"badges,omitempty"`
	Variants     []Variant    `json:"variants,omitempty" bson:"variants,omitempty"`
	Seller       *Seller      `json:"seller,omitempty" bson:"seller,omitempty"`
	Source       Provenance   `json:"source" bson:"source"`
	Raw          Extension    `json:"raw,omitempty" bson:"raw,omitempty"`
}

// Key returns the product's unique key.
func (p Product) Key() string {
	return UniqueKey(p.Source.Domain, p.ProductID)
}

// ListingType distinguishes sale from rental listings.
type ListingType string

const (
	ListingSale ListingType = "sale"
	ListingRent ListingType = "rent"
)

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint returns a point for the given latitude and longitude.
func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Location of a listing.
type Location struct {
	Address  string    `json:"address,omitempty" bson:"address,omitempty"`
	District string    `json:"district,omitempty" bson:"district,omitempty"`
	City     string    `json:"city,omitempty" bson:"city,omitempty"`
	Geo      *GeoPoint `json:"geo,omitempty" bson:"geo,omitempty"`
}

// Features are the countable attributes of a property.
type Features struct {
	Bedrooms  int     `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Bathrooms int     `json:"bathrooms,omitempty" bson:"bathrooms,omitempty"`
	Parking   int     `json:"parking,omitempty" bson:"parking,omitempty"`
	AreaTotal float64 `json:"areaTotal,omitempty" bson:"areaTotal,omitempty"`
	AreaBuilt float64 `json:"areaBuilt,omitempty" bson:"areaBuilt,omitempty"`
}

// Listing is a canonical real-estate entity.
type Listing struct {
	ListingID    string      `json:"listingId" bson:"listingId"`
	Title        string      `json:"title" bson:"title"`
	Description  string      `json:"description,omitempty" bson:"description,omitempty"`
	ListingType  ListingType `json:"listingType,omitempty" bson:"listingType,omitempty"`
	PropertyType string      `json:"propertyType,omitempty" bson:"propertyType,omitempty"`
	Price        Price       `json:"price" bson:"price"`
	Location     Location    `json:"location" bson:"location"`
	Features     Features    `json:"features" bson:"features"`
	Images       []string    `json:"images,omitempty" bson:"images,omitempty"`
	URL          string      `json:"url,omitempty" bson:"url,omitempty"`
	Publisher    string      `json:"publisher,omitempty" bson:"publisher,omitempty"`
	Source       Provenance  `json:"source" bson:"source"`
	Raw          Extension   `json:"raw,omitempty" bson:"raw,omitempty"`
}

// Key returns the listing's unique key.
func (l Listing) Key() string {
	return UniqueKey(l.Source.Domain, l.ListingID)
}
