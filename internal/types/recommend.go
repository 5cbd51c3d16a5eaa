package types

// Restaurant is the minimal shop projection the UI needs from the restaurant
// provider: identity, access info, budget band, hours, and imagery.
type Restaurant struct {
	Name        string          `json:"name"`
	Genre       string          `json:"genre"`
	Address     string          `json:"address"`
	StationName string          `json:"station_name"`
	Access      string          `json:"access"`
	Budget      string          `json:"budget"`
	Open        string          `json:"open"`
	Photo       RestaurantPhoto `json:"photo"`
	URL         string          `json:"url"`
}

// RestaurantPhoto holds small thumbnail references for mobile and desktop.
type RestaurantPhoto struct {
	Mobile string `json:"mobile"`
	PC     string `json:"pc"`
}

// ProviderCredit is the attribution block the restaurant provider's terms of
// use require on every surface showing its data.
type ProviderCredit struct {
	PoweredBy string `json:"powered_by"`
	LogoURL   string `json:"logo_url"`
	LinkURL   string `json:"link_url"`
	Text      string `json:"text"`
}

// GenreClassification is the outcome of mapping a weather condition onto a
// restaurant genre: which weather type matched, the primary and secondary
// provider genre codes, and the already-localized recommendation reason.
type GenreClassification struct {
	WeatherType string `json:"weather_type"`
	Primary     string `json:"primary"`
	Secondary   string `json:"secondary"`
	Reason      string `json:"reason"`
}

// RestaurantSearchParams records the inputs of a restaurant search for
// display and debugging.
type RestaurantSearchParams struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lng"`
	Weather string  `json:"weather"`
	Genre   string  `json:"genre"`
}

// RestaurantRecommendation is the restaurant engine's ephemeral result.
// It is always a complete, renderable value: when the provider is not
// configured or a search fails, HasRecommendations is false and Reason
// carries a localized explanation.
type RestaurantRecommendation struct {
	HasRecommendations bool                    `json:"has_recommendations"`
	Reason             string                  `json:"weather_based_reason"`
	Genre              *GenreClassification    `json:"recommended_genre"`
	Restaurants        []Restaurant            `json:"restaurants"`
	Credit             ProviderCredit          `json:"credit"`
	SearchParams       *RestaurantSearchParams `json:"search_params"`
}

// FacilityType is a facility provider place category we search for restrooms.
type FacilityType string

// Facility categories, in the vocabulary of the facility provider.
const (
	FacilityConvenienceStore FacilityType = "convenience_store"
	FacilityPublicToilet     FacilityType = "public_toilet"
	FacilitySupermarket      FacilityType = "supermarket"
	FacilityGasStation       FacilityType = "gas_station"
	FacilityRestaurant       FacilityType = "restaurant"
)

// FacilityLocation is the provider-reported geometry of a facility.
type FacilityLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FacilityPhoto references the first provider photo of a facility.
type FacilityPhoto struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// Facility is one restroom-capable place returned by the facility engine.
//
// Priority is the 1-based rank of the facility's category within the
// weather-dependent priority list (1 = most preferred). OpenNow is a
// tri-state: nil means the provider did not report opening hours.
// DistanceMeters is nil when the provider omitted geometry.
type Facility struct {
	PlaceID          string            `json:"place_id"`
	Name             string            `json:"name"`
	Type             FacilityType      `json:"type"`
	TypeDisplay      string            `json:"type_display"`
	Vicinity         string            `json:"vicinity"`
	Rating           *float64          `json:"rating"`
	UserRatingsTotal int               `json:"user_ratings_total"`
	PriceLevel       *int              `json:"price_level"`
	OpenNow          *bool             `json:"open_now"`
	Location         *FacilityLocation `json:"geometry"`
	Photo            *FacilityPhoto    `json:"photos,omitempty"`

	Priority        int      `json:"priority"`
	DistanceMeters  *float64 `json:"distance_meters,omitempty"`
	DistanceDisplay string   `json:"distance_display,omitempty"`
}

// FacilityRecommendation is the facility engine's ephemeral result.
// SearchRadius is the radius in meters that actually produced results;
// IsFallback marks the last-resort 3000m all-category search.
type FacilityRecommendation struct {
	Prioritized []Facility                  `json:"prioritized"`
	ByType      map[FacilityType][]Facility `json:"by_type"`
	TotalCount  int                         `json:"total_count"`

	SearchRadius     int    `json:"search_radius"`
	IsFallback       bool   `json:"is_fallback,omitempty"`
	WeatherCondition string `json:"weather_condition"`
	Reason           string `json:"recommendation_reason"`
}
