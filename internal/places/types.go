package places

// LatLng is a coordinate pair as the directory returns it.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry wraps a place location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// PlaceSummary is one nearby-search hit. It lives for a single request and is
// never written to storage.
type PlaceSummary struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	Vicinity         string    `json:"vicinity,omitempty"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	Geometry         *Geometry `json:"geometry,omitempty"`
}

// PlaceDetail holds exactly the fields requested from the details endpoint.
type PlaceDetail struct {
	PlaceID              string `json:"place_id"`
	Name                 string `json:"name,omitempty"`
	FormattedAddress     string `json:"formatted_address,omitempty"`
	FormattedPhoneNumber string `json:"formatted_phone_number,omitempty"`
	Website              string `json:"website,omitempty"`
	URL                  string `json:"url,omitempty"`
}

// SearchResult carries the upstream status string unmodified alongside the
// truncated result list.
type SearchResult struct {
	Status  string         `json:"status"`
	Results []PlaceSummary `json:"results"`
}

type nearbySearchResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Results      []PlaceSummary `json:"results"`
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       *PlaceDetail `json:"result"`
}
