package places

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/wolfman30/territory-leads/internal/validation"
)

// MaxResultsCeiling is the system-wide cap on results per search. It bounds
// bulk harvesting regardless of what a caller asks for.
const MaxResultsCeiling = 60

const (
	keywordMinLen = 2
	keywordMaxLen = 80
	typeMaxLen    = 50
	radiusMin     = 100
	radiusMax     = 50000
	placeIDMinLen = 2
)

// SearchRequest is the wire body of a search. Numeric fields are pointers so a
// missing value is reported as required rather than read as zero.
type SearchRequest struct {
	Keyword    string   `json:"keyword"`
	Type       string   `json:"type,omitempty"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Radius     *float64 `json:"radius"`
	MaxResults *float64 `json:"maxResults"`
}

// SearchParams is a validated search.
type SearchParams struct {
	Keyword    string
	Type       string
	Lat        float64
	Lng        float64
	Radius     int
	MaxResults int
}

// DetailsRequest is the wire body of a details lookup.
type DetailsRequest struct {
	PlaceID string `json:"placeId"`
}

// Params converts the request into SearchParams, reporting every invalid field.
// Requests above MaxResultsCeiling are rejected at this boundary.
func (r SearchRequest) Params() (SearchParams, error) {
	verr := validation.New()
	params := SearchParams{Keyword: r.Keyword, Type: r.Type}

	if r.Lat == nil {
		verr.Add("lat", "is required")
	} else {
		params.Lat = *r.Lat
	}
	if r.Lng == nil {
		verr.Add("lng", "is required")
	} else {
		params.Lng = *r.Lng
	}
	params.Radius = requiredInt(verr, "radius", r.Radius)
	params.MaxResults = requiredInt(verr, "maxResults", r.MaxResults)
	if !verr.Has("maxResults") && params.MaxResults > MaxResultsCeiling {
		verr.Add("maxResults", "must be between 1 and %d", MaxResultsCeiling)
	}

	params.validate(verr)
	if err := verr.Err(); err != nil {
		return SearchParams{}, err
	}
	return params, nil
}

// Validate checks the bounds on the search parameters. A MaxResults above
// MaxResultsCeiling is not an error here; Search truncates to the ceiling.
func (p SearchParams) Validate() error {
	verr := validation.New()
	p.validate(verr)
	return verr.Err()
}

func (p SearchParams) validate(verr *validation.Errors) {
	switch n := utf8.RuneCountInString(p.Keyword); {
	case n < keywordMinLen:
		verr.Add("keyword", "must be at least %d characters", keywordMinLen)
	case n > keywordMaxLen:
		verr.Add("keyword", "must be at most %d characters", keywordMaxLen)
	}
	if utf8.RuneCountInString(p.Type) > typeMaxLen {
		verr.Add("type", "must be at most %d characters", typeMaxLen)
	}
	if !verr.Has("lat") && (p.Lat < -90 || p.Lat > 90 || math.IsNaN(p.Lat)) {
		verr.Add("lat", "must be between -90 and 90")
	}
	if !verr.Has("lng") && (p.Lng < -180 || p.Lng > 180 || math.IsNaN(p.Lng)) {
		verr.Add("lng", "must be between -180 and 180")
	}
	if !verr.Has("radius") && (p.Radius < radiusMin || p.Radius > radiusMax) {
		verr.Add("radius", "must be between %d and %d", radiusMin, radiusMax)
	}
	if !verr.Has("maxResults") && p.MaxResults < 1 {
		verr.Add("maxResults", "must be between 1 and %d", MaxResultsCeiling)
	}
}

// ValidatePlaceID checks a details lookup identifier.
func ValidatePlaceID(placeID string) error {
	verr := validation.New()
	if utf8.RuneCountInString(strings.TrimSpace(placeID)) < placeIDMinLen {
		verr.Add("placeId", "must be at least %d characters", placeIDMinLen)
	}
	return verr.Err()
}

func requiredInt(verr *validation.Errors, field string, v *float64) int {
	if v == nil {
		verr.Add(field, "is required")
		return 0
	}
	if *v != math.Trunc(*v) || math.IsInf(*v, 0) {
		verr.Add(field, "must be an integer")
		return 0
	}
	return int(*v)
}
