package leads

import (
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/territory-leads/internal/validation"
)

const (
	companyNameMin  = 2
	companyNameMax  = 150
	contactValueMin = 2
	contactValueMax = 120
	industryMax     = 80
	cityProvinceMax = 120
	notesMax        = 2000
	sourcePlaceMin  = 2
)

// CreateLeadRequest is the manual lead submission. Optional fields are
// pointers so an absent value can be told apart from an empty one. Fields the
// server derives (source type, discovery time, owner) are not part of it and
// are ignored if a client sends them.
type CreateLeadRequest struct {
	CompanyName         string  `json:"companyName"`
	WebsiteURL          *string `json:"websiteUrl"`
	ContactChannel      string  `json:"contactChannel"`
	ContactValue        string  `json:"contactValue"`
	Industry            *string `json:"industry"`
	CityProvince        *string `json:"cityProvince"`
	Notes               *string `json:"notes"`
	Status              *string `json:"status"`
	SourcePlaceID       string  `json:"sourcePlaceId"`
	SourceGoogleMapsURL *string `json:"sourceGoogleMapsUrl"`
}

// Validator turns submissions into leads.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a validator using the wall clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// Validate checks every field and returns all failures at once. On success the
// lead carries the discovery source type and the current time as discovery
// time. Owner, id and creation time are left for the caller and the store.
func (v *Validator) Validate(req CreateLeadRequest) (*Lead, error) {
	verr := validation.New()

	checkLength(verr, "companyName", req.CompanyName, companyNameMin, companyNameMax)
	checkLength(verr, "contactValue", req.ContactValue, contactValueMin, contactValueMax)
	checkLength(verr, "sourcePlaceId", req.SourcePlaceID, sourcePlaceMin, -1)

	channel, ok := ParseContactChannel(req.ContactChannel)
	if !ok {
		verr.Add("contactChannel", "must be one of CONTACT_FORM, TRUNKLINE, INFO_EMAIL, SALES_EMAIL, OTHER")
	}

	status := StatusNew
	if req.Status != nil {
		if status, ok = ParseStatus(*req.Status); !ok {
			verr.Add("status", "must be one of NEW, QUALIFIED, CONTACTED, OPPORTUNITY, CLOSED")
		}
	}

	checkOptionalMax(verr, "industry", req.Industry, industryMax)
	checkOptionalMax(verr, "cityProvince", req.CityProvince, cityProvinceMax)
	checkOptionalMax(verr, "notes", req.Notes, notesMax)

	website := emptyToNil(req.WebsiteURL)
	checkURL(verr, "websiteUrl", website)
	mapsURL := emptyToNil(req.SourceGoogleMapsURL)
	checkURL(verr, "sourceGoogleMapsUrl", mapsURL)

	if err := verr.Err(); err != nil {
		return nil, err
	}

	return &Lead{
		CompanyName:         req.CompanyName,
		WebsiteURL:          website,
		ContactChannel:      channel,
		ContactValue:        req.ContactValue,
		Industry:            req.Industry,
		CityProvince:        req.CityProvince,
		Notes:               req.Notes,
		Status:              status,
		SourceType:          SourceGooglePlacesDiscovery,
		SourcePlaceID:       req.SourcePlaceID,
		SourceGoogleMapsURL: mapsURL,
		SourceDiscoveredAt:  v.now().UTC(),
	}, nil
}

// checkLength enforces a rune-count range; max < 0 means unbounded.
func checkLength(verr *validation.Errors, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < min:
		verr.Add(field, "must be at least %d characters", min)
	case max >= 0 && n > max:
		verr.Add(field, "must be at most %d characters", max)
	}
}

func checkOptionalMax(verr *validation.Errors, field string, value *string, max int) {
	if value != nil && utf8.RuneCountInString(*value) > max {
		verr.Add(field, "must be at most %d characters", max)
	}
}

func checkURL(verr *validation.Errors, field string, value *string) {
	if value == nil {
		return
	}
	if !wellFormedURL(*value) {
		verr.Add(field, "must be a valid URL")
	}
}

func wellFormedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
