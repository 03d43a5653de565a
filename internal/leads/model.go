package leads

import (
	"time"

	"github.com/wolfman30/territory-leads/internal/access"
)

// ContactChannel is how a lead will be approached.
type ContactChannel string

const (
	ChannelContactForm ContactChannel = "CONTACT_FORM"
	ChannelTrunkline   ContactChannel = "TRUNKLINE"
	ChannelInfoEmail   ContactChannel = "INFO_EMAIL"
	ChannelSalesEmail  ContactChannel = "SALES_EMAIL"
	ChannelOther       ContactChannel = "OTHER"
)

// ContactChannels lists every accepted channel.
var ContactChannels = []ContactChannel{ChannelContactForm, ChannelTrunkline, ChannelInfoEmail, ChannelSalesEmail, ChannelOther}

// ParseContactChannel accepts exact enum names only.
func ParseContactChannel(raw string) (ContactChannel, bool) {
	for _, c := range ContactChannels {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// Status is the pipeline stage of a lead.
type Status string

const (
	StatusNew         Status = "NEW"
	StatusQualified   Status = "QUALIFIED"
	StatusContacted   Status = "CONTACTED"
	StatusOpportunity Status = "OPPORTUNITY"
	StatusClosed      Status = "CLOSED"
)

// Statuses lists every accepted status.
var Statuses = []Status{StatusNew, StatusQualified, StatusContacted, StatusOpportunity, StatusClosed}

// ParseStatus accepts exact enum names only.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// SourceType records where a lead was discovered. It is always set by the
// server, never taken from input.
type SourceType string

const SourceGooglePlacesDiscovery SourceType = "GOOGLE_PLACES_DISCOVERY"

// Lead is a prospective client discovered through the places directory. From
// the directory only the place id and its map URL are ever kept.
type Lead struct {
	ID                  string         `json:"id"`
	CompanyName         string         `json:"companyName"`
	WebsiteURL          *string        `json:"websiteUrl"`
	ContactChannel      ContactChannel `json:"contactChannel"`
	ContactValue        string         `json:"contactValue"`
	Industry            *string        `json:"industry"`
	CityProvince        *string        `json:"cityProvince"`
	Notes               *string        `json:"notes"`
	Status              Status         `json:"status"`
	SourceType          SourceType     `json:"sourceType"`
	SourcePlaceID       string         `json:"sourcePlaceId"`
	SourceGoogleMapsURL *string        `json:"sourceGoogleMapsUrl"`
	SourceDiscoveredAt  time.Time      `json:"sourceDiscoveredAt"`
	AssignedToID        string         `json:"assignedToId"`
	OwnerEmail          string         `json:"ownerEmail,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
}

// OwnerID returns the owning actor.
func (l *Lead) OwnerID() string {
	if l == nil {
		return ""
	}
	return l.AssignedToID
}

// Matches applies a listing filter to the lead.
func (l *Lead) Matches(f access.LeadFilter) bool {
	return f.Matches(l.AssignedToID, string(l.Status), deref(l.CityProvince))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// emptyToNil maps the empty string to no value.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
