// Package access decides which leads an actor may see. It performs no I/O so
// stores and handlers can apply the same rules.
package access

import (
	"errors"
	"strings"

	"github.com/wolfman30/territory-leads/internal/identity"
)

// ErrNotFound is reported for leads that do not exist and for leads the actor
// may not see. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("access: not found")

// LeadFilter is the effective predicate for a lead listing. Empty fields do
// not constrain the result; present fields are AND-combined.
type LeadFilter struct {
	OwnerID string
	Status  string
	City    string
}

// Matches reports whether a lead with the given owner, status and city passes
// the filter. City is a case-insensitive substring match.
func (f LeadFilter) Matches(ownerID, status, city string) bool {
	if f.OwnerID != "" && f.OwnerID != ownerID {
		return false
	}
	if f.Status != "" && f.Status != status {
		return false
	}
	if f.City != "" && !strings.Contains(strings.ToLower(city), strings.ToLower(f.City)) {
		return false
	}
	return true
}

// Owned is anything with a single owning actor.
type Owned interface {
	OwnerID() string
}

// VisibleLeadFilter narrows requested to what actor may see. Admins keep their
// requested owner; everyone else is pinned to their own id and any requested
// owner is ignored.
func VisibleLeadFilter(actor identity.Actor, requested LeadFilter) LeadFilter {
	effective := LeadFilter{
		Status: strings.TrimSpace(requested.Status),
		City:   strings.TrimSpace(requested.City),
	}
	if actor.IsAdmin() {
		effective.OwnerID = strings.TrimSpace(requested.OwnerID)
		return effective
	}
	effective.OwnerID = actor.ID
	return effective
}

// CanView reports whether actor may see record. A record without an owner,
// including a nil pointer behind the interface, is visible to no one.
func CanView(actor identity.Actor, record Owned) bool {
	if record == nil || record.OwnerID() == "" {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && record.OwnerID() == actor.ID
}

// CanListOwners reports whether actor may browse the owner directory.
func CanListOwners(actor identity.Actor) bool {
	return actor.IsAdmin()
}
