package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead does not exist or is not visible
	ErrLeadNotFound = errors.New("lead not found")

	// ErrMissingOwner is returned when a lead is stored without an owner
	ErrMissingOwner = errors.New("leads: owner is required")
)
