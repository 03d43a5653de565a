package places

import (
	"fmt"
)

// UpstreamError reports a failed or non-success call to the places directory.
// StatusCode is the HTTP status, or 0 when no response arrived (timeout,
// transport failure).
type UpstreamError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("places: %s failed: upstream status %d: %v", e.Operation, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("places: %s failed: upstream status %d", e.Operation, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("places: %s failed: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("places: %s failed", e.Operation)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ConfigError means a required setting is missing. It points at a deployment
// defect, not a transient condition.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return "places: missing " + e.Setting
}
