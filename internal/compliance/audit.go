// Package compliance records the discovery audit trail and publishes the
// guardrails the service enforces. Audit rows hold counts and identifiers
// only; place payloads never reach them.
package compliance

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AuditEventType represents the type of compliance event.
type AuditEventType string

const (
	// EventPlacesSearch is logged after a successful nearby search.
	EventPlacesSearch AuditEventType = "places.search"
	// EventPlaceDetailsViewed is logged after a successful details lookup.
	EventPlaceDetailsViewed AuditEventType = "places.details_viewed"
	// EventLeadCreated is logged when a lead is stored from a discovered place.
	EventLeadCreated AuditEventType = "lead.created"
)

// ParseEventType accepts the known event types only.
func ParseEventType(raw string) (AuditEventType, bool) {
	switch t := AuditEventType(raw); t {
	case EventPlacesSearch, EventPlaceDetailsViewed, EventLeadCreated:
		return t, true
	default:
		return "", false
	}
}

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 500
)

// AuditEvent represents an immutable compliance audit record.
type AuditEvent struct {
	ID             string         `json:"id"`
	EventType      AuditEventType `json:"eventType"`
	ActorID        string         `json:"actorId"`
	LeadID         string         `json:"leadId,omitempty"`
	PlaceID        string         `json:"placeId,omitempty"`
	ResultCount    *int           `json:"resultCount,omitempty"`
	UpstreamStatus string         `json:"upstreamStatus,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// AuditService handles compliance audit logging. A nil service, or one without
// a database, records nothing and returns no events.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) enabled() bool {
	return s != nil && s.db != nil
}

// LogEvent records a compliance audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if !s.enabled() {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO compliance_audit_events (
			id, event_type, actor_id, lead_id, place_id,
			result_count, upstream_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.EventType),
		event.ActorID,
		nullString(event.LeadID),
		nullString(event.PlaceID),
		nullInt(event.ResultCount),
		nullString(event.UpstreamStatus),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}

	return nil
}

// LogPlacesSearch records that actor ran a search and how many places it returned.
func (s *AuditService) LogPlacesSearch(ctx context.Context, actorID string, resultCount int, upstreamStatus string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType:      EventPlacesSearch,
		ActorID:        actorID,
		ResultCount:    &resultCount,
		UpstreamStatus: upstreamStatus,
	})
}

// LogPlaceDetailsViewed records that actor opened one place.
func (s *AuditService) LogPlaceDetailsViewed(ctx context.Context, actorID, placeID string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventPlaceDetailsViewed,
		ActorID:   actorID,
		PlaceID:   placeID,
	})
}

// LogLeadCreated records a lead stored from a discovered place.
func (s *AuditService) LogLeadCreated(ctx context.Context, actorID, leadID, sourcePlaceID string) error {
	return s.LogEvent(ctx, AuditEvent{
		EventType: EventLeadCreated,
		ActorID:   actorID,
		LeadID:    leadID,
		PlaceID:   sourcePlaceID,
	})
}

// QueryEvents retrieves audit events with filters, newest first.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	if !s.enabled() {
		return []AuditEvent{}, nil
	}

	query := `
		SELECT id, event_type, actor_id, lead_id, place_id,
			   result_count, upstream_status, created_at
		FROM compliance_audit_events
		WHERE 1 = 1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND actor_id = $%d", argIdx)
		args = append(args, filter.ActorID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, string(filter.EventType))
		argIdx++
	}
	if !filter.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.Since)
		argIdx++
	}

	query += " ORDER BY created_at DESC LIMIT " + strconv.Itoa(clampLimit(filter.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := []AuditEvent{}
	for rows.Next() {
		var (
			e                         AuditEvent
			eventType                 string
			leadID, placeID, upstream sql.NullString
			count                     sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &eventType, &e.ActorID, &leadID, &placeID, &count, &upstream, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.EventType = AuditEventType(eventType)
		e.LeadID = leadID.String
		e.PlaceID = placeID.String
		e.UpstreamStatus = upstream.String
		if count.Valid {
			n := int(count.Int64)
			e.ResultCount = &n
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to read audit events: %w", err)
	}

	return events, nil
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	ActorID   string
	EventType AuditEventType
	Since     time.Time
	Limit     int
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
