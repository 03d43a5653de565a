package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/territory-leads/internal/access"
)

// PgxPool is the subset of pgxpool.Pool the repository uses.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const leadColumns = `
	l.id, l.company_name, l.website_url, l.contact_channel, l.contact_value,
	l.industry, l.city_province, l.notes, l.status, l.source_type,
	l.source_place_id, l.source_google_maps_url, l.source_discovered_at,
	l.assigned_to_id, COALESCE(u.email, ''), l.created_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.AssignedToID == "" {
		return ErrMissingOwner
	}
	ownerID, err := uuid.Parse(lead.AssignedToID)
	if err != nil {
		return fmt.Errorf("leads: invalid owner id: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO leads (
			id, company_name, website_url, contact_channel, contact_value,
			industry, city_province, notes, status, source_type,
			source_place_id, source_google_maps_url, source_discovered_at, assigned_to_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		lead.CompanyName,
		lead.WebsiteURL,
		string(lead.ContactChannel),
		lead.ContactValue,
		lead.Industry,
		lead.CityProvince,
		lead.Notes,
		string(lead.Status),
		string(lead.SourceType),
		lead.SourcePlaceID,
		lead.SourceGoogleMapsURL,
		lead.SourceDiscoveredAt,
		ownerID,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}

	lead.ID = id.String()
	lead.CreatedAt = createdAt
	return nil
}

// GetByID fetches a lead with its owner's email.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	leadID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrLeadNotFound
	}
	query := `SELECT` + leadColumns + `
		FROM leads l
		LEFT JOIN users u ON u.id = l.assigned_to_id
		WHERE l.id = $1
	`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, leadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads passing filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter access.LeadFilter) ([]*Lead, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != "" {
		ownerID, err := uuid.Parse(filter.OwnerID)
		if err != nil {
			return []*Lead{}, nil
		}
		args = append(args, ownerID)
		conds = append(conds, "l.assigned_to_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "l.status = $"+strconv.Itoa(len(args)))
	}
	if filter.City != "" {
		args = append(args, "%"+escapeLike(filter.City)+"%")
		conds = append(conds, "l.city_province ILIKE $"+strconv.Itoa(len(args)))
	}

	query := `SELECT` + leadColumns + `
		FROM leads l
		LEFT JOIN users u ON u.id = l.assigned_to_id`
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY l.created_at DESC, l.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead    Lead
		id      uuid.UUID
		ownerID uuid.UUID
		channel string
		status  string
		source  string
	)
	if err := row.Scan(
		&id,
		&lead.CompanyName,
		&lead.WebsiteURL,
		&channel,
		&lead.ContactValue,
		&lead.Industry,
		&lead.CityProvince,
		&lead.Notes,
		&status,
		&source,
		&lead.SourcePlaceID,
		&lead.SourceGoogleMapsURL,
		&lead.SourceDiscoveredAt,
		&ownerID,
		&lead.OwnerEmail,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	lead.ID = id.String()
	lead.AssignedToID = ownerID.String()
	lead.ContactChannel = ContactChannel(channel)
	lead.Status = Status(status)
	lead.SourceType = SourceType(source)
	return &lead, nil
}

// escapeLike makes user text literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
