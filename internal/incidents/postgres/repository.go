// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `
		SELECT id, title, service, severity, status, owner, summary, created_at, updated_at
		FROM incidents
	`

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new incident. CreatedAt defaults to NOW() when zero.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (id, title, service, severity, status, owner, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), GREATEST(NOW(), COALESCE($8, NOW())))
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.ID,
		incident.Title,
		incident.Service,
		incident.Severity,
		incident.Status,
		incident.Owner,
		incident.Summary,
		optionalTime(incident.CreatedAt),
	).Scan(&incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// Get retrieves an incident by ID.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Incident, error) {
	query := selectColumns + " WHERE id = $1"

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

// List retrieves one window of incidents matching the filter.
func (r *Repository) List(ctx context.Context, filter incidents.ListFilter) ([]domain.Incident, error) {
	where, args := buildWhere(filter)

	query := selectColumns + where + orderBy(filter)

	argNum := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		list = append(list, *incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	return list, nil
}

// Count returns the number of incidents matching the filter, ignoring its window.
func (r *Repository) Count(ctx context.Context, filter incidents.ListFilter) (int, error) {
	where, args := buildWhere(filter)

	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM incidents"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return count, nil
}

// Update replaces all writable fields and sets updated_at to NOW().
// created_at is only replaced when incident.CreatedAt is set.
func (r *Repository) Update(ctx context.Context, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = $2, service = $3, severity = $4, status = $5, owner = $6, summary = $7,
		    created_at = COALESCE($8, created_at),
		    updated_at = GREATEST(NOW(), COALESCE($8, created_at))
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.ID,
		incident.Title,
		incident.Service,
		incident.Severity,
		incident.Status,
		incident.Owner,
		incident.Summary,
		optionalTime(incident.CreatedAt),
	).Scan(&incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// Delete removes an incident and reports the number of deleted rows.
func (r *Repository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete incident: %w", err)
	}
	return result.RowsAffected(), nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// buildWhere returns the conjunctive WHERE clause for the filter and its arguments.
// List and Count share it so that a page and its total always agree.
func buildWhere(filter incidents.ListFilter) (string, []interface{}) {
	var conds []string
	args := []interface{}{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.Severity != nil {
		add("severity = $%d", string(*filter.Severity))
	}
	if filter.Service != nil {
		add("service = $%d", *filter.Service)
	}
	if filter.Owner != nil {
		add("owner = $%d", *filter.Owner)
	}
	if filter.Search != nil {
		add("title ILIKE $%d", "%"+escapeLike(*filter.Search)+"%")
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderBy returns the ORDER BY clause. Rows with equal sort keys are ordered
// by id in the same direction so pages do not overlap.
func orderBy(filter incidents.ListFilter) string {
	sort := filter.Sort
	if !sort.IsValid() {
		sort = incidents.SortByCreatedAt
	}

	dir := "DESC"
	if filter.Order == incidents.OrderAsc {
		dir = "ASC"
	}

	if sort == incidents.SortByID {
		return fmt.Sprintf(" ORDER BY id %s", dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", sort.Column(), dir, dir)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Service,
		&incident.Severity,
		&incident.Status,
		&incident.Owner,
		&incident.Summary,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}
