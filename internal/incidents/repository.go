package incidents

import (
	"context"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
)

// Repository defines the interface for incident storage.
type Repository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Get(ctx context.Context, id string) (*domain.Incident, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Incident, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Update(ctx context.Context, incident *domain.Incident) error
	Delete(ctx context.Context, id string) (int64, error)
	Ping(ctx context.Context) error
}

// ListFilter holds the normalized predicate, ordering and window of a list query.
// Nil fields are not filtered on.
type ListFilter struct {
	Status   *domain.Status
	Severity *domain.Severity
	Service  *string
	Owner    *string
	Search   *string
	From     *time.Time
	To       *time.Time
	Sort     SortField
	Order    SortOrder
	Limit    int
	Offset   int
}

// SortField is a sortable incident attribute, named as on the wire.
type SortField string

// Sortable fields.
const (
	SortByID        SortField = "id"
	SortByTitle     SortField = "title"
	SortByService   SortField = "service"
	SortBySeverity  SortField = "severity"
	SortByStatus    SortField = "status"
	SortByOwner     SortField = "owner"
	SortBySummary   SortField = "summary"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// SortFields lists every accepted sort field.
var SortFields = []SortField{
	SortByID, SortByTitle, SortByService, SortBySeverity, SortByStatus,
	SortByOwner, SortBySummary, SortByCreatedAt, SortByUpdatedAt,
}

var sortColumns = map[SortField]string{
	SortByID:        "id",
	SortByTitle:     "title",
	SortByService:   "service",
	SortBySeverity:  "severity",
	SortByStatus:    "status",
	SortByOwner:     "owner",
	SortBySummary:   "summary",
	SortByCreatedAt: "created_at",
	SortByUpdatedAt: "updated_at",
}

// IsValid checks if the field can be sorted on.
func (f SortField) IsValid() bool {
	_, ok := sortColumns[f]
	return ok
}

// Column returns the table column backing the field.
func (f SortField) Column() string {
	return sortColumns[f]
}

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// IsValid checks if the order is asc or desc.
func (o SortOrder) IsValid() bool {
	return o == OrderAsc || o == OrderDesc
}
