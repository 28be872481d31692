// Package incidents provides the incident list resolver, mutations and their HTTP handlers.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/google/uuid"
)

// DefaultExportLimit caps the number of rows written by Export.
const DefaultExportLimit = 5000

// Service implements incident business logic.
type Service struct {
	repo        Repository
	exportLimit int
	now         func() time.Time
}

// NewService creates a new incident service.
func NewService(repo Repository, exportLimit int) *Service {
	if exportLimit <= 0 {
		exportLimit = DefaultExportLimit
	}
	return &Service{
		repo:        repo,
		exportLimit: exportLimit,
		now:         time.Now,
	}
}

// ListResult is one page of incidents plus the number of rows matching the filter.
type ListResult struct {
	Data  []domain.Incident `json:"data"`
	Total int               `json:"total"`
}

// DeleteResult reports how many rows a delete removed.
type DeleteResult struct {
	Deleted int64 `json:"deleted"`
}

// List returns one page of incidents matching the request. The page and the
// total are computed from the same filter.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	filter, err := req.Filter()
	if err != nil {
		return nil, err
	}

	data, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count incidents: %w", err)
	}

	return &ListResult{Data: data, Total: total}, nil
}

// Export returns every incident matching the request's filters and sort, up to
// the export limit. Page and page size are ignored.
func (s *Service) Export(ctx context.Context, req ListRequest) ([]domain.Incident, error) {
	filter, err := req.predicate()
	if err != nil {
		return nil, err
	}
	filter.Limit = s.exportLimit

	data, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("export incidents: %w", err)
	}
	return data, nil
}

// Get returns the incident with the given id, or nil if none exists.
func (s *Service) Get(ctx context.Context, id string) (*domain.Incident, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	incident, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

// Create validates and stores a new incident. A zero CreatedAt lets the store
// assign the current time.
func (s *Service) Create(ctx context.Context, incident *domain.Incident) ([]domain.Incident, error) {
	if err := s.validate(incident); err != nil {
		recordMutation("create", "invalid")
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	incident.ID = id.String()

	if err := s.repo.Create(ctx, incident); err != nil {
		recordMutation("create", "error")
		return nil, fmt.Errorf("create incident: %w", err)
	}

	recordMutation("create", "ok")
	return []domain.Incident{*incident}, nil
}

// Update replaces every field of the incident with the given id and bumps
// UpdatedAt. CreatedAt is kept unless set. An unknown id yields an empty slice.
func (s *Service) Update(ctx context.Context, incident *domain.Incident) ([]domain.Incident, error) {
	if incident.ID == "" {
		return nil, ErrMissingID
	}
	if err := s.validate(incident); err != nil {
		recordMutation("update", "invalid")
		return nil, err
	}

	if err := s.repo.Update(ctx, incident); err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			recordMutation("update", "not_found")
			return []domain.Incident{}, nil
		}
		recordMutation("update", "error")
		return nil, fmt.Errorf("update incident: %w", err)
	}

	recordMutation("update", "ok")
	return []domain.Incident{*incident}, nil
}

// Delete removes the incident with the given id. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		recordMutation("delete", "error")
		return nil, fmt.Errorf("delete incident: %w", err)
	}

	if n == 0 {
		recordMutation("delete", "not_found")
	} else {
		recordMutation("delete", "ok")
	}
	return &DeleteResult{Deleted: n}, nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) validate(incident *domain.Incident) error {
	if strings.TrimSpace(incident.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(incident.Service) == "" {
		return ErrEmptyService
	}
	if !incident.Severity.IsValid() {
		return ErrInvalidSeverity
	}
	if !incident.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !incident.CreatedAt.IsZero() && incident.CreatedAt.After(s.now()) {
		return ErrCreatedAtInFuture
	}
	return nil
}
