package client

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/bissquit/incident-tracker/internal/querybuilder"
)

// Backend is the subset of the API a View needs. *Client implements it.
type Backend interface {
	List(ctx context.Context, req incidents.ListRequest) (*incidents.ListResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// View is a locally cached page of incidents driven by a query state.
// Deletes are applied to the cache before the server confirms them and
// rolled back if the call fails.
type View struct {
	backend Backend
	state   *querybuilder.State

	mu    sync.RWMutex
	rows  []domain.Incident
	total int
}

// NewView creates a view over backend. A nil state starts from defaults.
func NewView(backend Backend, state *querybuilder.State) *View {
	if state == nil {
		state = querybuilder.New()
	}
	return &View{backend: backend, state: state}
}

// State returns the query state. Call Refresh after changing it.
func (v *View) State() *querybuilder.State {
	return v.state
}

// Refresh fetches the page selected by the applied state.
func (v *View) Refresh(ctx context.Context) error {
	result, err := v.backend.List(ctx, v.state.Request())
	if err != nil {
		return fmt.Errorf("refresh incidents: %w", err)
	}

	v.mu.Lock()
	v.rows = result.Data
	v.total = result.Total
	v.mu.Unlock()
	return nil
}

// Rows returns a copy of the cached page.
func (v *View) Rows() []domain.Incident {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.rows)
}

// Total returns the cached number of matching incidents.
func (v *View) Total() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.total
}

// CanNext reports whether the next page may have rows.
func (v *View) CanNext() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state.CanNext(len(v.rows))
}

// Delete removes id from the cached page immediately, then asks the server.
// On failure the previous page is restored and the error returned. On success
// the page is fetched again so it refills from the server.
func (v *View) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	snapshotRows := slices.Clone(v.rows)
	snapshotTotal := v.total

	v.rows = slices.DeleteFunc(v.rows, func(in domain.Incident) bool { return in.ID == id })
	if len(v.rows) < len(snapshotRows) && v.total > 0 {
		v.total--
	}
	v.mu.Unlock()

	if _, err := v.backend.Delete(ctx, id); err != nil {
		v.mu.Lock()
		v.rows = snapshotRows
		v.total = snapshotTotal
		v.mu.Unlock()
		return fmt.Errorf("delete incident %s: %w", id, err)
	}

	return v.Refresh(ctx)
}
