package client

import (
	"context"
	"errors"
	"testing"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/bissquit/incident-tracker/internal/querybuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	rows      []domain.Incident
	deleteErr error
	listCalls int
	lastReq   incidents.ListRequest
}

func (f *fakeBackend) List(_ context.Context, req incidents.ListRequest) (*incidents.ListResult, error) {
	f.listCalls++
	f.lastReq = req
	data := make([]domain.Incident, len(f.rows))
	copy(data, f.rows)
	return &incidents.ListResult{Data: data, Total: len(f.rows)}, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func seedRows(ids ...string) []domain.Incident {
	rows := make([]domain.Incident, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.Incident{ID: id, Title: "t-" + id, Service: "s", Severity: domain.SeveritySEV3, Status: domain.StatusOpen})
	}
	return rows
}

func ids(rows []domain.Incident) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestView_Refresh(t *testing.T) {
	backend := &fakeBackend{rows: seedRows("a", "b")}
	state := querybuilder.New()
	state.SetInput(querybuilder.Filters{Status: "OPEN"})
	state.Apply()

	v := NewView(backend, state)
	require.NoError(t, v.Refresh(context.Background()))

	assert.Equal(t, []string{"a", "b"}, ids(v.Rows()))
	assert.Equal(t, 2, v.Total())
	assert.Equal(t, "OPEN", backend.lastReq.Status)
	assert.False(t, v.CanNext())
}

func TestView_DeleteSuccessRefetches(t *testing.T) {
	backend := &fakeBackend{rows: seedRows("a", "b", "c")}
	v := NewView(backend, nil)
	require.NoError(t, v.Refresh(context.Background()))

	require.NoError(t, v.Delete(context.Background(), "b"))

	assert.Equal(t, []string{"a", "c"}, ids(v.Rows()))
	assert.Equal(t, 2, v.Total())
	assert.Equal(t, 2, backend.listCalls)
}

func TestView_DeleteFailureRestoresSnapshot(t *testing.T) {
	backend := &fakeBackend{rows: seedRows("a", "b", "c"), deleteErr: errors.New("boom")}
	v := NewView(backend, nil)
	require.NoError(t, v.Refresh(context.Background()))

	err := v.Delete(context.Background(), "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	assert.Equal(t, []string{"a", "b", "c"}, ids(v.Rows()))
	assert.Equal(t, 3, v.Total())
	assert.Equal(t, 1, backend.listCalls, "no refetch after failure")
}

func TestView_DeleteAppliesBeforeServerAnswers(t *testing.T) {
	backend := &blockingBackend{
		fakeBackend: fakeBackend{rows: seedRows("a", "b")},
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	v := NewView(backend, nil)
	require.NoError(t, v.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- v.Delete(context.Background(), "a") }()

	<-backend.started
	assert.Equal(t, []string{"b"}, ids(v.Rows()), "row hidden while delete is in flight")
	assert.Equal(t, 1, v.Total())
	close(backend.release)

	require.NoError(t, <-done)
}

type blockingBackend struct {
	fakeBackend
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) Delete(ctx context.Context, id string) (int64, error) {
	close(b.started)
	<-b.release
	return b.fakeBackend.Delete(ctx, id)
}
