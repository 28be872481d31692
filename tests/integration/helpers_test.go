//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/bissquit/incident-tracker/internal/testutil"
	"github.com/stretchr/testify/require"
)

// resetIncidents empties the table. Every test that asserts on totals calls it first.
func resetIncidents(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), "TRUNCATE incidents")
	require.NoError(t, err)
}

type incidentOption func(map[string]interface{})

func withOwner(owner string) incidentOption {
	return func(m map[string]interface{}) { m["owner"] = owner }
}

func withSummary(summary string) incidentOption {
	return func(m map[string]interface{}) { m["summary"] = summary }
}

func withStatus(status domain.Status) incidentOption {
	return func(m map[string]interface{}) { m["status"] = status }
}

func withService(service string) incidentOption {
	return func(m map[string]interface{}) { m["service"] = service }
}

func withCreatedAt(ts time.Time) incidentOption {
	return func(m map[string]interface{}) { m["createdAt"] = ts.UTC().Format(time.RFC3339Nano) }
}

// createIncident creates an incident through the API and returns it.
func createIncident(t *testing.T, client *testutil.Client, title string, severity domain.Severity, opts ...incidentOption) domain.Incident {
	t.Helper()

	payload := map[string]interface{}{
		"title":    title,
		"service":  "api",
		"severity": severity,
		"status":   domain.StatusOpen,
	}
	for _, opt := range opts {
		opt(payload)
	}

	resp, err := client.Call("createIncident", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data []domain.Incident `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data, 1)
	return result.Data[0]
}

// listIncidents calls getAllWithPaginationAndFilter and requires 200.
func listIncidents(t *testing.T, client *testutil.Client, req incidents.ListRequest) incidents.ListResult {
	t.Helper()

	resp, err := client.Call("getAllWithPaginationAndFilter", req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result incidents.ListResult
	testutil.DecodeJSON(t, resp, &result)
	return result
}

func incidentIDs(list []domain.Incident) []string {
	ids := make([]string, 0, len(list))
	for _, inc := range list {
		ids = append(ids, inc.ID)
	}
	return ids
}

func rawJSON(s string) json.RawMessage {
	return json.RawMessage(s)
}
