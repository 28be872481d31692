//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIncident_PersistsSubmittedFields(t *testing.T) {
	client := newTestClient(t)

	created := createIncident(t, client, "Replica lag", domain.SeveritySEV2,
		withService("db"), withOwner("carol"), withSummary("lag above 30s"))

	id, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Equal(t, "Replica lag", created.Title)
	assert.Equal(t, "db", created.Service)
	assert.Equal(t, domain.SeveritySEV2, created.Severity)
	assert.Equal(t, domain.StatusOpen, created.Status)
	require.NotNil(t, created.Owner)
	assert.Equal(t, "carol", *created.Owner)
	require.NotNil(t, created.Summary)
	assert.Equal(t, "lag above 30s", *created.Summary)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)
	assert.False(t, created.UpdatedAt.Before(created.CreatedAt))
}

func TestCreateIncident_NullOptionalFields(t *testing.T) {
	client := newTestClient(t)

	created := createIncident(t, client, "No owner yet", domain.SeveritySEV4)
	assert.Nil(t, created.Owner)
	assert.Nil(t, created.Summary)

	var owner *string
	err := testDB.QueryRow(context.Background(), "SELECT owner FROM incidents WHERE id = $1", created.ID).Scan(&owner)
	require.NoError(t, err)
	assert.Nil(t, owner, "stored as NULL")
}

func TestCreateIncident_BackdatedCreatedAt(t *testing.T) {
	client := newTestClient(t)
	past := time.Date(2023, 11, 5, 8, 30, 0, 0, time.UTC)

	created := createIncident(t, client, "Historic", domain.SeveritySEV3, withCreatedAt(past))
	assert.True(t, created.CreatedAt.Equal(past), "got %s", created.CreatedAt)
}

func TestCreateIncident_Validation(t *testing.T) {
	client := newTestClient(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"service": "s", "severity": "SEV1", "status": "OPEN"}},
		{"blank service", map[string]interface{}{"title": "t", "service": " ", "severity": "SEV1", "status": "OPEN"}},
		{"unknown status", map[string]interface{}{"title": "t", "service": "s", "severity": "SEV1", "status": "CLOSED"}},
		{"future createdAt", map[string]interface{}{"title": "t", "service": "s", "severity": "SEV1", "status": "OPEN", "createdAt": time.Now().Add(24 * time.Hour).Format(time.RFC3339)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Call("createIncident", tt.body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestUpdateIncident_ReplacesFieldsAndBumpsUpdatedAt(t *testing.T) {
	client := newTestClient(t)
	created := createIncident(t, client, "Cache stampede", domain.SeveritySEV2, withOwner("dave"))

	time.Sleep(10 * time.Millisecond)

	resp, err := client.Call("updateIncident", map[string]interface{}{
		"id":       created.ID,
		"title":    "Cache stampede (mitigated)",
		"service":  "cache",
		"severity": "SEV3",
		"status":   "MITIGATED",
		"owner":    nil,
		"summary":  "added jitter",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []domain.Incident `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data, 1)
	updated := result.Data[0]

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Cache stampede (mitigated)", updated.Title)
	assert.Equal(t, "cache", updated.Service)
	assert.Equal(t, domain.SeveritySEV3, updated.Severity)
	assert.Equal(t, domain.StatusMitigated, updated.Status)
	assert.Nil(t, updated.Owner, "full replace clears omitted owner")
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateIncident_UnknownID(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.Call("updateIncident", map[string]interface{}{
		"id": "0190d0a0-0000-7000-8000-000000000000", "title": "t", "service": "s",
		"severity": "SEV1", "status": "OPEN",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []domain.Incident `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}

func TestDeleteIncident(t *testing.T) {
	client := newTestClient(t)
	created := createIncident(t, client, "To delete", domain.SeveritySEV4)

	deleted := func() int64 {
		resp, err := client.Call("deleteIncident", map[string]string{"id": created.ID})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Data struct {
				Deleted int64 `json:"deleted"`
			} `json:"data"`
		}
		testutil.DecodeJSON(t, resp, &result)
		return result.Data.Deleted
	}

	assert.Equal(t, int64(1), deleted())
	assert.Equal(t, int64(0), deleted(), "repeat delete is a no-op")

	resp, err := client.Call("getIncident", map[string]string{"id": created.ID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null}`, string(testutil.ReadBody(t, resp)))
}

func TestGetIncident(t *testing.T) {
	client := newTestClient(t)
	created := createIncident(t, client, "Lookup me", domain.SeveritySEV1, withSummary("details"))

	resp, err := client.Call("getIncident", map[string]string{"id": created.ID})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data *domain.Incident `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotNil(t, result.Data)
	assert.Equal(t, created.ID, result.Data.ID)
	assert.Equal(t, "details", *result.Data.Summary)
}

func TestInvalidJSON(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.Call("createIncident", rawJSON(`{"title":`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":{"message":"invalid json"}}`, string(testutil.ReadBody(t, resp)))
}
