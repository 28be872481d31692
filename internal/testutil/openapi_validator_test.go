package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIDocument_CoversRoutes(t *testing.T) {
	v, err := LoadOpenAPIValidator()
	require.NoError(t, err)

	ops := v.Operations()
	for _, want := range []string{
		"POST /api/v1/incident/getAllWithPaginationAndFilter",
		"POST /api/v1/incident/createIncident",
		"POST /api/v1/incident/updateIncident",
		"POST /api/v1/incident/deleteIncident",
		"POST /api/v1/incident/getIncident",
		"GET /api/v1/incident/export",
		"GET /api/v1/incident/options",
		"GET /version",
	} {
		assert.Contains(t, ops, want)
	}
}
