// Package openapi embeds the service's OpenAPI document.
package openapi

import _ "embed"

// Document is the OpenAPI 3 document served at /api/openapi.yaml.
//
//go:embed openapi.yaml
var Document []byte
