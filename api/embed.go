// Package api holds the OpenAPI description of the HTTP interface.
package api

import _ "embed"

// OpenAPI is the raw openapi.yaml served at /docs/openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
