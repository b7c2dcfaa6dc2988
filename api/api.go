// Package api holds the OpenAPI document served next to the Swagger UI.
package api

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yml
var document []byte

const defaultServerURL = "http://localhost:8080"

// Load parses the embedded document and validates it.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// Handler serves the document with its server entry pointed at baseURL.
// An empty baseURL keeps the local development address.
func Handler(baseURL string) http.Handler {
	body := document
	if u := strings.TrimRight(strings.TrimSpace(baseURL), "/"); u != "" {
		body = bytes.Replace(document, []byte("url: "+defaultServerURL), []byte("url: "+u), 1)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(body)
	})
}
