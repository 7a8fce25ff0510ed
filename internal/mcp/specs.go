package mcp

import (
	"context"
	"embed"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed specs/alarm-api.yaml
var specFS embed.FS

var loadAPISpec = sync.OnceValues(func() (*openapi3.T, error) {
	raw, err := specFS.ReadFile("specs/alarm-api.yaml")
	if err != nil {
		return nil, err
	}
	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	return doc, nil
})
