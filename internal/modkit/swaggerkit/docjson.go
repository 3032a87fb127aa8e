//go:build swag

package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	perr "stylefix/internal/platform/errors"
	pnet "stylefix/internal/platform/net"

	docs "stylefix/internal/services/api/docs"
)

var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

const exampleRequestID = "stylefix-api/7f3c-000001"

// defaultResponses are added to every operation that does not declare them
var defaultResponses = []error{
	perr.WithField(perr.New(perr.ErrorCodeValidation, "sentence is a required field"), "sentence"),
	perr.Unavailablef("suggestion backends unavailable"),
	perr.PanicErrf("panic recovered"),
}

// serveDocJSON serves the generated spec lifted to OAS 3.0 with the error envelope attached
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		ensureServers(spec, "/api/v1")
		child(child(spec, "components"), "schemas")["ErrorResponse"] = errorSchema
		for _, err := range defaultResponses {
			status, wire := pnet.Error(err, exampleRequestID)
			addDefaultResponse(spec, status, wire)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers forces OAS 3.0.3 since the swagger ui bundle cannot render 3.1
func ensureServers(spec map[string]any, url string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

// errorSchema mirrors pnet.Wire
var errorSchema = map[string]any{
	"type":        "object",
	"description": "Standard error response",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer", "format": "int32"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer", "format": "int32"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"op":          map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

func addDefaultResponse(spec map[string]any, status int, example pnet.Wire) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	key := strconv.Itoa(status)
	resp := map[string]any{
		"description": http.StatusText(status),
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": example,
			},
		},
	}
	for _, p := range paths {
		node, _ := p.(map[string]any)
		for _, o := range node {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			if resps := child(op, "responses"); resps[key] == nil {
				resps[key] = resp
			}
		}
	}
}

// child returns m[key] as a map, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
