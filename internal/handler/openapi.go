package handler

import "net/http"

// OpenAPIHandler serves the embedded OpenAPI document.
type OpenAPIHandler struct {
	spec []byte
}

// NewOpenAPIHandler creates a new OpenAPIHandler.
func NewOpenAPIHandler(spec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{spec: spec}
}

// Spec writes the OpenAPI document.
// GET /openapi.yaml
func (h *OpenAPIHandler) Spec(w http.ResponseWriter, r *http.Request) {
	if len(h.spec) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.spec)
}
