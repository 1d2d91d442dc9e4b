package info

import (
	"bytes"
	"net/http"
)

// GetStatus answers without running any probe.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.respondProbe(w, r, http.StatusOK, "HEALTHY")
}

// GetHealthz runs the liveness checks.
func (h *Handler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.runChecks(r.Context(), h.livenessChecks); err != nil {
		h.HandleAPIError(w, r, http.StatusServiceUnavailable, err, "liveness probe failed")
		return
	}
	h.respondProbe(w, r, http.StatusOK, "ok")
}

// GetReadyz runs the readiness checks.
func (h *Handler) GetReadyz(w http.ResponseWriter, r *http.Request) {
	if err := h.runChecks(r.Context(), h.readinessChecks); err != nil {
		h.HandleAPIError(w, r, http.StatusServiceUnavailable, err, "readiness probe failed")
		return
	}
	h.respondProbe(w, r, http.StatusOK, "ready")
}

// GetVersion answers with the configured version payload.
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	payload := h.version()
	if payload == nil {
		payload = map[string]string{}
	}
	h.RespondWithJSON(w, r, http.StatusOK, payload)
}

// GetOpenAPIJSON writes the OpenAPI document.
func (h *Handler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	body, err := h.document()
	if err != nil {
		h.HandleInternalServerError(w, r, err, "failed to load openapi document")
		return
	}
	h.RespondWithBody(w, http.StatusOK, "application/json", body)
}

// GetOpenAPIHTML renders the documentation viewer.
func (h *Handler) GetOpenAPIHTML(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, h.templateData(r, h.baseURL)); err != nil {
		h.HandleInternalServerError(w, r, err, "failed to render documentation")
		return
	}
	h.RespondWithBody(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
