// Package handlers provides the HTTP surface of the decision engine.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/modules/report"
)

// maxPayloadBytes caps dossier payload size.
const maxPayloadBytes = 4 << 20

// Handler handles evaluation and dossier HTTP requests.
type Handler struct {
	service *report.Service
	log     zerolog.Logger
}

// NewHandler creates the report handler.
func NewHandler(service *report.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "report").Logger(),
	}
}

// HandleEvaluate handles POST /api/evaluate: evaluates a raw payload without
// persisting anything.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var raw any
	if err := decodeBody(r, &raw); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	rep, err := h.service.Evaluate(r.Context(), raw)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Evaluation failed: "+err.Error())
		return
	}

	h.log.Info().
		Dur("elapsed", time.Since(start)).
		Float64("score", rep.SmartScore.Score).
		Msg("Ad hoc evaluation completed")

	h.writeJSON(w, http.StatusOK, rep)
}

type dossierRequest struct {
	Label   string          `json:"label"`
	Profile string          `json:"profile"`
	Payload json.RawMessage `json:"payload"`
}

// HandleCreateDossier handles POST /api/dossiers.
func (h *Handler) HandleCreateDossier(w http.ResponseWriter, r *http.Request) {
	var req dossierRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Payload) == 0 || !json.Valid(req.Payload) {
		h.writeError(w, http.StatusBadRequest, "Dossier payload must be valid JSON")
		return
	}

	d, err := h.service.CreateDossier(r.Context(), req.Label, req.Profile, req.Payload)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to create dossier: "+err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, d)
}

// HandleListDossiers handles GET /api/dossiers.
func (h *Handler) HandleListDossiers(w http.ResponseWriter, r *http.Request) {
	dossiers, err := h.service.Repo().ListDossiers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list dossiers: "+err.Error())
		return
	}
	if dossiers == nil {
		dossiers = []report.Dossier{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"dossiers": dossiers})
}

// HandleGetDossier handles GET /api/dossiers/{id}.
func (h *Handler) HandleGetDossier(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Repo().GetDossier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err, "Failed to load dossier")
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// HandleUpdateDossier handles PUT /api/dossiers/{id}.
func (h *Handler) HandleUpdateDossier(w http.ResponseWriter, r *http.Request) {
	var req dossierRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Payload) == 0 || !json.Valid(req.Payload) {
		h.writeError(w, http.StatusBadRequest, "Dossier payload must be valid JSON")
		return
	}

	d, err := h.service.UpdateDossier(r.Context(), chi.URLParam(r, "id"), req.Label, req.Profile, req.Payload)
	if err != nil {
		h.writeRepoError(w, err, "Failed to update dossier")
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// HandleDeleteDossier handles DELETE /api/dossiers/{id}.
func (h *Handler) HandleDeleteDossier(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDossier(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeRepoError(w, err, "Failed to delete dossier")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleEvaluateDossier handles POST /api/dossiers/{id}/evaluate: runs the
// engine on the stored payload and persists the report.
func (h *Handler) HandleEvaluateDossier(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.EvaluateDossier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err, "Evaluation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

// HandleLatestReport handles GET /api/dossiers/{id}/report.
func (h *Handler) HandleLatestReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Repo().LatestReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err, "Failed to load report")
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

// HandleGetReport handles GET /api/reports/{id}.
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Repo().GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err, "Failed to load report")
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func decodeBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxPayloadBytes)
	defer io.Copy(io.Discard, body)
	return json.NewDecoder(body).Decode(dst)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, report.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}
	h.writeError(w, http.StatusInternalServerError, msg+": "+err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
