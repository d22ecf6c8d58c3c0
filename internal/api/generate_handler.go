// Package api is the local HTTP surface: it starts generation runs in the
// background, reports their status, and lists the available domains and
// card templates. Only configuration and packaging failures surface as API
// errors; model-output irregularities are absorbed inside the generation
// core.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/api/shared"
	"github.com/phrazzld/ankigen/internal/packager"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/phrazzld/ankigen/internal/task"
)

// GenerateRequest is the POST /api/generate payload.
type GenerateRequest struct {
	Topic     string `json:"topic"`
	NumCards  int    `json:"num_cards"`
	Workflow  string `json:"workflow,omitempty"`
	DeckName  string `json:"deck_name,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Domain    string `json:"domain,omitempty"`
	Template  string `json:"template,omitempty"`
	Preview   bool   `json:"preview,omitempty"`
}

// GenerateResponse acknowledges an accepted run.
type GenerateResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// RunResponse reports the state of one run.
type RunResponse struct {
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
	Topic      string `json:"topic"`
	CardCount  int    `json:"card_count"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// GenerateHandler exposes generation runs over HTTP.
type GenerateHandler struct {
	logger *slog.Logger
	runner *task.Runner
	svc    *service.GenerationService
}

// NewGenerateHandler creates the handler.
func NewGenerateHandler(logger *slog.Logger, runner *task.Runner, svc *service.GenerationService) *GenerateHandler {
	return &GenerateHandler{logger: logger, runner: runner, svc: svc}
}

// StartRun handles POST /api/generate: it accepts the request, launches a
// background run, and answers 202 with the run id. While another run is in
// flight it answers 409.
func (h *GenerateHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Topic == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "topic is required")
		return
	}
	if req.NumCards < 1 || req.NumCards > 50 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "num_cards must be between 1 and 50")
		return
	}
	if req.Workflow == "" {
		req.Workflow = service.WorkflowTopic
	}

	out := service.OutputConfig{Kind: service.OutputAPKG}
	if req.Preview {
		out.Kind = service.OutputPreview
	}

	runID, err := h.runner.Start(service.GenerationRequest{
		Topic:     req.Topic,
		NumCards:  req.NumCards,
		Workflow:  req.Workflow,
		DeckName:  req.DeckName,
		SessionID: req.SessionID,
		Domain:    req.Domain,
		Template:  req.Template,
	}, out)
	if err != nil {
		if errors.Is(err, task.ErrRunActive) {
			shared.RespondWithError(w, r, http.StatusConflict, "a generation run is already active")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "failed to start run", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{
		RunID:  runID.String(),
		Status: string(task.RunStatusPending),
	})
}

// GetRun handles GET /api/runs/{id}.
func (h *GenerateHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid run id")
		return
	}

	run, ok := h.runner.Get(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "run not found")
		return
	}

	resp := RunResponse{
		RunID:  run.ID.String(),
		Status: string(run.Status),
		Topic:  run.Request.Topic,
		Error:  run.Error,
	}
	if run.Result != nil {
		resp.CardCount = len(run.Result.Cards)
		resp.OutputPath = run.Result.OutputPath
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ListDomains handles GET /api/domains.
func (h *GenerateHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"domains": h.svc.Domains(),
	})
}

// ListTemplates handles GET /api/templates.
func (h *GenerateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"templates": packager.ListTemplates(),
		"default":   packager.DefaultTemplate,
	})
}
