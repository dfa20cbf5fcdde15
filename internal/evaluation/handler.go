package evaluation

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

// Handler provides HTTP handlers for evaluation.
type Handler struct {
	runner   *Runner
	reporter *Reporter
}

// NewHandler creates a new evaluation handler.
func NewHandler(runner *Runner, reporter *Reporter) *Handler {
	return &Handler{runner: runner, reporter: reporter}
}

// RegisterRoutes registers evaluation routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/evaluation/run", h.handleRun)
}

// RunRequest carries either inline labeled queries or the path of a query
// file on the server.
type RunRequest struct {
	Queries   []LabeledQuery `json:"queries,omitempty"`
	QueryFile string         `json:"query_file,omitempty"`

	// Persist writes the report to the configured output directory.
	Persist bool `json:"persist,omitempty"`
}

// RunResponse returns the aggregate plus the report path when persisted.
type RunResponse struct {
	Result     *BatchResult `json:"result"`
	ReportPath string       `json:"report_path,omitempty"`
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid request body"))
		return
	}

	queries := req.Queries
	if len(queries) == 0 {
		if req.QueryFile == "" {
			apperrors.WriteError(w, apperrors.ValidationError("queries or query_file is required"))
			return
		}
		var err error
		queries, err = LoadQueries(req.QueryFile)
		if err != nil {
			apperrors.WriteError(w, err)
			return
		}
	}

	result, err := h.runner.Run(r.Context(), queries)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	resp := RunResponse{Result: result}
	if req.Persist && h.reporter != nil {
		path, err := h.reporter.WriteReport(result)
		if err != nil {
			apperrors.WriteError(w, err)
			return
		}
		resp.ReportPath = path
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
