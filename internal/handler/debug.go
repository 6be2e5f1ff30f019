package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/ai-debugger/internal/apperror"
	"github.com/sakif/ai-debugger/internal/executor"
	"github.com/sakif/ai-debugger/internal/service"
)

// MaxBodyBytes bounds the /debug request body.
const MaxBodyBytes = 1 << 20

// Debugger is the part of service.DebugService the handler needs.
type Debugger interface {
	Debug(ctx context.Context, code string) (*service.DebugReport, error)
}

// DebugResponse is the JSON body returned by POST /debug.
//
// Nullable fields are pointers so they encode as null instead of "".
// LineNumber is only present for syntax errors.
type DebugResponse struct {
	Success         bool    `json:"success"`
	Output          string  `json:"output"`
	Error           *string `json:"error"`
	ErrorType       *string `json:"error_type"`
	LineNumber      *int    `json:"line_number,omitempty"`
	OutputTruncated bool    `json:"output_truncated"`
	AIExplanation   string  `json:"ai_explanation"`
	SuggestedFix    *string `json:"suggested_fix"`
	FixExplanation  *string `json:"fix_explanation"`
}

// NewDebugResponse flattens a report into the wire shape.
func NewDebugResponse(report *service.DebugReport) DebugResponse {
	run := report.Execution
	resp := DebugResponse{
		Success:         run.Success,
		Output:          run.Output,
		OutputTruncated: run.OutputTruncated,
		AIExplanation:   report.Explanation.Explanation,
		SuggestedFix:    report.Explanation.SuggestedFix,
		FixExplanation:  report.Explanation.FixExplanation,
	}
	if run.Kind != executor.KindNone {
		kind := string(run.Kind)
		resp.ErrorType = &kind
		msg := run.Error
		resp.Error = &msg
	}
	if run.Kind == executor.KindSyntax && run.Line > 0 {
		line := run.Line
		resp.LineNumber = &line
	}
	return resp
}

// DebugHandler handles code debugging requests.
type DebugHandler struct {
	svc    Debugger
	logger *slog.Logger
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(svc Debugger, logger *slog.Logger) *DebugHandler {
	return &DebugHandler{
		svc:    svc,
		logger: logger,
	}
}

// HandleDebug validates, runs and explains a Python snippet.
//
// Request-level problems are 400s. Whatever the snippet itself does, the
// response is a 200 whose body carries the classification.
func (h *DebugHandler) HandleDebug(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("request_id", chimiddleware.GetReqID(r.Context())))

	if !isJSON(r.Header.Get("Content-Type")) {
		logger.Warn("invalid request, not JSON")
		writeError(w, apperror.ValidationFailed("body", "Request must be JSON"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	code, err := decodeCode(r.Body)
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			logger.Warn("invalid debug request body", slog.String("error", err.Error()))
			err = apperror.ValidationFailed("body", "Invalid JSON")
		}
		writeError(w, err)
		return
	}

	logger.Info("debug request received", slog.Int("codeLength", len(code)))

	report, err := h.svc.Debug(r.Context(), code)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			logger.Error("debug request failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewDebugResponse(report))
}

// decodeCode reads the {"code": "..."} body. Any empty JSON value (null, {},
// [], "", 0, false) counts as no data. A missing or null code field is
// returned as "" and rejected by the service. Errors that are not
// *apperror.AppError are malformed JSON.
func decodeCode(body io.Reader) (string, error) {
	var payload any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return "", apperror.ValidationFailed("body", "Request body too large")
		case errors.Is(err, io.EOF):
			return "", apperror.ValidationFailed("body", "No JSON data provided")
		}
		return "", err
	}
	if isEmptyJSON(payload) {
		return "", apperror.ValidationFailed("body", "No JSON data provided")
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return "", apperror.ValidationFailed("body", "Request body must be a JSON object")
	}
	switch code := obj["code"].(type) {
	case nil:
		return "", nil
	case string:
		return code, nil
	default:
		return "", apperror.ValidationFailed("code", "code must be a string")
	}
}

func isEmptyJSON(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	case float64:
		return v == 0
	case bool:
		return !v
	}
	return false
}

// isJSON accepts application/json and any +json media type.
func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
