package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/model"
	errx "github.com/tallyfinance/ai-service/internal/core/error"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

const (
	maxBodyBytes    = 1 << 20
	bodySnippetLen  = 100
	errorSnippetLen = 100
)

func (s *Server) orchestrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logx.Ctx(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.invalid(w, r, body, err)
		return
	}

	var envelope struct {
		Phase json.RawMessage `json:"phase"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		s.invalid(w, r, body, err)
		return
	}
	var phase model.Phase
	if err := json.Unmarshal(envelope.Phase, &phase); err != nil || (phase != model.PhaseA && phase != model.PhaseB) {
		writeError(w, r, errx.BadRequest(errx.CodeInvalidPhase, "Phase must be 'A' or 'B'"))
		return
	}

	switch phase {
	case model.PhaseA:
		var req model.PhaseARequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.invalid(w, r, body, err)
			return
		}
		if strings.TrimSpace(req.UserText) == "" {
			writeError(w, r, errx.BadRequest(errx.CodeMissingUserText, "Phase A requires user_text"))
			return
		}
		if err := req.Validate(); err != nil {
			s.invalid(w, r, body, err)
			return
		}
		log.Info().Str("phase", "A").Str("user", req.UserContext.UserID).Msg("Request received")

		resp, err := s.orch.PhaseA(ctx, &req)
		if err != nil {
			writeError(w, r, completionError(err))
			return
		}
		log.Info().Str("type", string(resp.ResponseType)).Msg("Phase A response")
		writeJSON(w, http.StatusOK, resp)

	case model.PhaseB:
		var req model.PhaseBRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.invalid(w, r, body, err)
			return
		}
		if req.ActionResult == nil {
			writeError(w, r, errx.BadRequest(errx.CodeMissingActionResult, "Phase B requires action_result"))
			return
		}
		if strings.TrimSpace(req.ToolName) == "" {
			s.invalid(w, r, body, &model.FieldError{Field: "tool_name", Reason: "required"})
			return
		}
		if err := req.Validate(); err != nil {
			s.invalid(w, r, body, err)
			return
		}
		log.Info().Str("phase", "B").Str("user", req.UserContext.UserID).Msg("Request received")

		resp, err := s.orch.PhaseB(ctx, &req)
		if err != nil {
			writeError(w, r, completionError(err))
			return
		}
		log.Info().Int("length", len(resp.FinalMessage)).Msg("Phase B response")
		writeJSON(w, http.StatusOK, resp)
	}
}

// invalid answers 422 and logs a snippet of the body that caused it.
func (s *Server) invalid(w http.ResponseWriter, r *http.Request, body []byte, err error) {
	logx.Ctx(r.Context()).Error().
		Str("errors", errx.Truncate(err.Error(), errorSnippetLen)).
		Str("body", errx.Truncate(string(body), bodySnippetLen)).
		Msg("Validation error 422")

	appErr := errx.Unprocessable(err)
	appErr.Message = errx.Truncate(err.Error(), errorSnippetLen)
	writeError(w, r, appErr)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"model":   s.info.Model,
		"version": s.info.Version,
	})
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.info.Service,
		"version": s.info.Version,
	})
}

func (s *Server) listTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools})
}
