package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tallyfinance/ai-service/internal/agent/llm"
	errx "github.com/tallyfinance/ai-service/internal/core/error"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

type errorDetail struct {
	Detail string    `json:"detail"`
	Code   errx.Code `json:"code"`
}

type errorBody struct {
	Detail errorDetail `json:"detail"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errx.From(err)
	log := logx.Ctx(r.Context())
	ev := log.Warn()
	if appErr.Status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(appErr.Err).
		Str("code", string(appErr.Code)).
		Int("status", appErr.Status).
		Msg(appErr.Message)

	writeJSON(w, appErr.Status, errorBody{Detail: errorDetail{Detail: appErr.Message, Code: appErr.Code}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warn().Err(err).Msg("Failed to write response")
	}
}

// completionError keeps request errors (4xx) as they are. Every other
// orchestrator failure, store outages included, maps onto the LLM error codes.
func completionError(err error) *errx.AppError {
	var appErr *errx.AppError
	if errors.As(err, &appErr) && appErr.Status >= http.StatusBadRequest && appErr.Status < http.StatusInternalServerError {
		return appErr
	}
	return errx.WrapLLM(err, llm.IsTimeout(err))
}
