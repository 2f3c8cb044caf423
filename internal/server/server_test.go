package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfinance/ai-service/internal/agent/llm"
	"github.com/tallyfinance/ai-service/internal/agent/model"
	"github.com/tallyfinance/ai-service/internal/agent/orchestrator"
	"github.com/tallyfinance/ai-service/internal/agent/prompts"
	"github.com/tallyfinance/ai-service/internal/agent/repo"
	"github.com/tallyfinance/ai-service/internal/agent/tools"
	errx "github.com/tallyfinance/ai-service/internal/core/error"
)

type fakeOrchestrator struct {
	a    *model.PhaseAResponse
	b    *model.PhaseBResponse
	err  error
	reqA *model.PhaseARequest
	reqB *model.PhaseBRequest
}

func (f *fakeOrchestrator) PhaseA(_ context.Context, req *model.PhaseARequest) (*model.PhaseAResponse, error) {
	f.reqA = req
	return f.a, f.err
}

func (f *fakeOrchestrator) PhaseB(_ context.Context, req *model.PhaseBRequest) (*model.PhaseBResponse, error) {
	f.reqB = req
	return f.b, f.err
}

func newTestServer(orch Orchestrator) *Server {
	return New(orch, tools.Default(), Info{Version: "1.0.0", Model: "gpt-4o-mini"}, model.ServerConfig{
		Addr:            ":0",
		EndpointTimeout: 30 * time.Second,
	})
}

func do(t *testing.T, s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestOrchestrate_PhaseA(t *testing.T) {
	text := "¿Cuánto gastaste?"
	orch := &fakeOrchestrator{a: &model.PhaseAResponse{
		Phase:         model.PhaseA,
		ResponseType:  model.ResponseClarification,
		Clarification: &text,
	}}
	s := newTestServer(orch)

	rec := do(t, s, http.MethodPost, "/orchestrate",
		`{"phase":"A","user_text":"gasté en comida","user_context":{"user_id":"u-1"},"tools":[]}`,
		HeaderCorrelationID, "abc123")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", rec.Header().Get(HeaderCorrelationID))
	assert.JSONEq(t,
		`{"phase":"A","response_type":"clarification","tool_call":null,"clarification":"¿Cuánto gastaste?","direct_reply":null}`,
		rec.Body.String())
	require.NotNil(t, orch.reqA)
	assert.Equal(t, "u-1", orch.reqA.UserContext.UserID)
}

func TestOrchestrate_GeneratesCorrelationID(t *testing.T) {
	s := newTestServer(&fakeOrchestrator{})

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get(HeaderCorrelationID), correlationIDLen)
}

func TestOrchestrate_PhaseB(t *testing.T) {
	opening := "listo"
	orch := &fakeOrchestrator{b: &model.PhaseBResponse{
		Phase:        model.PhaseB,
		FinalMessage: "Listo, anotado.",
		NewOpening:   &opening,
	}}
	s := newTestServer(orch)

	rec := do(t, s, http.MethodPost, "/orchestrate", `{
		"phase":"B",
		"tool_name":"register_transaction",
		"action_result":{"ok":true,"action":"register_transaction","data":{"amount":5000}},
		"user_context":{"user_id":"u-1"},
		"runtime_context":{"summary":"Consultó su balance."}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"phase":"B","final_message":"Listo, anotado.","new_summary":null,"did_nudge":false,"nudge_type":null,"new_opening":"listo"}`,
		rec.Body.String())
	require.NotNil(t, orch.reqB.RuntimeContext)
	assert.True(t, orch.reqB.RuntimeContext.CanNudge)
	assert.True(t, orch.reqB.RuntimeContext.CanBudgetWarning)
}

func TestOrchestrate_RequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errx.Code
	}{
		{"unknown phase", `{"phase":"C","user_context":{"user_id":"u"}}`, http.StatusBadRequest, errx.CodeInvalidPhase},
		{"missing phase", `{"user_context":{"user_id":"u"}}`, http.StatusBadRequest, errx.CodeInvalidPhase},
		{"non-string phase", `{"phase":1}`, http.StatusBadRequest, errx.CodeInvalidPhase},
		{"blank user text", `{"phase":"A","user_text":"   ","user_context":{"user_id":"u"}}`, http.StatusBadRequest, errx.CodeMissingUserText},
		{"missing action result", `{"phase":"B","tool_name":"greeting","user_context":{"user_id":"u"}}`, http.StatusBadRequest, errx.CodeMissingActionResult},
		{"malformed json", `{"phase":`, http.StatusUnprocessableEntity, errx.CodeInvalidRequest},
		{"bad tone", `{"phase":"A","user_text":"hola","user_context":{"user_id":"u","personality":{"tone":"sarcastic","intensity":0.5}}}`, http.StatusUnprocessableEntity, errx.CodeInvalidRequest},
		{"bad mood hint", `{"phase":"B","tool_name":"greeting","action_result":{"ok":true},"user_context":{"user_id":"u"},"runtime_context":{"mood_hint":3}}`, http.StatusUnprocessableEntity, errx.CodeInvalidRequest},
		{"missing tool name", `{"phase":"B","action_result":{"ok":true},"user_context":{"user_id":"u"}}`, http.StatusUnprocessableEntity, errx.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &fakeOrchestrator{}
			rec := do(t, newTestServer(orch), http.MethodPost, "/orchestrate", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
			assert.Nil(t, orch.reqA)
			assert.Nil(t, orch.reqB)
		})
	}
}

func TestOrchestrate_LLMErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errx.Code
	}{
		{
			name:   "timeout",
			err:    &llm.Error{Kind: llm.KindTimeout, Attempts: 2, Err: context.DeadlineExceeded},
			status: http.StatusServiceUnavailable,
			code:   errx.CodeLLMTimeout,
		},
		{
			name:   "generic",
			err:    &llm.Error{Kind: llm.KindGeneric, Attempts: 2, Err: errors.New(strings.Repeat("x", 200))},
			status: http.StatusInternalServerError,
			code:   errx.CodeLLMError,
		},
		{
			name:   "redis outage",
			err:    errx.WrapRedis(errors.New("connection refused")),
			status: http.StatusInternalServerError,
			code:   errx.CodeLLMError,
		},
		{
			name:   "request error kept",
			err:    errx.BadRequest(errx.CodeInvalidPhase, "bad phase"),
			status: http.StatusBadRequest,
			code:   errx.CodeInvalidPhase,
		},
		{
			name:   "unclassified",
			err:    errors.New("template exploded"),
			status: http.StatusInternalServerError,
			code:   errx.CodeLLMError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeOrchestrator{err: tt.err})
			rec := do(t, s, http.MethodPost, "/orchestrate", `{"phase":"A","user_text":"hola","user_context":{"user_id":"u"}}`)

			assert.Equal(t, tt.status, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tt.code, detail.Code)
			assert.LessOrEqual(t, len([]rune(detail.Detail)), 100)
		})
	}
}

func TestInfoEndpoints(t *testing.T) {
	s := newTestServer(&fakeOrchestrator{})

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","model":"gpt-4o-mini","version":"1.0.0"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"ai-service","version":"1.0.0"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tools []model.ToolSchema `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Tools, 6)

	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tally_ai_requests_total")
}

func TestHTTPServerTimeouts(t *testing.T) {
	s := newTestServer(&fakeOrchestrator{})
	srv := s.HTTPServer(50 * time.Second)

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 30*time.Second, srv.ReadTimeout)
	assert.Equal(t, 80*time.Second, srv.WriteTimeout)
}

type scriptedCompleter struct {
	decision map[string]any
	reply    string
}

func (c scriptedCompleter) JSON(context.Context, []*schema.Message, float32) (map[string]any, error) {
	return c.decision, nil
}

func (c scriptedCompleter) Text(context.Context, []*schema.Message, float32) (string, error) {
	return c.reply, nil
}

func TestOrchestrate_EndToEnd(t *testing.T) {
	orch := orchestrator.New(
		scriptedCompleter{
			decision: map[string]any{
				"response_type": "tool_call",
				"tool_call":     map[string]any{"name": "register_transaction", "args": map[string]any{"amount": 5000, "category": "Comida"}},
			},
			reply: "Anotado, 5 lucas en comida.",
		},
		prompts.NewRenderer(prompts.EmbeddedStore{}),
		orchestrator.Config{DefaultTools: tools.Default()},
	)
	s := newTestServer(orch)

	rec := do(t, s, http.MethodPost, "/orchestrate", `{"phase":"A","user_text":"gasté 5 lucas en comida","user_context":{"user_id":"u"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var a model.PhaseAResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	require.NotNil(t, a.ToolCall)
	assert.Equal(t, "register_transaction", a.ToolCall.Name)
	assert.EqualValues(t, 5000, a.ToolCall.Args["amount"])

	rec = do(t, s, http.MethodPost, "/orchestrate", `{
		"phase":"B",
		"tool_name":"register_transaction",
		"action_result":{"ok":true,"data":{"amount":5000,"category":"Comida"}},
		"user_context":{"user_id":"u"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var b model.PhaseBResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, "Anotado, 5 lucas en comida.", b.FinalMessage)
	require.NotNil(t, b.NewSummary)
	assert.Equal(t, "Registró $5,000 en Comida.", *b.NewSummary)
	require.NotNil(t, b.NewOpening)
	assert.Equal(t, "anotado", *b.NewOpening)
}

type downKV struct{}

func (downKV) Get(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", errors.New("dial tcp 127.0.0.1:6379: connection refused"))
}

func (downKV) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("", errors.New("dial tcp 127.0.0.1:6379: connection refused"))
}

func TestOrchestrate_TemplateStoreOutageIsLLMError(t *testing.T) {
	store := repo.NewFallbackStore(repo.NewRedisTemplateStore(downKV{}, "prompt"), prompts.EmbeddedStore{})
	orch := orchestrator.New(
		scriptedCompleter{decision: map[string]any{"response_type": "direct_reply", "direct_reply": "hola"}},
		prompts.NewRenderer(store),
		orchestrator.Config{DefaultTools: tools.Default()},
	)

	rec := do(t, newTestServer(orch), http.MethodPost, "/orchestrate", `{"phase":"A","user_text":"hola","user_context":{"user_id":"u"}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, errx.CodeLLMError, detail.Code)
	assert.Contains(t, detail.Detail, "LLM error")
}
