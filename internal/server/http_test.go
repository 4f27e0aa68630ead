package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/db/sqlite"
	"github.com/gokatarajesh/trivia-api/internal/question"
)

func testConfig() *config.App {
	return &config.App{
		HTTPAddr: "127.0.0.1:0",
		CORS: config.CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         3600,
		},
	}
}

func newTestHandler(t *testing.T, pingers map[string]PingFunc) http.Handler {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.UpsertCategory(ctx, question.Category{ID: 1, Type: "Science"}))
	require.NoError(t, store.UpsertCategory(ctx, question.Category{ID: 2, Type: "Art"}))
	for i := 0; i < 3; i++ {
		diff, cat := 1, int64(1)
		_, err := store.InsertQuestion(ctx, question.NewQuestion{Question: "What is H2O?", Answer: "Water", Difficulty: &diff, Category: &cat})
		require.NoError(t, err)
	}

	svc := question.NewService(store, store, question.ServiceOptions{Source: question.NewSeededSource(1)}, zerolog.Nop())
	srv := NewHTTPServer(testConfig(), zerolog.Nop(), Routes{
		Questions: question.NewHTTPHandlers(svc, zerolog.Nop()),
		Pingers:   pingers,
	})
	return srv.Handler
}

func serve(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_Routes(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := serve(h, http.MethodGet, "/questions", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["total_questions"])

	rec = serve(h, http.MethodGet, "/categories/1/questions", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Science", decode(t, rec)["current_category"])

	rec = serve(h, http.MethodPost, "/questions/search", `{"searchTerm":"h2o"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodDelete, "/questions/1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodPost, "/quizzes", `{"previous_questions":[2],"quiz_category":{"id":1}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["question"].(map[string]any)["id"])
}

func TestServer_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil)

	for _, tc := range []struct{ method, target, allow string }{
		{http.MethodPatch, "/questions", "GET, POST"},
		{http.MethodGet, "/questions/search", "POST"},
		{http.MethodGet, "/questions/1", "DELETE"},
		{http.MethodPost, "/categories", "GET"},
		{http.MethodGet, "/quizzes", "POST"},
	} {
		rec := serve(h, tc.method, tc.target, "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.target)
		assert.Equal(t, tc.allow, rec.Header().Get("Allow"))
		assert.Equal(t, map[string]any{"success": false, "error": float64(405), "message": "method not allowed"}, decode(t, rec))
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	rec := serve(newTestHandler(t, nil), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", decode(t, rec)["message"])
}

func TestServer_CORS(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := serve(h, http.MethodOptions, "/questions", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,PATCH,DELETE,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type,Authorization", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = serve(h, http.MethodGet, "/categories", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORSRestrictedOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"http://trivia.example"}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := withCORS(cfg.CORS, ok)

	rec := serve(h, http.MethodGet, "/", "", map[string]string{"Origin": "http://trivia.example"})
	assert.Equal(t, "http://trivia.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(h, http.MethodGet, "/", "", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RequestID(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := serve(h, http.MethodGet, "/healthz", "", map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = serve(h, http.MethodGet, "/healthz", "", nil)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Ping(t *testing.T) {
	healthy := newTestHandler(t, map[string]PingFunc{
		"store": func(context.Context) error { return nil },
	})
	rec := serve(healthy, http.MethodGet, "/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pong":true}`, rec.Body.String())

	broken := newTestHandler(t, map[string]PingFunc{
		"redis": func(context.Context) error { return errors.New("dial tcp: connection refused") },
	})
	rec = serve(broken, http.MethodGet, "/v1/ping", "", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestServer_FeedDisabled(t *testing.T) {
	rec := serve(newTestHandler(t, nil), http.MethodGet, "/ws/questions", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestRecoverPanics(t *testing.T) {
	h := recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := serve(h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal service error has occured", decode(t, rec)["message"])
}

func TestNewWSUpgraderCheckOrigin(t *testing.T) {
	up := NewWSUpgrader(config.CORS{AllowedOrigins: []string{"http://trivia.example"}})

	req := httptest.NewRequest(http.MethodGet, "/ws/questions", nil)
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://trivia.example")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, up.CheckOrigin(req))
}
