package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/question"
	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
)

const pingTimeout = 3 * time.Second

// PingFunc checks one upstream dependency.
type PingFunc func(ctx context.Context) error

// Routes groups the handlers mounted by NewHTTPServer. Nil members are skipped.
type Routes struct {
	Questions *question.HTTPHandlers
	Feed      http.HandlerFunc
	Pingers   map[string]PingFunc
}

// NewWSUpgrader builds a WebSocket upgrader that accepts the configured CORS origins.
func NewWSUpgrader(cors config.CORS) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(cors.AllowedOrigins, origin)
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewHTTPServer wires the question bank API plus health, ping and metrics routes.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, routes Routes) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := pingDependencies(ctx, routes.Pingers); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			writeJSON(w, http.StatusBadGateway, map[string]any{"pong": false, "error": "upstream error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"pong": true})
	})

	if h := routes.Questions; h != nil {
		allow(mux, "/categories", methods{http.MethodGet: h.ListCategories})
		allow(mux, "/categories/{id}/questions", methods{http.MethodGet: h.QuestionsByCategory})
		allow(mux, "/questions", methods{http.MethodGet: h.ListQuestions, http.MethodPost: h.CreateQuestion})
		allow(mux, "/questions/search", methods{http.MethodPost: h.SearchQuestions})
		allow(mux, "/questions/{id}", methods{http.MethodDelete: h.DeleteQuestion})
		allow(mux, "/quizzes", methods{http.MethodPost: h.PlayQuiz})
	}

	if routes.Feed != nil {
		allow(mux, "/ws/questions", methods{http.MethodGet: routes.Feed})
	} else {
		mux.HandleFunc("/ws/questions", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotImplemented, map[string]any{
				"success": false,
				"error":   http.StatusNotImplemented,
				"message": "question feed disabled",
			})
		})
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondNotFound(w)
	})

	var handler http.Handler = mux
	handler = recoverPanics(handler)
	handler = withCORS(cfg.CORS, handler)
	handler = withRequestLogging(logger, handler)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

type methods map[string]http.HandlerFunc

// allow routes pattern by method and answers anything else with the JSON 405 body.
func allow(mux *http.ServeMux, pattern string, handlers methods) {
	allowed := make([]string, 0, len(handlers))
	for m := range handlers {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allowHeader := strings.Join(allowed, ", ")

	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.Method]; ok {
			h(w, r)
			return
		}
		w.Header().Set("Allow", allowHeader)
		httperrors.RespondMethodNotAllowed(w)
	})
}

func pingDependencies(ctx context.Context, pingers map[string]PingFunc) error {
	for name, ping := range pingers {
		if err := ping(ctx); err != nil {
			return &dependencyError{name: name, err: err}
		}
	}
	return nil
}

type dependencyError struct {
	name string
	err  error
}

func (e *dependencyError) Error() string { return e.name + ": " + e.err.Error() }
func (e *dependencyError) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
