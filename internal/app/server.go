package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/recipechat/internal/chat"
	"github.com/hyperifyio/recipechat/internal/trace"
)

const maxChatBody = 1 << 20

// wireMessage keeps role as a plain string so bad roles surface as 400s
// instead of decoding errors.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []wireMessage `json:"messages"`
}

type chatResponse struct {
	Messages []chat.Message `json:"messages"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", a.handleChat)
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(a.cfg.StaticDir))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return logRequests(mux)
}

func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.Messages == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "messages is required"})
		return
	}
	history := make([]chat.Message, 0, len(req.Messages))
	for i, m := range req.Messages {
		role, err := chat.ParseRole(m.Role)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf("messages[%d]: %v", i, err)})
			return
		}
		history = append(history, chat.Message{Role: role, Content: m.Content})
	}

	updated, err := a.chat.Respond(r.Context(), history)
	if err != nil {
		ev := log.Error().Err(err)
		var pe *chat.ProviderError
		if errors.As(err, &pe) {
			ev = ev.Str("model", pe.Model)
		}
		ev.Msg("chat turn failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}

	resp := chatResponse{Messages: updated}
	a.saveTrace(history, updated)
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) saveTrace(request, response []chat.Message) {
	if a.traces == nil {
		return
	}
	p, err := a.traces.Save(a.now(), trace.Trace{
		Request:  trace.Payload{Messages: request},
		Response: trace.Payload{Messages: response},
	})
	if err != nil {
		log.Warn().Err(err).Msg("trace save failed")
		return
	}
	log.Debug().Str("path", p).Msg("trace saved")
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := filepath.Join(a.cfg.StaticDir, "index.html")
	b, err := os.ReadFile(p)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Frontend not found. Did you forget to build it?"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
