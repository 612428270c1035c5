// Command openai-stub is a tiny OpenAI-compatible server for local runs and
// demos. It answers every chat completion with a canned recipe.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const cannedRecipe = "## Гаспачо по-андалузски\n\nИнгредиенты:\n- 1 кг спелых томатов\n- 1 огурец\n- 1 зелёный перец\n- 1 зубчик чеснока\n- оливковое масло, херес, соль"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, openai.ModelsList{Models: []openai.Model{{ID: model, Object: "model"}}})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Model != model {
			writeError(w, http.StatusNotFound, "model "+req.Model+" not found")
			return
		}
		if len(req.Messages) == 0 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
			writeError(w, http.StatusBadRequest, "expected a leading system message")
			return
		}
		log.Debug().Int("messages", len(req.Messages)).Msg("chat completion")
		writeJSON(w, http.StatusOK, openai.ChatCompletionResponse{
			ID:      "chatcmpl-stub",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   model,
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				FinishReason: openai.FinishReasonStop,
				// leading newline mimics providers that pad replies
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "\n" + cannedRecipe + "\n"},
			}},
		})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": msg, "type": "invalid_request_error"},
	})
}
