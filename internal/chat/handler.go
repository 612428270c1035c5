package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/recipechat/internal/cache"
	"github.com/hyperifyio/recipechat/internal/llm"
)

// Handler runs one conversation turn against a completion provider.
// All fields are set once at startup and only read afterwards, so a single
// Handler may serve concurrent requests.
type Handler struct {
	Client llm.Client
	Model  string
	// SystemPrompt is the content of the system message synthesized when the
	// history does not already start with one.
	SystemPrompt string
	// Cache, when set, stores replies keyed by model and full message list.
	Cache *cache.ReplyCache
	// CacheOnly returns from cache and fails fast if missing.
	CacheOnly bool
}

// Respond ensures a system message leads the history, asks the provider for
// the next assistant turn and returns the extended history. The caller's
// slice is never modified. On error no partial history is returned.
func (h *Handler) Respond(ctx context.Context, history []Message) ([]Message, error) {
	if h.Client == nil || strings.TrimSpace(h.Model) == "" {
		return nil, errors.New("chat handler not configured")
	}
	if err := ValidateHistory(history); err != nil {
		return nil, err
	}
	working := h.withSystem(history)

	var key string
	if h.Cache != nil {
		key = h.cacheKey(working)
		raw, ok, err := h.Cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("reply cache read failed")
			if h.CacheOnly {
				return nil, fmt.Errorf("reply cache: %w", err)
			}
		}
		if ok {
			var out struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(raw, &out); err == nil {
				log.Debug().Str("model", h.Model).Int("messages", len(working)).Msg("reply served from cache")
				return appendReply(working, out.Content), nil
			}
		}
	}
	if h.CacheOnly {
		return nil, ErrCacheMiss
	}

	log.Info().Str("model", h.Model).Int("messages", len(working)).Msg("using model")
	resp, err := h.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    h.Model,
		Messages: toOpenAI(working),
	})
	if err != nil {
		return nil, &ProviderError{Model: h.Model, Err: err}
	}
	reply, err := replyText(h.Model, resp)
	if err != nil {
		return nil, err
	}

	if h.Cache != nil {
		payload, _ := json.Marshal(map[string]string{"content": reply})
		if err := h.Cache.Save(ctx, key, payload); err != nil {
			log.Warn().Err(err).Msg("reply cache save failed")
		}
	}
	return appendReply(working, reply), nil
}

// replyText extracts choices[0].message.content. go-openai decodes a missing
// message or a null content as "", so empty text is treated as malformed.
func replyText(model string, resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Model: model, Reason: "no choices"}
	}
	msg := resp.Choices[0].Message
	if msg.Role == "" && msg.Content == "" {
		return "", &MalformedResponseError{Model: model, Reason: "choice has no message"}
	}
	reply := strings.TrimSpace(msg.Content)
	if reply != "" {
		return reply, nil
	}
	switch {
	case len(msg.ToolCalls) > 0 || msg.FunctionCall != nil:
		return "", &MalformedResponseError{Model: model, Reason: "message carries a tool call instead of text"}
	case len(msg.MultiContent) > 0:
		return "", &MalformedResponseError{Model: model, Reason: "message content is not plain text"}
	}
	return "", &MalformedResponseError{Model: model, Reason: "message has no content"}
}

func (h *Handler) withSystem(history []Message) []Message {
	if len(history) > 0 && history[0].Role == RoleSystem {
		out := make([]Message, len(history), len(history)+1)
		copy(out, history)
		return out
	}
	out := make([]Message, 0, len(history)+2)
	out = append(out, Message{Role: RoleSystem, Content: h.SystemPrompt})
	return append(out, history...)
}

func (h *Handler) cacheKey(working []Message) string {
	b, _ := json.Marshal(working)
	return cache.KeyFrom(h.Model, string(b))
}

func appendReply(working []Message, content string) []Message {
	return append(working, Message{Role: RoleAssistant, Content: content})
}
