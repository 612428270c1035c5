package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/recipechat/internal/cache"
	"github.com/hyperifyio/recipechat/internal/llm"
)

// rawProvider serves body verbatim from /v1/chat/completions.
func rawProvider(t *testing.T, body string) llm.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return llm.NewOpenAIProvider(llm.Options{BaseURL: srv.URL + "/v1", APIKey: "sk-test"})
}

func TestRespond_MalformedProviderBodies(t *testing.T) {
	cases := map[string]string{
		"no choices":     `{"choices":[]}`,
		"no message":     `{"choices":[{"index":0}]}`,
		"null content":   `{"choices":[{"index":0,"message":{"role":"assistant","content":null}}]}`,
		"blank content":  `{"choices":[{"index":0,"message":{"role":"assistant","content":"  \n"}}]}`,
		"tool call only": `{"choices":[{"index":0,"message":{"role":"assistant","content":null,"tool_calls":[{"id":"c1","type":"function","function":{"name":"lookup","arguments":"{}"}}]}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			h := &Handler{Client: rawProvider(t, body), Model: "test-model", SystemPrompt: testPrompt}
			out, err := h.Respond(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
			if out != nil {
				t.Fatalf("expected no history, got %+v", out)
			}
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestRespond_WellFormedProviderBody(t *testing.T) {
	body := `{"choices":[{"index":0,"message":{"role":"assistant","content":"  ## Гаспачо  "}}]}`
	h := &Handler{Client: rawProvider(t, body), Model: "test-model", SystemPrompt: testPrompt}
	out, err := h.Respond(context.Background(), nil)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if got := out[len(out)-1].Content; got != "## Гаспачо" {
		t.Fatalf("reply=%q", got)
	}
}

func TestReplyText_Reasons(t *testing.T) {
	resp := openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleAssistant,
			MultiContent: []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: "x"}},
		},
	}}}
	_, err := replyText("m", resp)
	var me *MalformedResponseError
	if !errors.As(err, &me) || me.Reason != "message content is not plain text" {
		t.Fatalf("unexpected error %v", err)
	}
}

func unusableCacheDir(t *testing.T) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// a directory beneath a regular file can never be created
	return filepath.Join(f, "cache")
}

func TestRespond_CacheReadErrorInCacheOnlyMode(t *testing.T) {
	sc := &stubClient{reply: "x"}
	h := newHandler(sc)
	h.Cache = &cache.ReplyCache{Dir: unusableCacheDir(t)}
	h.CacheOnly = true
	_, err := h.Respond(context.Background(), nil)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected the underlying cache error, got %v", err)
	}
	if sc.calls != 0 {
		t.Fatal("cache-only mode must not call the provider")
	}
}

func TestRespond_CacheReadErrorFallsThrough(t *testing.T) {
	sc := &stubClient{reply: "fresh"}
	h := newHandler(sc)
	h.Cache = &cache.ReplyCache{Dir: unusableCacheDir(t)}
	out, err := h.Respond(context.Background(), nil)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if sc.calls != 1 || out[len(out)-1].Content != "fresh" {
		t.Fatalf("expected provider reply, calls=%d out=%+v", sc.calls, out)
	}
}
