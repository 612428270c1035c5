package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/recipechat/internal/chat"
	"github.com/hyperifyio/recipechat/internal/llm"
)

func TestStub_ServesChatHandler(t *testing.T) {
	srv := httptest.NewServer(newMux("stub-model"))
	defer srv.Close()

	p := llm.NewOpenAIProvider(llm.Options{BaseURL: srv.URL + "/v1", APIKey: "x"})
	h := &chat.Handler{Client: p, Model: "stub-model", SystemPrompt: "sys"}
	out, err := h.Respond(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "soup"}})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	last := out[len(out)-1]
	if last.Role != chat.RoleAssistant || !strings.HasPrefix(last.Content, "## ") {
		t.Fatalf("unexpected reply %+v", last)
	}
	if last.Content != strings.TrimSpace(last.Content) {
		t.Fatal("reply should be trimmed")
	}

	models, err := p.ListModels(context.Background())
	if err != nil || len(models.Models) != 1 || models.Models[0].ID != "stub-model" {
		t.Fatalf("ListModels=%+v, %v", models, err)
	}
}

func TestStub_UnknownModel(t *testing.T) {
	srv := httptest.NewServer(newMux("stub-model"))
	defer srv.Close()

	p := llm.NewOpenAIProvider(llm.Options{BaseURL: srv.URL + "/v1", APIKey: "x"})
	h := &chat.Handler{Client: p, Model: "other", SystemPrompt: "sys"}
	_, err := h.Respond(context.Background(), nil)
	var pe *chat.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != 404 {
		t.Fatalf("expected wrapped 404 APIError, got %v", err)
	}
}
