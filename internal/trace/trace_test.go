package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/recipechat/internal/chat"
)

func sample() Trace {
	return Trace{
		Request: Payload{Messages: []chat.Message{{Role: chat.RoleUser, Content: "soup?"}}},
		Response: Payload{Messages: []chat.Message{
			{Role: chat.RoleSystem, Content: "be helpful"},
			{Role: chat.RoleUser, Content: "soup?"},
			{Role: chat.RoleAssistant, Content: "## Gazpacho\n\nIngredients: tomato, cucumber"},
		}},
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2025, 3, 14, 10, 15, 0, 123456789, time.UTC)
	if got, want := FileName(ts), "trace_20250314_101500_123456.json"; got != want {
		t.Fatalf("FileName=%q, want %q", got, want)
	}
}

func TestStore_SaveLoadList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "annotation", "traces")
	s := &Store{Dir: dir}
	t1 := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	p2, err := s.Save(t2, sample())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	p1, err := s.Save(t1, Trace{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := List(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 2 || paths[0] != p1 || paths[1] != p2 {
		t.Fatalf("List=%v, want [%s %s]", paths, p1, p2)
	}

	got, err := Load(p2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Response.Messages) != 3 || got.Response.Messages[2].Role != chat.RoleAssistant {
		t.Fatalf("unexpected trace %+v", got)
	}
	raw, _ := os.ReadFile(p2)
	if !strings.Contains(string(raw), `"request":{"messages":[`) {
		t.Fatalf("unexpected on-disk shape: %s", raw)
	}
}

func TestStore_Unconfigured(t *testing.T) {
	var s *Store
	if _, err := s.Save(time.Now(), Trace{}); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestLoad_Malformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "trace_x.json")
	if err := os.WriteFile(p, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWritePDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trace.pdf")
	if err := WritePDF(sample(), out, PDFOptions{IncludeSystem: true}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !strings.HasPrefix(string(b), "%PDF-") {
		t.Fatalf("output is not a PDF")
	}
}
