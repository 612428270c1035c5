// Package trace persists request/response pairs of chat turns as JSON files
// for later annotation, and renders them to PDF transcripts.
package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hyperifyio/recipechat/internal/chat"
)

// Payload is the body shape of both the chat request and response.
type Payload struct {
	Messages []chat.Message `json:"messages"`
}

// Trace is one saved chat turn.
type Trace struct {
	Request  Payload `json:"request"`
	Response Payload `json:"response"`
}

// Store writes traces under Dir.
type Store struct {
	Dir string
}

// FileName returns the trace file name for a timestamp,
// e.g. trace_20250314_101500_123456.json.
func FileName(ts time.Time) string {
	return "trace_" + ts.Format("20060102_150405") + fmt.Sprintf("_%06d", ts.Nanosecond()/1000) + ".json"
}

// Save writes t as <Dir>/trace_<timestamp>.json and returns the path.
func (s *Store) Save(now time.Time, t Trace) (string, error) {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return "", errors.New("trace dir not configured")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create trace dir: %w", err)
	}
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode trace: %w", err)
	}
	p := filepath.Join(s.Dir, FileName(now))
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	return p, nil
}

// Load reads a single trace file.
func Load(path string) (Trace, error) {
	var t Trace
	b, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("parse trace %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// List returns trace file paths in dir, oldest first. The timestamped names
// sort chronologically.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "trace_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}
