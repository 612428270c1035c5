package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/hyperifyio/recipechat/internal/chat"
)

// findUTF8Font returns a Cyrillic-capable TTF: the bundled test font, then
// TRACEPDF_FONT or common system locations.
func findUTF8Font(t *testing.T) string {
	t.Helper()
	candidates := []string{
		filepath.Join("testdata", "DejaVuSansCondensed.ttf"),
		os.Getenv("TRACEPDF_FONT"),
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/local/share/fonts/DejaVuSans.ttf",
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	t.Skip("no UTF-8 TTF font available; set TRACEPDF_FONT")
	return ""
}

func utf16BE(s string) []byte {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = append(b, byte(u>>8), byte(u))
	}
	return b
}

func renderBytes(t *testing.T, tr Trace, opts PDFOptions) []byte {
	t.Helper()
	opts.uncompressed = true
	pdf, err := renderPDF(tr, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	return buf.Bytes()
}

func cyrillicTrace() Trace {
	return Trace{Response: Payload{Messages: []chat.Message{
		{Role: chat.RoleUser, Content: "суп?"},
		{Role: chat.RoleAssistant, Content: "## Гаспачо\n\nИнгредиенты: томаты"},
	}}}
}

func TestRenderPDF_UTF8FontKeepsCyrillic(t *testing.T) {
	font := findUTF8Font(t)
	raw := renderBytes(t, cyrillicTrace(), PDFOptions{FontPath: font})
	for _, word := range []string{"Гаспачо", "Ингредиенты"} {
		if !bytes.Contains(raw, utf16BE(word)) {
			t.Fatalf("PDF content stream lacks %q glyph codes", word)
		}
	}
	if bytes.Contains(raw, []byte("(.......)")) {
		t.Fatal("Cyrillic heading was replaced by placeholders")
	}
}

func TestRenderPDF_CoreFontDegradesCyrillic(t *testing.T) {
	raw := renderBytes(t, cyrillicTrace(), PDFOptions{})
	if bytes.Contains(raw, utf16BE("Гаспачо")) {
		t.Fatal("core font path should not embed UTF-16 text")
	}
}

func TestWritePDF_MissingFont(t *testing.T) {
	out := filepath.Join(t.TempDir(), "t.pdf")
	err := WritePDF(cyrillicTrace(), out, PDFOptions{FontPath: filepath.Join(t.TempDir(), "nope.ttf")})
	if err == nil {
		t.Fatal("expected error for missing font file")
	}
}
