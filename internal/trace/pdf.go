package trace

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/recipechat/internal/chat"
)

const transcriptFont = "Transcript"

// PDFOptions controls transcript rendering.
type PDFOptions struct {
	// IncludeSystem keeps system messages in the transcript.
	IncludeSystem bool
	// FontPath points to a UTF-8 TrueType font (e.g. DejaVuSans.ttf). Without
	// it the core Helvetica font is used, which only covers cp1252, so
	// Cyrillic replies print as placeholders.
	FontPath string

	uncompressed bool
}

// WritePDF renders the response history of t as a transcript. Each message
// gets a role heading; Markdown headings inside content are set in bold.
func WritePDF(t Trace, outPath string, opts PDFOptions) error {
	pdf, err := renderPDF(t, opts)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}

func renderPDF(t Trace, opts PDFOptions) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if opts.uncompressed {
		pdf.SetCompression(false)
	}
	family := "Helvetica"
	tr := func(s string) string { return s }
	if p := strings.TrimSpace(opts.FontPath); p != "" {
		pdf.AddUTF8Font(transcriptFont, "", p)
		pdf.AddUTF8Font(transcriptFont, "B", p)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load font %s: %w", p, err)
		}
		family = transcriptFont
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.SetFont(family, "", 11)
	pdf.AddPage()

	msgs := t.Response.Messages
	if len(msgs) == 0 {
		msgs = t.Request.Messages
	}
	for _, m := range msgs {
		if m.Role == chat.RoleSystem && !opts.IncludeSystem {
			continue
		}
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(0, 8, roleLabel(m.Role), "B", 1, "L", false, 0, "")
		pdf.SetFont(family, "", 11)
		writeContent(pdf, family, tr, m.Content)
		pdf.Ln(4)
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return pdf, nil
}

func roleLabel(r chat.Role) string {
	switch r {
	case chat.RoleSystem:
		return "System"
	case chat.RoleUser:
		return "User"
	default:
		return "Assistant"
	}
}

func writeContent(pdf *gofpdf.Fpdf, family string, tr func(string) string, content string) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(3)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			pdf.SetFont(family, "B", 11)
			pdf.MultiCell(0, 6, tr(text), "", "L", false)
			pdf.SetFont(family, "", 11)
			continue
		}
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
	}
}
