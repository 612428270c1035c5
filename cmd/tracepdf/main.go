// Command tracepdf renders saved chat traces to PDF transcripts for
// annotators.
//
//	tracepdf -in annotation/traces -out annotation/pdf
//	tracepdf -in annotation/traces/trace_20250314_101500_123456.json -out t.pdf
//	tracepdf -font /usr/share/fonts/truetype/dejavu/DejaVuSans.ttf
//
// Without -font (or TRACEPDF_FONT) transcripts use the Helvetica core font,
// which only covers cp1252; Russian replies need a UTF-8 TrueType font.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/recipechat/internal/trace"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		in            string
		out           string
		includeSystem bool
		font          string
	)
	flag.StringVar(&in, "in", "annotation/traces", "Trace file or directory of traces")
	flag.StringVar(&out, "out", "annotation/pdf", "Output PDF file (single trace) or directory")
	flag.BoolVar(&includeSystem, "system", false, "Include the system prompt in transcripts")
	flag.StringVar(&font, "font", os.Getenv("TRACEPDF_FONT"), "UTF-8 TrueType font for transcripts (env TRACEPDF_FONT)")
	flag.Parse()

	n, err := convert(in, out, trace.PDFOptions{IncludeSystem: includeSystem, FontPath: font})
	if err != nil {
		log.Fatal().Err(err).Msg("tracepdf")
	}
	log.Info().Int("written", n).Str("out", out).Msg("done")
}

// convert renders one trace file or every trace in a directory. For a
// directory, PDFs are named after their trace files.
func convert(in, out string, opts trace.PDFOptions) (int, error) {
	info, err := os.Stat(in)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		t, err := trace.Load(in)
		if err != nil {
			return 0, err
		}
		if err := trace.WritePDF(t, out, opts); err != nil {
			return 0, fmt.Errorf("render %s: %w", in, err)
		}
		return 1, nil
	}

	paths, err := trace.List(in)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return 0, err
	}
	n := 0
	for _, p := range paths {
		t, err := trace.Load(p)
		if err != nil {
			log.Warn().Err(err).Str("trace", p).Msg("skipping unreadable trace")
			continue
		}
		name := strings.TrimSuffix(filepath.Base(p), ".json") + ".pdf"
		if err := trace.WritePDF(t, filepath.Join(out, name), opts); err != nil {
			return n, fmt.Errorf("render %s: %w", p, err)
		}
		n++
	}
	return n, nil
}
