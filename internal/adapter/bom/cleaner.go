package bom

import (
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

// Clean strips the provider preamble from a fetched report: everything up to
// and including the first line that is blank after trimming. The file is read
// and rewritten as ISO-8859-1. Without a blank line the file is left untouched
// and a *domain.ParseError is returned.
//
// Cleaning an already cleaned file is not supported.
func Clean(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	rest, err := stripPreamble(path, raw)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(path, rest); err != nil {
		return fmt.Errorf("rewrite report: %w", err)
	}
	return nil
}

func stripPreamble(path string, raw []byte) ([]byte, error) {
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	lines := splitLines(string(text))
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			continue
		}
		rest := strings.Join(lines[i+1:], "")
		out, err := charmap.ISO8859_1.NewEncoder().String(rest)
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return []byte(out), nil
	}
	return nil, &domain.ParseError{Path: path, Msg: "no blank line ends the preamble"}
}

// splitLines splits s after each newline, keeping terminators. A trailing
// newline does not produce an extra empty line.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
