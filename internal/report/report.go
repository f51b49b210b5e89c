// Package report assembles and formats token-count statistics. It is a
// presentation layer over the core encode result: the token count and the
// raw input bytes go in, formatted text or JSON comes out.
package report

import (
	"bytes"
	"unicode/utf8"
)

// Stats is the per-input summary the CLI reports.
type Stats struct {
	Path       string  `json:"path"`
	Model      string  `json:"model"`
	Encoding   string  `json:"encoding"`
	Tokens     int     `json:"tokens"`
	Characters int     `json:"characters"`
	Lines      int     `json:"lines"`
	SizeBytes  int64   `json:"sizeBytes"`
	TokenRatio float64 `json:"tokensPerChar"`
}

// Collect derives the reportable statistics for one input. Characters are
// Unicode code points; a final line without a trailing newline still counts.
func Collect(path, model, encodingName string, data []byte, tokens int) Stats {
	chars := utf8.RuneCount(data)
	lines := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		lines++
	}

	ratio := 0.0
	if chars > 0 {
		ratio = float64(tokens) / float64(chars)
	}

	return Stats{
		Path:       path,
		Model:      model,
		Encoding:   encodingName,
		Tokens:     tokens,
		Characters: chars,
		Lines:      lines,
		SizeBytes:  int64(len(data)),
		TokenRatio: ratio,
	}
}
