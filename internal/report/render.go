package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// WriteJSON renders the stats as indented JSON.
func WriteJSON(w io.Writer, s Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return nil
}

// WriteText renders a human-readable summary. Colors are emitted only when
// colorize is set; callers decide that from terminal detection and flags.
func WriteText(w io.Writer, s Stats, colorize bool) error {
	header := color.New(color.Bold)
	tokens := color.New(color.FgGreen, color.Bold)
	value := color.New(color.FgCyan)
	ratio := color.New(color.FgYellow)
	model := color.New(color.FgMagenta)
	// The color package disables itself off-TTY; the caller already made
	// the decision, so force each direction explicitly.
	for _, c := range []*color.Color{header, tokens, value, ratio, model} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var err error
	write := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	write("%s\n", header.Sprint(s.Path))
	write("  Tokens:      %s\n", tokens.Sprint(humanize.Comma(int64(s.Tokens))))
	write("  Characters:  %s\n", value.Sprint(humanize.Comma(int64(s.Characters))))
	write("  Lines:       %s\n", value.Sprint(humanize.Comma(int64(s.Lines))))
	write("  Size:        %s\n", value.Sprint(humanize.IBytes(uint64(s.SizeBytes))))
	write("  Ratio:       %s\n", ratio.Sprintf("%.3f tokens/char", s.TokenRatio))
	write("  Model:       %s\n", model.Sprintf("%s (%s)", s.Model, s.Encoding))
	return err
}
