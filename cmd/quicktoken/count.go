package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/quicktoken/internal/config"
	"github.com/example/quicktoken/internal/encoding"
	"github.com/example/quicktoken/internal/report"
	"github.com/example/quicktoken/internal/tokenizer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// loadCodec is a seam for tests; production use goes through the loader.
var loadCodec = loadCodecImpl

func newCountCmd() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "count [file]",
		Short: "Count tokens in a file ('-' or no argument reads stdin)",
		Long: `Count tokens in a file using the configured model's BPE tokenizer.

The input is read as raw bytes; content that is not valid UTF-8 is still
tokenized. The summary reports tokens, characters, lines and size.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, display, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Cache.FetchTimeout)
			defer cancel()

			codec, err := loadCodec(ctx, cfg)
			if err != nil {
				return err
			}

			ids, err := codec.Encode(data)
			if err != nil {
				return err
			}

			stats := report.Collect(display, cfg.Model.Name, codec.Encoding().Name(), data, len(ids))
			return writeCountOutput(cmd.OutOrStdout(), cfg.Output, stats, ids, showIDs)
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Also output the full token ID sequence")

	return cmd
}

func loadCodecImpl(ctx context.Context, cfg config.Config) (*tokenizer.Codec, error) {
	loader, err := encoding.NewLoader(encoding.LoaderOptions{
		CacheDir: cfg.Cache.Dir,
		Offline:  cfg.Cache.Offline,
		Fallback: cfg.Model.FallbackEncoding,
	})
	if err != nil {
		return nil, err
	}

	enc, err := loader.Load(ctx, cfg.Model.Name)
	if err != nil {
		return nil, err
	}

	return tokenizer.New(enc)
}

func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return data, path, nil
}

func writeCountOutput(w io.Writer, out config.OutputConfig, stats report.Stats, ids []int, showIDs bool) error {
	format, err := config.NormalizeFormat(out.Format)
	if err != nil {
		return err
	}

	if format == config.FormatJSON {
		if showIDs {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				report.Stats
				TokenIDs []int `json:"tokenIds"`
			}{Stats: stats, TokenIDs: ids})
		}
		return report.WriteJSON(w, stats)
	}

	if err := report.WriteText(w, stats, colorizeOutput(out.Color)); err != nil {
		return err
	}
	if showIDs {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		if _, err := fmt.Fprintf(w, "  IDs:         %s\n", strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

// colorizeOutput maps the configured color mode onto a concrete decision;
// auto defers to the color package's terminal detection.
func colorizeOutput(mode string) bool {
	normalized, err := config.NormalizeColorMode(mode)
	if err != nil {
		normalized = config.ColorAuto
	}
	switch normalized {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return !color.NoColor
	}
}
