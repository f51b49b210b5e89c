package config

import (
	"fmt"
	"strings"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

func NormalizeColorMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	if mode == "" {
		mode = ColorAuto
	}
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf(
			"invalid color mode %q (expected %s|%s|%s)",
			raw, ColorAuto, ColorAlways, ColorNever,
		)
	}
}

func NormalizeFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		format = FormatText
	}
	switch format {
	case FormatText, FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected %s|%s)", raw, FormatText, FormatJSON)
	}
}
