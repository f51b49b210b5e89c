package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/quicktoken/internal/config"
	"github.com/example/quicktoken/internal/encoding"
	"github.com/example/quicktoken/internal/tokenizer"
)

// toyCodec builds a byte-complete codec with a single merged token so tests
// never touch the network or the vocabulary cache.
func toyCodec(t *testing.T) *tokenizer.Codec {
	t.Helper()

	ranks := make(map[string]int, 257)
	for i := 0; i < 256; i++ {
		ranks[string([]byte{byte(i)})] = i
	}
	ranks["hi"] = 256

	enc, err := encoding.New("toy_base", `\S+|\s+`, ranks, nil)
	if err != nil {
		t.Fatalf("build toy encoding: %v", err)
	}
	codec, err := tokenizer.New(enc)
	if err != nil {
		t.Fatalf("build toy codec: %v", err)
	}
	return codec
}

func stubLoadCodec(t *testing.T) {
	t.Helper()
	orig := loadCodec
	t.Cleanup(func() { loadCodec = orig })
	loadCodec = func(_ context.Context, _ config.Config) (*tokenizer.Codec, error) {
		return toyCodec(t), nil
	}
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	origCfg, origLoaded, origFile := activeCfg, cfgLoaded, cfgFile
	t.Cleanup(func() { activeCfg, cfgLoaded, cfgFile = origCfg, origLoaded, origFile })

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestCountCmd_StdinTextOutput(t *testing.T) {
	stubLoadCodec(t)

	out, err := executeCommand(t, "hi hi", "count", "--color", "never")
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	// "hi", " ", "hi" with the toy merge table is 3 tokens.
	if !strings.Contains(out, "Tokens:      3") {
		t.Errorf("unexpected token count in output:\n%s", out)
	}
	if !strings.Contains(out, "stdin") {
		t.Errorf("stdin input not labeled:\n%s", out)
	}
	if !strings.Contains(out, "toy_base") {
		t.Errorf("encoding name missing:\n%s", out)
	}
}

func TestCountCmd_File(t *testing.T) {
	stubLoadCodec(t)

	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, err := executeCommand(t, "", "count", path, "--color", "never")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if !strings.Contains(out, "Tokens:      1") {
		t.Errorf("unexpected token count:\n%s", out)
	}
	if !strings.Contains(out, "input.txt") {
		t.Errorf("file path missing from output:\n%s", out)
	}
}

func TestCountCmd_MissingFile(t *testing.T) {
	stubLoadCodec(t)

	_, err := executeCommand(t, "", "count", filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestCountCmd_JSONOutput(t *testing.T) {
	stubLoadCodec(t)

	out, err := executeCommand(t, "hi", "count", "--format", "json")
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	var got struct {
		Path   string `json:"path"`
		Tokens int    `json:"tokens"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if got.Tokens != 1 || got.Path != "stdin" {
		t.Errorf("got %+v, want 1 token from stdin", got)
	}
}

func TestCountCmd_JSONWithIDs(t *testing.T) {
	stubLoadCodec(t)

	out, err := executeCommand(t, "hi", "count", "--format", "json", "--ids")
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	var got struct {
		Tokens   int   `json:"tokens"`
		TokenIDs []int `json:"tokenIds"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if len(got.TokenIDs) != 1 || got.TokenIDs[0] != 256 {
		t.Errorf("tokenIds = %v, want [256]", got.TokenIDs)
	}
}

func TestCountCmd_TextWithIDs(t *testing.T) {
	stubLoadCodec(t)

	out, err := executeCommand(t, "hi", "count", "--ids", "--color", "never")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if !strings.Contains(out, "IDs:         256") {
		t.Errorf("ID line missing:\n%s", out)
	}
}

func TestCountCmd_InvalidFormatRejected(t *testing.T) {
	stubLoadCodec(t)

	_, err := executeCommand(t, "hi", "count", "--format", "xml")
	if err == nil {
		t.Fatal("expected error for invalid output format")
	}
}

func TestColorizeOutput(t *testing.T) {
	if !colorizeOutput(config.ColorAlways) {
		t.Error("always must colorize")
	}
	if colorizeOutput(config.ColorNever) {
		t.Error("never must not colorize")
	}
}

func TestReadInput_Stdin(t *testing.T) {
	data, display, err := readInput(strings.NewReader("abc"), "-")
	if err != nil {
		t.Fatalf("readInput: %v", err)
	}
	if string(data) != "abc" || display != "stdin" {
		t.Fatalf("got %q from %q", data, display)
	}
}
