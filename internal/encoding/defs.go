package encoding

import "sort"

// definition is the static, versioned data for one base encoding: the
// pretokenization pattern, the reserved special tokens, and the
// content-addressed location of the rank table.
type definition struct {
	pattern  string
	specials map[string]int
	url      string
	sha256   string
}

// Pretokenization patterns per model family. The GPT-2 era pattern and its
// successors all rely on the negative lookahead \s+(?!\S), which keeps
// trailing whitespace attached to the final whitespace run; stdlib regexp
// cannot express it, so these compile under dlclark/regexp2.
const (
	gpt2Pattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

	cl100kPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`

	o200kPattern = `[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?` +
		`|[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?` +
		`|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n/]*|\s*[\r\n]+|\s+(?!\S)|\s+`
)

const (
	endOfText   = "<|endoftext|>"
	fimPrefix   = "<|fim_prefix|>"
	fimMiddle   = "<|fim_middle|>"
	fimSuffix   = "<|fim_suffix|>"
	endOfPrompt = "<|endofprompt|>"
)

const vocabBaseURL = "https://openaipublic.blob.core.windows.net/encodings/"

// definitions enumerates every supported base encoding. Checksums pin the
// published .tiktoken rank tables; a table that fails verification is
// rejected, never silently accepted.
var definitions = map[string]definition{
	"o200k_base": {
		pattern: o200kPattern,
		specials: map[string]int{
			endOfText:   199999,
			endOfPrompt: 200018,
		},
		url:    vocabBaseURL + "o200k_base.tiktoken",
		sha256: "446a9538cb6c348e3516120d7c08b09f57c36495e2acfffe59a5bf8b0cfb1a2d",
	},
	"cl100k_base": {
		pattern: cl100kPattern,
		specials: map[string]int{
			endOfText:   100257,
			fimPrefix:   100258,
			fimMiddle:   100259,
			fimSuffix:   100260,
			endOfPrompt: 100276,
		},
		url:    vocabBaseURL + "cl100k_base.tiktoken",
		sha256: "223921b76ee99bde995b7ff738513eef100fb51d18c93f86318e524c02aca4ee",
	},
	"p50k_base": {
		pattern: gpt2Pattern,
		specials: map[string]int{
			endOfText: 50256,
		},
		url:    vocabBaseURL + "p50k_base.tiktoken",
		sha256: "94b5ca7dff4d00767bc256fdd1b27e5b17361d7b8a5f968547f9f23eb70d2069",
	},
	// p50k_edit shares the p50k_base rank table and adds the FIM specials.
	"p50k_edit": {
		pattern: gpt2Pattern,
		specials: map[string]int{
			endOfText: 50256,
			fimPrefix: 50281,
			fimMiddle: 50282,
			fimSuffix: 50283,
		},
		url:    vocabBaseURL + "p50k_base.tiktoken",
		sha256: "94b5ca7dff4d00767bc256fdd1b27e5b17361d7b8a5f968547f9f23eb70d2069",
	},
	"r50k_base": {
		pattern: gpt2Pattern,
		specials: map[string]int{
			endOfText: 50256,
		},
		url:    vocabBaseURL + "r50k_base.tiktoken",
		sha256: "306cd27f03c1a714eca7108e03d66b7dc042abe8c258b44c199a7ed9838dd930",
	},
}

// Source describes where a base encoding's rank table comes from.
type Source struct {
	Name   string
	URL    string
	SHA256 string
}

// Sources lists every base encoding with its pinned table location, sorted
// by name.
func Sources() []Source {
	out := make([]Source, 0, len(definitions))
	for name, def := range definitions {
		out = append(out, Source{Name: name, URL: def.url, SHA256: def.sha256})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names lists the supported base encoding identifiers, sorted.
func Names() []string {
	out := make([]string, 0, len(definitions))
	for name := range definitions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsEncodingName reports whether name is a base encoding identifier rather
// than a model name.
func IsEncodingName(name string) bool {
	_, ok := definitions[name]
	return ok
}
