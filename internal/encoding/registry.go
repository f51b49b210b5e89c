package encoding

import (
	"sort"
	"strings"
)

// modelEncodings maps exact model names to their base encoding. Every
// supported alias is enumerated here; an unrecognized model is an error, not
// a silent default.
var modelEncodings = map[string]string{
	// o-series / omni models
	"gpt-4o":      "o200k_base",
	"gpt-4o-mini": "o200k_base",
	"o1":          "o200k_base",
	"o3":          "o200k_base",
	"o4-mini":     "o200k_base",

	// chat models
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
	"gpt-3.5":       "cl100k_base",
	"gpt-35-turbo":  "cl100k_base",

	// base completion models
	"davinci-002": "cl100k_base",
	"babbage-002": "cl100k_base",

	// embeddings
	"text-embedding-ada-002": "cl100k_base",
	"text-embedding-3-small": "cl100k_base",
	"text-embedding-3-large": "cl100k_base",

	// legacy completion models
	"text-davinci-003": "p50k_base",
	"text-davinci-002": "p50k_base",
	"text-davinci-001": "r50k_base",
	"text-curie-001":   "r50k_base",
	"text-babbage-001": "r50k_base",
	"text-ada-001":     "r50k_base",
	"davinci":          "r50k_base",
	"curie":            "r50k_base",
	"babbage":          "r50k_base",
	"ada":              "r50k_base",

	// code models
	"code-davinci-002": "p50k_base",
	"code-davinci-001": "p50k_base",
	"code-cushman-002": "p50k_base",
	"code-cushman-001": "p50k_base",

	// edit models
	"text-davinci-edit-001": "p50k_edit",
	"code-davinci-edit-001": "p50k_edit",

	"gpt2": "r50k_base",
}

// modelPrefixEncodings resolves dated and fine-tuned variants, e.g.
// gpt-4o-2024-08-06 or gpt-3.5-turbo-16k. Longer prefixes are listed first
// so the most specific rule wins.
var modelPrefixEncodings = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4o-", "o200k_base"},
	{"gpt-4.1-", "o200k_base"},
	{"gpt-5-", "o200k_base"},
	{"chatgpt-4o-", "o200k_base"},
	{"o1-", "o200k_base"},
	{"o3-", "o200k_base"},
	{"o4-", "o200k_base"},
	{"ft:gpt-4o", "o200k_base"},
	{"gpt-4-", "cl100k_base"},
	{"gpt-3.5-turbo-", "cl100k_base"},
	{"gpt-35-turbo-", "cl100k_base"},
	{"ft:gpt-4", "cl100k_base"},
	{"ft:gpt-3.5-turbo", "cl100k_base"},
	{"ft:davinci-002", "cl100k_base"},
	{"ft:babbage-002", "cl100k_base"},
}

// EncodingNameForModel resolves a model name (or a base encoding identifier
// used directly) to its base encoding name.
func EncodingNameForModel(model string) (string, bool) {
	if IsEncodingName(model) {
		return model, true
	}
	if name, ok := modelEncodings[model]; ok {
		return name, true
	}
	for _, rule := range modelPrefixEncodings {
		if strings.HasPrefix(model, rule.prefix) {
			return rule.encoding, true
		}
	}
	return "", false
}

// Models lists every exact model alias, sorted.
func Models() []string {
	out := make([]string, 0, len(modelEncodings))
	for model := range modelEncodings {
		out = append(out, model)
	}
	sort.Strings(out)
	return out
}

// ModelEncoding reports the base encoding for an exact model alias.
func ModelEncoding(model string) (string, bool) {
	name, ok := modelEncodings[model]
	return name, ok
}
