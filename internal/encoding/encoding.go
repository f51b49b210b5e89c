// Package encoding resolves model names to immutable BPE encodings.
// An Encoding bundles the merge-rank table, the special-token set and the
// pretokenization pattern for one model family. It is constructed once per
// invocation and is safe for concurrent read access.
package encoding

import (
	"fmt"
)

// Encoding is the immutable tokenization table for one model family.
// The rank of a token doubles as its integer ID, matching the tiktoken
// table format; special tokens carry reserved IDs outside the merge-derived
// range. IDs form a bijection: every ID maps to exactly one byte string.
type Encoding struct {
	name     string
	pattern  string
	ranks    map[string]int
	specials map[string]int
	tokens   map[int]string
}

// New builds an Encoding from a rank table and a special-token set.
// Keys of ranks are raw token byte strings. It fails when two byte strings
// share an ID or when a special token collides with a mergeable token's ID.
func New(name, pattern string, ranks map[string]int, specials map[string]int) (*Encoding, error) {
	if name == "" {
		return nil, fmt.Errorf("encoding name must not be empty")
	}
	if len(ranks) == 0 {
		return nil, fmt.Errorf("encoding %q: empty rank table", name)
	}

	e := &Encoding{
		name:     name,
		pattern:  pattern,
		ranks:    make(map[string]int, len(ranks)),
		specials: make(map[string]int, len(specials)),
		tokens:   make(map[int]string, len(ranks)+len(specials)),
	}

	for tok, id := range ranks {
		if prev, ok := e.tokens[id]; ok {
			return nil, fmt.Errorf("encoding %q: id %d assigned to %q and %q", name, id, prev, tok)
		}
		e.ranks[tok] = id
		e.tokens[id] = tok
	}
	for tok, id := range specials {
		if prev, ok := e.tokens[id]; ok {
			return nil, fmt.Errorf("encoding %q: special id %d assigned to %q and %q", name, id, prev, tok)
		}
		if tok == "" {
			return nil, fmt.Errorf("encoding %q: empty special token literal", name)
		}
		e.specials[tok] = id
		e.tokens[id] = tok
	}

	return e, nil
}

// Name returns the base encoding identifier, e.g. "cl100k_base".
func (e *Encoding) Name() string { return e.name }

// Pattern returns the pretokenization pattern source.
func (e *Encoding) Pattern() string { return e.pattern }

// Rank reports the ID of a mergeable token byte string. Lower IDs merge
// earlier.
func (e *Encoding) Rank(piece string) (int, bool) {
	id, ok := e.ranks[piece]
	return id, ok
}

// Specials returns a copy of the special-token literal to ID mapping.
func (e *Encoding) Specials() map[string]int {
	out := make(map[string]int, len(e.specials))
	for tok, id := range e.specials {
		out[tok] = id
	}
	return out
}

// TokenBytes returns the byte string a token ID stands for, covering both
// mergeable and special tokens.
func (e *Encoding) TokenBytes(id int) ([]byte, bool) {
	tok, ok := e.tokens[id]
	if !ok {
		return nil, false
	}
	return []byte(tok), true
}

// NumTokens reports the total ID space size, specials included.
func (e *Encoding) NumTokens() int { return len(e.tokens) }
