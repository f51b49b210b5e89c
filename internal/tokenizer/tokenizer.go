// Package tokenizer implements byte-pair encoding of raw bytes into token
// IDs. A Codec is built once from an immutable encoding and is safe for
// concurrent use; each Encode call owns its own working state.
//
// Encoding proceeds in three stages: special-token literals are split out
// first (longest match wins, emitted atomically), the remaining spans are
// pretokenized with the model family's pattern, and each pre-token is
// reduced by repeatedly merging the lowest-ranked adjacent pair. Byte spans
// that are not valid UTF-8 bypass the pattern and are merged as raw bytes,
// so every byte sequence is tokenizable.
package tokenizer

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/quicktoken/internal/encoding"
)

// MaxInputBytes is the hard input ceiling, enforced before any encoding
// work begins.
const MaxInputBytes = 512 << 20

// pieceCacheSize bounds the pre-token result cache. Natural text repeats
// pre-tokens heavily, so a small LRU removes most merge work.
const pieceCacheSize = 8192

// InputTooLargeError reports input above MaxInputBytes.
type InputTooLargeError struct {
	Size  int
	Limit int
}

func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("input of %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}

// Codec encodes byte sequences against one encoding.
type Codec struct {
	enc        *encoding.Encoding
	pattern    *regexp2.Regexp
	specials   []string
	specialIDs map[string]int
	cache      *lru.Cache[string, []int]
}

// New compiles the encoding's pretokenization pattern and prepares the
// special-token scanner. It fails if the encoding lacks a token for any
// single byte value, since byte-level coverage is what makes Encode total.
func New(enc *encoding.Encoding) (*Codec, error) {
	pattern, err := regexp2.Compile(enc.Pattern(), regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile pretokenize pattern for %s: %w", enc.Name(), err)
	}

	var b [1]byte
	for i := 0; i < 256; i++ {
		b[0] = byte(i)
		if _, ok := enc.Rank(string(b[:])); !ok {
			return nil, fmt.Errorf("encoding %s has no token for byte 0x%02x", enc.Name(), i)
		}
	}

	specialIDs := enc.Specials()
	specials := make([]string, 0, len(specialIDs))
	for tok := range specialIDs {
		specials = append(specials, tok)
	}
	// Longest first, so a tie at the same position prefers the longer
	// literal.
	sort.Slice(specials, func(i, j int) bool {
		if len(specials[i]) != len(specials[j]) {
			return len(specials[i]) > len(specials[j])
		}
		return specials[i] < specials[j]
	})

	cache, err := lru.New[string, []int](pieceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("build piece cache: %w", err)
	}

	return &Codec{
		enc:        enc,
		pattern:    pattern,
		specials:   specials,
		specialIDs: specialIDs,
		cache:      cache,
	}, nil
}

// Encoding returns the codec's underlying encoding.
func (c *Codec) Encoding() *encoding.Encoding { return c.enc }

// Encode converts data into a token ID sequence. It is a pure function of
// its input: it never fails on content, only on size.
func (c *Codec) Encode(data []byte) ([]int, error) {
	if len(data) > MaxInputBytes {
		return nil, &InputTooLargeError{Size: len(data), Limit: MaxInputBytes}
	}

	ids := make([]int, 0, len(data)/3+1)
	text := string(data)
	for len(text) > 0 {
		pos, lit := c.nextSpecial(text)
		if pos < 0 {
			var err error
			ids, err = c.encodeSpan(text, ids)
			if err != nil {
				return nil, err
			}
			break
		}

		var err error
		ids, err = c.encodeSpan(text[:pos], ids)
		if err != nil {
			return nil, err
		}
		ids = append(ids, c.specialIDs[lit])
		text = text[pos+len(lit):]
	}
	return ids, nil
}

// Count reports the number of tokens Encode would emit for data.
func (c *Codec) Count(data []byte) (int, error) {
	ids, err := c.Encode(data)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Decode reconstructs the byte sequence a token ID sequence stands for.
func (c *Codec) Decode(ids []int) ([]byte, error) {
	out := make([]byte, 0, len(ids)*3)
	for _, id := range ids {
		tok, ok := c.enc.TokenBytes(id)
		if !ok {
			return nil, fmt.Errorf("unknown token id %d for %s", id, c.enc.Name())
		}
		out = append(out, tok...)
	}
	return out, nil
}

// nextSpecial finds the earliest special-token occurrence in text. Specials
// are tried longest first, so at equal positions the longer literal wins.
func (c *Codec) nextSpecial(text string) (int, string) {
	pos, lit := -1, ""
	for _, sp := range c.specials {
		i := strings.Index(text, sp)
		if i >= 0 && (pos < 0 || i < pos) {
			pos, lit = i, sp
		}
	}
	return pos, lit
}

// encodeSpan tokenizes a special-free span. Valid UTF-8 runs go through the
// pretokenization pattern; invalid runs are merged as raw byte pre-tokens.
func (c *Codec) encodeSpan(span string, ids []int) ([]int, error) {
	for len(span) > 0 {
		valid := validPrefix(span)
		if valid > 0 {
			var err error
			ids, err = c.encodeText(span[:valid], ids)
			if err != nil {
				return nil, err
			}
			span = span[valid:]
		}

		invalid := invalidPrefix(span)
		if invalid > 0 {
			ids = c.encodePiece(span[:invalid], ids)
			span = span[invalid:]
		}
	}
	return ids, nil
}

// encodeText splits valid UTF-8 text into pre-tokens and merges each one.
// The pattern's alternatives are exhaustive, so consecutive matches cover
// the text without gaps.
func (c *Codec) encodeText(text string, ids []int) ([]int, error) {
	m, err := c.pattern.FindStringMatch(text)
	if err != nil {
		return nil, fmt.Errorf("pretokenize: %w", err)
	}
	for m != nil {
		ids = c.encodePiece(m.String(), ids)
		m, err = c.pattern.FindNextMatch(m)
		if err != nil {
			return nil, fmt.Errorf("pretokenize: %w", err)
		}
	}
	return ids, nil
}

// encodePiece emits the token IDs for one pre-token. A pre-token that is
// itself a mergeable token becomes that single ID without running the merge
// loop, matching the reference tokenizer.
func (c *Codec) encodePiece(piece string, ids []int) []int {
	if id, ok := c.enc.Rank(piece); ok {
		return append(ids, id)
	}
	if cached, ok := c.cache.Get(piece); ok {
		return append(ids, cached...)
	}
	out := c.mergePiece(piece)
	c.cache.Add(piece, out)
	return append(ids, out...)
}

// validPrefix returns the length of the leading valid UTF-8 run.
func validPrefix(s string) int {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		i += size
	}
	return i
}

// invalidPrefix returns the length of the leading run of bytes that do not
// begin a valid UTF-8 sequence.
func invalidPrefix(s string) int {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !(r == utf8.RuneError && size == 1) {
			break
		}
		i++
	}
	return i
}
