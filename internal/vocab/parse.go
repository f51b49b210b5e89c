package vocab

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
)

// ParseRanks decodes the .tiktoken table format: one "base64-token rank"
// pair per line. Ranks must be dense enough to act as token IDs, so the
// parser rejects duplicate tokens and duplicate ranks.
func ParseRanks(data []byte) (map[string]int, error) {
	ranks := make(map[string]int, 100_000)
	seen := make(map[int]bool, 100_000)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		sep := bytes.IndexByte(line, ' ')
		if sep < 0 {
			return nil, fmt.Errorf("line %d: missing rank field", lineNo)
		}

		token, err := base64.StdEncoding.DecodeString(string(line[:sep]))
		if err != nil {
			return nil, fmt.Errorf("line %d: decode token: %w", lineNo, err)
		}
		if len(token) == 0 {
			return nil, fmt.Errorf("line %d: empty token", lineNo)
		}

		rank, err := strconv.Atoi(string(line[sep+1:]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse rank: %w", lineNo, err)
		}
		if rank < 0 {
			return nil, fmt.Errorf("line %d: negative rank %d", lineNo, rank)
		}

		key := string(token)
		if _, dup := ranks[key]; dup {
			return nil, fmt.Errorf("line %d: duplicate token", lineNo)
		}
		if seen[rank] {
			return nil, fmt.Errorf("line %d: duplicate rank %d", lineNo, rank)
		}
		ranks[key] = rank
		seen[rank] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan table: %w", err)
	}
	if len(ranks) == 0 {
		return nil, fmt.Errorf("empty rank table")
	}
	return ranks, nil
}
