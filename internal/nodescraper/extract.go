package nodescraper

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrNoJSON = errors.New("no JSON object found in scraper output")

// ExtractJSON recovers a JSON object from subprocess output that interleaves
// log lines with the result blob. It scans from the first '{' to its
// balancing '}' and keeps going until a slice that actually decodes is
// found. Best effort: brace counting ignores string contents, which holds up
// because the scraper's own log lines never contain braces.
func ExtractJSON(output []byte) ([]byte, error) {
	search := output
	for {
		start := bytes.IndexByte(search, '{')
		if start < 0 {
			return nil, ErrNoJSON
		}

		depth := 0
		end := -1
		for i := start; i < len(search); i++ {
			switch search[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i
					goto scanned
				}
			}
		}
	scanned:
		if end < 0 {
			return nil, ErrNoJSON
		}

		candidate := search[start : end+1]
		if json.Valid(candidate) {
			return candidate, nil
		}
		search = search[start+1:]
	}
}
