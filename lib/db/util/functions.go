package util

import (
	"strings"
)

// --------------------------------------------------------------------------
// Key Tokenization Functions
// --------------------------------------------------------------------------

// SplitKey splits a raw key at the first occurrence of the delimiter.
// The text before the delimiter is the namespace, the remainder is the path
// stored below it. The namespaced return value reports whether the delimiter
// was present at all: a key without the delimiter addresses a flat entry.
func SplitKey(key string, delimiter byte) (namespace, path string, namespaced bool) {
	if idx := strings.IndexByte(key, delimiter); idx >= 0 {
		return key[:idx], key[idx+1:], true
	}
	return key, "", false
}

// SplitSegments tokenizes a path into its non-empty segments.
// Leading, trailing and consecutive delimiters produce empty segments, which
// are dropped. The returned slice is nil if no non-empty segment remains.
func SplitSegments(path string, delimiter byte) []string {
	var segments []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == delimiter {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	return segments
}
