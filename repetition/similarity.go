package repetition

import (
	"strings"
)

const (
	DefaultThreshold        = 2
	DefaultOverlapThreshold = 0.85

	// outputs no longer than this are only compared exactly or by signature
	minOverlapLength = 50
	signatureLength  = 100
	maxLengthDelta   = 0.2
)

func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// WordOverlap is |common words| / max(|words a|, |words b|) over the word
// sets of a and b.
func WordOverlap(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	common := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			common++
		}
	}

	return float64(common) / float64(max(len(wa), len(wb)))
}

// SignatureMatch reports whether a and b differ in length by less than 20%
// of the longer one and share the same first 100 characters.
func SignatureMatch(a, b string) bool {
	longer := max(len(a), len(b))
	if longer == 0 {
		return false
	}

	delta := len(a) - len(b)
	if delta < 0 {
		delta = -delta
	}
	if float64(delta) >= maxLengthDelta*float64(longer) {
		return false
	}

	return prefix(a, signatureLength) == prefix(b, signatureLength)
}

// Similar compares two outputs after normalization. Empty outputs are never
// similar.
func Similar(a, b string, overlapThreshold float64) bool {
	a, b = Normalize(a), Normalize(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if len(a) > minOverlapLength && len(b) > minOverlapLength && WordOverlap(a, b) >= overlapThreshold {
		return true
	}
	return SignatureMatch(a, b)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
