package onvista

import (
	"regexp"
	"strings"

	"github.com/wonny/warrantscan/internal/names"
)

// Identity matching thresholds
const (
	TokenOverlapThreshold = 0.6  // share of expected tokens found in the actual name
	SimilarityThreshold   = 0.82 // character similarity ratio, last resort
	MinTokenLength        = 3    // shorter tokens are ignored for overlap
	MinFuzzyNameLength    = 5    // fuzzy checks only for names longer than 4 chars
	MinIdentityNameLength = 3    // shorter expected names are not used for identity

	IdentitySampleRows = 12  // rows sampled for the identity column check
	FreeTextMinShare   = 0.3 // below this share the identity column is unreliable
	MaxConfirmPages    = 6   // detail pages fetched to confirm a mismatching table
)

var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeName lowercases, strips punctuation and legal-entity suffixes
// and collapses whitespace. Hyphens count as separators so slugs compare
// equal to display names.
func NormalizeName(name string) string {
	s := strings.ReplaceAll(name, "-", " ")
	s = names.StripLegalSuffixes(s)
	s = punctuationRe.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// containsMatch: one normalized name contains the other as whole words
func containsMatch(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return containsWords(actual, expected) || containsWords(expected, actual)
}

// containsWords reports whether needle occurs in s on word boundaries.
// Both must be normalized (single spaces).
func containsWords(s, needle string) bool {
	return strings.Contains(" "+s+" ", " "+needle+" ")
}

// identityNames drops expected names too short to identify an underlying
// (bare tickers like "V" or "MU"). If nothing is left the list is kept.
func identityNames(expected []string) []string {
	out := make([]string, 0, len(expected))
	for _, e := range expected {
		if len([]rune(strings.ReplaceAll(NormalizeName(e), " ", ""))) >= MinIdentityNameLength {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return expected
	}
	return out
}

// TokenOverlap is the share of expected tokens (length ≥ MinTokenLength)
// present in the actual name
func TokenOverlap(expected, actual string) float64 {
	exp := tokens(expected)
	if len(exp) == 0 {
		return 0
	}
	act := make(map[string]struct{})
	for _, t := range tokens(actual) {
		act[t] = struct{}{}
	}
	hits := 0
	for _, t := range exp {
		if _, ok := act[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(exp))
}

func tokens(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		if len([]rune(t)) < MinTokenLength {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SimilarityRatio is 2·M/T where M is the number of characters in
// matching blocks (longest common substring, recursively) and T the
// combined length
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(total)
}

func matchingChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	i, j, size := longestCommon(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingChars(a[:i], b[:j]) + matchingChars(a[i+size:], b[j+size:])
}

// longestCommon returns the start indices and length of the longest common substring
func longestCommon(a, b []rune) (int, int, int) {
	bestI, bestJ, best := 0, 0, 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
					bestI, bestJ = i-best, j-best
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, best
}

// IdentityMatch decides whether a listing's underlying name belongs to
// the expected underlying
func IdentityMatch(expected, actual string) bool {
	e, a := NormalizeName(expected), NormalizeName(actual)
	if e == "" || a == "" {
		return false
	}
	if containsMatch(e, a) {
		return true
	}
	if len([]rune(e)) < MinFuzzyNameLength {
		return false
	}
	if TokenOverlap(e, a) >= TokenOverlapThreshold {
		return true
	}
	return SimilarityRatio(e, a) >= SimilarityThreshold
}

// MatchesAny reports whether actual matches any of the expected names
func MatchesAny(expected []string, actual string) bool {
	for _, e := range expected {
		if IdentityMatch(e, actual) {
			return true
		}
	}
	return false
}

// identityColumnReliable samples the first IdentitySampleRows values;
// the column is reliable when at least FreeTextMinShare of the non-empty
// cells look like free text
func identityColumnReliable(values []string) bool {
	nonEmpty, text := 0, 0
	for i, v := range values {
		if i >= IdentitySampleRows {
			break
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		nonEmpty++
		if looksLikeFreeText(v) {
			text++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(text)/float64(nonEmpty) >= FreeTextMinShare
}

// pageMentions reports whether normalized page text contains any expected
// name as whole words
func pageMentions(pageText string, expected []string) bool {
	page := NormalizeName(pageText)
	for _, e := range expected {
		if n := NormalizeName(e); n != "" && containsWords(page, n) {
			return true
		}
	}
	return false
}
