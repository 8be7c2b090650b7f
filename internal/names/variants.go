package names

import (
	"regexp"
	"strings"
)

// MaxVariants caps the auto-derived name list
const MaxVariants = 8

var (
	legalSuffixRe = regexp.MustCompile(`(?i)\b(Inc|Incorporated|Corp|Corporation|Company|PLC|N\.V\.|AG|SE|S\.A\.|Ltd|Limited|Holdings?)\b`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	hyphensRe     = regexp.MustCompile(`-+`)

	slugReplacer = strings.NewReplacer(
		"&", " and ",
		"/", " ",
		",", " ",
		".", " ",
		"'", " ",
		"’", " ",
	)

	// exchange suffixes the listing site never uses
	tickerSuffixes = []string{".DE", ".US"}
)

// Slugify turns a display name into the listing site's URL form:
// separators become single hyphens, edges trimmed.
func Slugify(name string) string {
	if name == "" {
		return ""
	}
	s := slugReplacer.Replace(name)
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.ReplaceAll(s, " ", "-")
	s = hyphensRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// StripLegalSuffixes removes legal-entity words such as Inc, AG or PLC
func StripLegalSuffixes(name string) string {
	s := legalSuffixRe.ReplaceAllString(name, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " ,.")
}

// StripTickerSuffix removes known exchange suffixes from a ticker
func StripTickerSuffix(ticker string) string {
	for _, suffix := range tickerSuffixes {
		ticker = strings.ReplaceAll(ticker, suffix, "")
	}
	return ticker
}

// GenerateVariants builds candidate listing names for a ticker: the bare
// ticker first, then for each display name the name, its slug, the name
// without legal suffixes and that form's slug. Case-insensitively unique,
// at most MaxVariants entries.
func GenerateVariants(ticker string, displayNames []string) []string {
	candidates := []string{StripTickerSuffix(ticker)}
	for _, name := range displayNames {
		if name == "" {
			continue
		}
		candidates = append(candidates, name, Slugify(name))
		if cleaned := StripLegalSuffixes(name); cleaned != "" {
			candidates = append(candidates, cleaned, Slugify(cleaned))
		}
	}
	return dedupe(candidates, MaxVariants)
}

func dedupe(in []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}
