package onvista

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumericRe = regexp.MustCompile(`[^\d.\-]`)
	amountRe     = regexp.MustCompile(`[\d.,]+`)
	amountCellRe = regexp.MustCompile(`(?i)^(eur|usd)?\s*[+\-]?\d[\d.,]*\s*(eur|usd|%)?$`)
	dateRe       = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{2,4}$`)
	letterRe     = regexp.MustCompile(`\p{L}`)
)

// ParseNumber parses a German-formatted number ("1.234,56" → 1234.56).
// Unparseable text yields 0.
func ParseNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return 0
	}
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")
	text = nonNumericRe.ReplaceAllString(text, "")

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

// DetectCurrency infers a currency code from symbols or codes in text
func DetectCurrency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "€") || strings.Contains(lower, "eur"):
		return "EUR"
	case strings.Contains(text, "$") || strings.Contains(lower, "usd"):
		return "USD"
	}
	return ""
}

// ParsePrice parses a price cell such as "0,45 €" into amount and currency
func ParsePrice(text string) (float64, string) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return 0, ""
	}
	currency := DetectCurrency(text)
	if m := amountRe.FindString(text); m != "" {
		return ParseNumber(m), currency
	}
	return 0, currency
}

// looksLikeAmount reports a currency symbol or a plain/decimal number
// optionally tagged with a currency code or percent sign
func looksLikeAmount(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if strings.ContainsAny(text, "€$") {
		return true
	}
	return amountCellRe.MatchString(text)
}

// looksLikeFreeText is true for name-like cells: letters present and not
// a number, amount, percentage or date
func looksLikeFreeText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || !letterRe.MatchString(text) {
		return false
	}
	return !dateRe.MatchString(text) && !looksLikeAmount(text)
}
