package names

// staticNames covers underlyings whose feed display names do not match
// the listing site's naming (indices mostly).
var staticNames = map[string][]string{
	"^GDAXI":    {"DAX"},
	"^NDX":      {"NASDAQ-100"},
	"^GSPC":     {"S-P-500"},
	"^STOXX50E": {"Euro-STOXX-50"},
	"^DJI":      {"Dow-Jones"},
	"^FTSE":     {"FTSE-100"},
	"^N225":     {"Nikkei-225"},
	"^MDAXI":    {"MDAX"},
	"^TECDAX":   {"TecDAX"},
	"MBG.DE":    {"Mercedes-Benz-Group", "Mercedes-Benz"},
	"MUV2.DE":   {"Muenchener-Rueck", "Munich-Re"},
	"VOW3.DE":   {"Volkswagen-Vz", "Volkswagen"},
	"P911.DE":   {"Porsche", "Porsche-AG"},
	"BRK-B":     {"Berkshire-Hathaway-B", "Berkshire-Hathaway"},
	"GOOGL":     {"Alphabet-A", "Alphabet"},
	"GOOG":      {"Alphabet-C", "Alphabet"},
}

// defaultMapping seeds a new mapping store
func defaultMapping() map[string][]string {
	return map[string][]string{
		"^GDAXI": {"DAX"},
		"^NDX":   {"NASDAQ-100"},
		"^GSPC":  {"S-P-500"},
	}
}

// StaticNames returns the curated names for a ticker
func StaticNames(ticker string) ([]string, bool) {
	v, ok := staticNames[ticker]
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}
