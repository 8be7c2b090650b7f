package onvista

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warrantscan/internal/scanconfig"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"18.000,00", 18000},
		{"0,45 €", 0.45},
		{"-1,5 %", -1.5},
		{"12", 12},
		{"", 0},
		{"-", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseNumber(tt.in), 1e-9)
		})
	}
}

func TestParsePrice(t *testing.T) {
	v, ccy := ParsePrice("0,47 €")
	assert.InDelta(t, 0.47, v, 1e-9)
	assert.Equal(t, "EUR", ccy)

	v, ccy = ParsePrice("USD 1,10")
	assert.InDelta(t, 1.10, v, 1e-9)
	assert.Equal(t, "USD", ccy)

	v, ccy = ParsePrice("-")
	assert.Zero(t, v)
	assert.Empty(t, ccy)
}

func TestLooksLikeFreeText(t *testing.T) {
	assert.True(t, looksLikeFreeText("Siemens AG"))
	assert.True(t, looksLikeFreeText("Euro STOXX 50"))
	assert.False(t, looksLikeFreeText("18.000,00"))
	assert.False(t, looksLikeFreeText("0,45 EUR"))
	assert.False(t, looksLikeFreeText("18.12.2026"))
	assert.False(t, looksLikeFreeText("12,5 %"))
	assert.False(t, looksLikeFreeText(""))
}

func TestBuildSearchURLVariants(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	cfg := scanconfig.Defaults().Search

	lo, hi := StrikeWindow(100)
	require.Equal(t, 90, lo)
	require.Equal(t, 110, hi)

	variants := BuildSearchURLVariants("https://www.onvista.de/", "DAX", lo, hi, cfg, now)
	require.Len(t, variants, 4)

	assert.Equal(t,
		"https://www.onvista.de/derivate/Optionsscheine/Optionsscheine-auf-DAX?page=0&brokerId=4&cols="+searchColumns+
			"&strikeAbsRange=90;110&dateMaturityRange=2026-01-19;2026-01-26&spreadAskPctRange=0.3;3.0&sort=spreadAskPct&order=ASC",
		variants[0].URL)
	assert.Contains(t, variants[0].Label, "Standard")

	assert.NotContains(t, variants[1].URL, "brokerId")
	assert.Contains(t, variants[1].URL, "dateMaturityRange=2026-01-19;2026-01-26")

	assert.Contains(t, variants[2].URL, "dateMaturityRange=2026-01-18;2026-01-30")
	assert.Contains(t, variants[2].URL, "strikeAbsRange=90;110")

	assert.Contains(t, variants[3].URL, "strikeAbsRange=76;126")
	assert.Contains(t, variants[3].URL, "dateMaturityRange=2026-01-18;2026-01-30")
}

func TestBuildSearchURLVariants_NoBroker(t *testing.T) {
	cfg := scanconfig.Defaults().Search
	cfg.BrokerID = 0

	variants := BuildSearchURLVariants("https://www.onvista.de", "S-P-500", 4500, 5500, cfg, time.Now())
	require.Len(t, variants, 3)
	for _, v := range variants {
		assert.NotContains(t, v.URL, "brokerId")
		assert.Contains(t, v.URL, "Optionsscheine-auf-S-P-500?")
	}
}

func TestFieldForLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Field
		ok    bool
	}{
		{"Basispreis", FieldStrike, true},
		{"Basiswert", FieldUnderlying, true},
		{"Geld", FieldBid, true},
		{"Brief", FieldAsk, true},
		{"Impl. Vola", FieldImpliedVol, true},
		{"Spread in %", FieldSpread, true},
		{"Aufgeld", FieldPremium, true},
		{"Ausübung", FieldExercise, true},
		{"Fälligkeit", FieldMaturity, true},
		{"Emittent", FieldIssuer, true},
		{"Chart", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			f, ok := FieldForLabel(tt.label)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, f)
			}
		})
	}
}

const headerTable = `<html><body><table>
<thead><tr><th>WKN</th><th>Basiswert</th><th>Basispreis</th><th>Laufzeit</th><th>Geld</th><th>Brief</th>
<th>Hebel</th><th>Omega</th><th>Impl. Vola</th><th>Spread</th><th>Aufgeld</th><th>Ausübung</th><th>Emittent</th></tr></thead>
<tbody>
<tr><td><a href="/detail/AB12CD">AB12CD</a></td><td>DAX</td><td>18.000,00</td><td>18.12.2026</td><td>0,45 €</td><td>0,47 €</td>
<td>12,5</td><td>8,2</td><td>18,5</td><td>1,2</td><td>3,4</td><td>Amerikanisch</td><td>HSBC</td></tr>
<tr><td><a href="/detail/ab12cd">ab12cd</a></td><td>DAX</td><td>18.000,00</td><td>18.12.2026</td><td>0,45 €</td><td>0,47 €</td>
<td>12,5</td><td>8,2</td><td>18,5</td><td>1,2</td><td>3,4</td><td>Amerikanisch</td><td>HSBC</td></tr>
<tr><td><a href="/detail/XY98ZZ">XY98ZZ</a></td><td>DAX</td><td>18.500,00</td><td>18.12.2026</td><td>-</td><td>-</td>
<td>12,5</td><td>8,2</td><td>18,5</td><td>1,2</td><td>3,4</td><td>Amerikanisch</td><td>HSBC</td></tr>
<tr><td>Werbung</td></tr>
</tbody></table></body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractTable_HeaderLabels(t *testing.T) {
	table, err := ExtractTable(parseDoc(t, headerTable), "https://www.onvista.de")
	require.NoError(t, err)

	assert.Equal(t, "label", table.Strategy)
	assert.True(t, table.HasIdentity)
	require.Len(t, table.Rows, 1, "lowercase code and zero ask rows are dropped")

	r := table.Rows[0]
	assert.Equal(t, "AB12CD", r.Code)
	assert.Equal(t, "DAX", r.UnderlyingName)
	assert.InDelta(t, 18000, r.Strike, 1e-9)
	assert.Equal(t, "18.12.2026", r.Maturity)
	assert.InDelta(t, 0.45, r.Bid, 1e-9)
	assert.InDelta(t, 0.47, r.Ask, 1e-9)
	assert.InDelta(t, 0.46, r.Mid, 1e-9)
	assert.InDelta(t, 0.02, r.SpreadAbs, 1e-9)
	assert.InDelta(t, 12.5, r.Leverage, 1e-9)
	assert.InDelta(t, 8.2, r.Omega, 1e-9)
	assert.InDelta(t, 18.5, r.ImpliedVol, 1e-9)
	assert.InDelta(t, 1.2, r.SpreadPct, 1e-9)
	assert.InDelta(t, 3.4, r.PremiumPct, 1e-9)
	assert.Equal(t, "Amerikanisch", r.ExerciseStyle)
	assert.Equal(t, "HSBC", r.Issuer)
	assert.Equal(t, "EUR", r.QuoteCurrency)
	assert.Equal(t, "https://www.onvista.de/detail/AB12CD", r.DetailURL)
}

func TestExtractTable_CellLabels(t *testing.T) {
	html := `<table><tr>
<td data-label="WKN">CD34EF</td><td data-label="Hebel">7,0</td><td data-label="Basispreis">150,00</td>
<td data-label="Brief">1,10 USD</td><td data-label="Geld">1,00 USD</td><td data-label="Laufzeit">20.03.2026</td>
<td data-label="Omega">5,5</td><td data-label="Emittent">Vontobel</td></tr></table>`

	table, err := ExtractTable(parseDoc(t, html), "https://www.onvista.de")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "label", table.Strategy)
	assert.False(t, table.HasIdentity)

	r := table.Rows[0]
	assert.InDelta(t, 150, r.Strike, 1e-9)
	assert.InDelta(t, 1.10, r.Ask, 1e-9)
	assert.InDelta(t, 7.0, r.Leverage, 1e-9)
	assert.Equal(t, "USD", r.QuoteCurrency)
	assert.Equal(t, "Vontobel", r.Issuer)
	assert.Empty(t, r.DetailURL)
}

func TestExtractTable_Positional(t *testing.T) {
	withName := `<table>
<tr><td>GH56IJ</td><td>Siemens AG</td><td>180,00</td><td>18.12.2026</td><td>0,30</td><td>0,32</td>
<td>9,0</td><td>7,1</td><td>25,0</td><td>2,0</td><td>4,0</td><td>Amerikanisch</td><td>BNP</td></tr></table>`

	table, err := ExtractTable(parseDoc(t, withName), "")
	require.NoError(t, err)
	assert.Equal(t, "positional", table.Strategy)
	assert.True(t, table.HasIdentity)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Siemens AG", table.Rows[0].UnderlyingName)
	assert.InDelta(t, 180, table.Rows[0].Strike, 1e-9)
	assert.InDelta(t, 0.32, table.Rows[0].Ask, 1e-9)
	assert.Equal(t, "BNP", table.Rows[0].Issuer)

	// 이름 열이 없으면 한 칸씩 당겨짐
	shifted := `<table>
<tr><td>GH56IJ</td><td>180,00</td><td>18.12.2026</td><td>0,30</td><td>0,32</td>
<td>9,0</td><td>7,1</td><td>25,0</td><td>2,0</td><td>4,0</td><td>Amerikanisch</td><td>BNP</td></tr></table>`

	table, err = ExtractTable(parseDoc(t, shifted), "")
	require.NoError(t, err)
	assert.False(t, table.HasIdentity)
	require.Len(t, table.Rows, 1)
	r := table.Rows[0]
	assert.Empty(t, r.UnderlyingName)
	assert.InDelta(t, 180, r.Strike, 1e-9)
	assert.Equal(t, "18.12.2026", r.Maturity)
	assert.InDelta(t, 0.30, r.Bid, 1e-9)
	assert.InDelta(t, 0.32, r.Ask, 1e-9)
	assert.InDelta(t, 9.0, r.Leverage, 1e-9)
	assert.Equal(t, "BNP", r.Issuer)
}

func TestExtractTable_NoTable(t *testing.T) {
	_, err := ExtractTable(parseDoc(t, `<html><body><p>Keine Treffer</p></body></html>`), "")
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestIdentitySubChecks(t *testing.T) {
	assert.Equal(t, "siemens", NormalizeName("Siemens AG"))
	assert.Equal(t, "s p 500", NormalizeName("S-P-500"))

	assert.True(t, containsMatch("dax", "dax performance index"))
	assert.False(t, containsMatch("", "dax"))
	assert.False(t, containsMatch("sap", "sapiens international"), "containment is on word boundaries")

	assert.InDelta(t, 1.0, TokenOverlap("deutsche bank", "deutsche bank ag namens"), 1e-9)
	assert.InDelta(t, 0.5, TokenOverlap("deutsche telekom", "deutsche bank"), 1e-9)
	assert.Zero(t, TokenOverlap("ab", "ab"), "tokens shorter than 3 are ignored")

	assert.InDelta(t, 1.0, SimilarityRatio("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, SimilarityRatio("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.8, SimilarityRatio("abcde", "abcdx"), 1e-9)
}

func TestIdentityMatch(t *testing.T) {
	tests := []struct {
		expected string
		actual   string
		want     bool
	}{
		{"DAX", "DAX", true},
		{"DAX", "DAX Performance-Index", true},
		{"Siemens", "Siemens AG", true},
		{"Siemens", "Allianz SE", false},
		{"Deutsche Telekom", "Deutsche Telekom AG Namens-Aktien", true},
		{"Mercedes-Benz Group", "Mercedes Benz Grp", true},
		{"SAP", "ASML", false},
		{"Nvidia", "", false},
		{"V", "Vodafone Group PLC", false},
		{"SAP", "Sapiens International", false},
		{"MU", "Munich Re (Muenchener Rueck)", false},
		{"Visa", "Visa Inc", true},
	}
	for _, tt := range tests {
		t.Run(tt.expected+"/"+tt.actual, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentityMatch(tt.expected, tt.actual))
		})
	}
}

func TestMatchesAny_ShortNames(t *testing.T) {
	tests := []struct {
		expected []string
		actual   string
		want     bool
	}{
		{[]string{"V", "Visa", "Visa-Inc"}, "Vodafone Group PLC", false},
		{[]string{"SAP", "SAP SE"}, "Sapiens International", false},
		{[]string{"MU", "Micron Technology"}, "Munich Re (Muenchener Rueck)", false},
		{[]string{"SAP", "SAP SE"}, "SAP SE", true},
		{[]string{"MU", "Micron Technology"}, "Micron Technology Inc", true},
	}
	for _, tt := range tests {
		t.Run(tt.actual, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesAny(identityNames(tt.expected), tt.actual))
		})
	}
}

func TestIdentityNames(t *testing.T) {
	assert.Equal(t, []string{"Visa", "Visa-Inc"}, identityNames([]string{"V", "Visa", "Visa-Inc"}))
	assert.Equal(t, []string{"SIE", "Siemens"}, identityNames([]string{"SIE", "Siemens"}))
	assert.Equal(t, []string{"MU"}, identityNames([]string{"MU"}), "nothing left keeps the list")
}

func TestIdentityColumnReliable(t *testing.T) {
	assert.True(t, identityColumnReliable([]string{"DAX", "DAX", "18.000,00"}))
	assert.False(t, identityColumnReliable([]string{"18.000,00", "0,45 €", "12.03.2026", "1,2 %"}))
	assert.False(t, identityColumnReliable([]string{"", " "}))
}

func TestPageMentions(t *testing.T) {
	assert.True(t, pageMentions("Optionsschein auf Siemens AG | Call", []string{"Allianz", "Siemens"}))
	assert.False(t, pageMentions("Optionsschein auf BASF", []string{"Siemens"}))
	assert.False(t, pageMentions("Call auf Sapiens International", []string{"SAP"}))
}
