package onvista

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/warrantscan/internal/contracts"
)

// minRowCells: shorter rows are headers, footers or ads
const minRowCells = 8

var codeRe = regexp.MustCompile(`[A-Z0-9]{6}`)

// labelAttrs are cell attributes that carry a column label
var labelAttrs = []string{"data-label", "data-title", "aria-label"}

// Table is the result of extracting a listing table
type Table struct {
	Rows        []contracts.ListingRow
	Strategy    string // column resolver used
	HasIdentity bool   // an underlying-name column was detected
}

// IdentityValues returns the underlying-name cell of each row
func (t *Table) IdentityValues() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.UnderlyingName
	}
	return out
}

// ExtractTable parses the first table of the document into listing rows.
// Rows with an invalid code, ask or strike are dropped.
func ExtractTable(doc *goquery.Document, siteURL string) (*Table, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	headers := headerLabels(table)

	var raw []rowCells
	var links []string
	var codes []string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < minRowCells {
			return
		}

		first := cells.First()
		code, link := instrumentCode(first)
		if code == "" {
			return
		}

		rc := rowCells{}
		cells.Each(func(_ int, td *goquery.Selection) {
			rc.texts = append(rc.texts, cellText(td))
			rc.labels = append(rc.labels, cellLabel(td))
		})
		raw = append(raw, rc)
		links = append(links, absoluteURL(siteURL, link))
		codes = append(codes, code)
	})

	sample := raw
	if len(sample) > IdentitySampleRows {
		sample = sample[:IdentitySampleRows]
	}
	resolver := selectResolver(headers, sample)

	out := &Table{Strategy: resolver.Name()}
	for i, rc := range raw {
		cols := resolver.Resolve(rc)
		row := buildRow(codes[i], links[i], rc, cols)
		if !row.Valid() {
			continue
		}
		if cols.Has(FieldUnderlying) {
			out.HasIdentity = true
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// headerLabels returns th texts from thead, or from the first row made of th cells
func headerLabels(table *goquery.Selection) []string {
	ths := table.Find("thead th")
	if ths.Length() == 0 {
		table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			if cells := tr.Find("th"); cells.Length() > 0 {
				ths = cells
				return false
			}
			return true
		})
	}

	var out []string
	ths.Each(func(_ int, th *goquery.Selection) {
		out = append(out, cellText(th))
	})
	return out
}

// instrumentCode reads the 6-character code from link text, else cell text
func instrumentCode(cell *goquery.Selection) (code, href string) {
	text := cellText(cell)
	if a := cell.Find("a").First(); a.Length() > 0 {
		href, _ = a.Attr("href")
		text = cellText(a)
	}
	code = codeRe.FindString(text)
	if !contracts.ValidInstrumentCode(code) {
		return "", ""
	}
	return code, href
}

func buildRow(code, detailURL string, rc rowCells, cols ColumnMap) contracts.ListingRow {
	get := func(f Field) string {
		if i, ok := cols[f]; ok && i < len(rc.texts) {
			return rc.texts[i]
		}
		return ""
	}

	bid, bidCcy := ParsePrice(get(FieldBid))
	ask, askCcy := ParsePrice(get(FieldAsk))

	row := contracts.ListingRow{
		Code:          code,
		Name:          strings.TrimSpace(strings.Replace(rc.texts[0], code, "", 1)),
		Strike:        ParseNumber(get(FieldStrike)),
		Maturity:      get(FieldMaturity),
		Bid:           bid,
		Ask:           ask,
		Leverage:      ParseNumber(get(FieldLeverage)),
		Omega:         ParseNumber(get(FieldOmega)),
		ImpliedVol:    ParseNumber(get(FieldImpliedVol)),
		SpreadPct:     ParseNumber(get(FieldSpread)),
		PremiumPct:    ParseNumber(get(FieldPremium)),
		ExerciseStyle: get(FieldExercise),
		Issuer:        get(FieldIssuer),
		DetailURL:     detailURL,
		QuoteCurrency: askCcy,
	}
	if cols.Has(FieldUnderlying) {
		row.UnderlyingName = get(FieldUnderlying)
	}
	if row.QuoteCurrency == "" {
		row.QuoteCurrency = bidCcy
	}

	row.Mid = ask
	if bid != 0 && ask != 0 {
		row.Mid = (bid + ask) / 2
	}
	if bid != 0 {
		row.SpreadAbs = ask - bid
	}
	return row
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func cellLabel(s *goquery.Selection) string {
	for _, attr := range labelAttrs {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// absoluteURL resolves href against the site root ("/x" → https://host/x)
func absoluteURL(siteURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	base, err := url.Parse(siteURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
