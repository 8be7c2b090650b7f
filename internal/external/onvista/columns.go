package onvista

import (
	"regexp"
	"strings"
)

// Field is a listing column with a known meaning
type Field int

const (
	FieldUnderlying Field = iota
	FieldStrike
	FieldMaturity
	FieldBid
	FieldAsk
	FieldLeverage
	FieldOmega
	FieldImpliedVol
	FieldSpread
	FieldPremium
	FieldExercise
	FieldIssuer
)

// ColumnMap maps fields to cell indices of a row
type ColumnMap map[Field]int

// Has reports whether the field has a column
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// fieldAliases are normalized header labels per field.
// Order matters for substring matching: specific fields first.
var fieldAliases = []struct {
	field   Field
	aliases []string
}{
	{FieldImpliedVol, []string{"implvola", "impliedvolatility", "impliedvolatilityask", "implvolatilitat", "implizitevolatilitat", "iv"}},
	{FieldSpread, []string{"spread", "spreadaskpct", "spreadinprozent", "spreadpct"}},
	{FieldPremium, []string{"aufgeld", "premium", "premiumask", "aufgeldpct"}},
	{FieldUnderlying, []string{"basiswert", "underlying", "underlyingname", "basiswertname"}},
	{FieldStrike, []string{"strike", "basispreis", "strikeabs"}},
	{FieldMaturity, []string{"laufzeit", "falligkeit", "faelligkeit", "datematurity", "maturity", "verfall"}},
	{FieldBid, []string{"geld", "bid", "quotebid", "geldkurs"}},
	{FieldAsk, []string{"brief", "ask", "quoteask", "briefkurs"}},
	{FieldLeverage, []string{"hebel", "leverage"}},
	{FieldOmega, []string{"omega"}},
	{FieldExercise, []string{"ausubung", "ausuebung", "exercisestyle", "nameexercisestyle", "optionsart"}},
	{FieldIssuer, []string{"emittent", "issuer", "issuername"}},
}

// substring matches ignore short aliases such as "iv" or "ask"
const minSubstringAlias = 4

var labelCleanRe = regexp.MustCompile(`[^a-z0-9]`)

var umlauts = strings.NewReplacer("ä", "a", "ö", "o", "ü", "u", "ß", "ss", "Ä", "a", "Ö", "o", "Ü", "u")

// normalizeLabel lowercases and strips everything but letters and digits
func normalizeLabel(label string) string {
	return labelCleanRe.ReplaceAllString(strings.ToLower(umlauts.Replace(label)), "")
}

// FieldForLabel resolves a header or cell label to a field
func FieldForLabel(label string) (Field, bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return 0, false
	}
	for _, fa := range fieldAliases {
		for _, a := range fa.aliases {
			if norm == a {
				return fa.field, true
			}
		}
	}
	for _, fa := range fieldAliases {
		for _, a := range fa.aliases {
			if len(a) >= minSubstringAlias && strings.Contains(norm, a) {
				return fa.field, true
			}
		}
	}
	return 0, false
}

// rowCells is one table row: visible text and optional label attribute per cell
type rowCells struct {
	texts  []string
	labels []string
}

// ColumnResolver decides which cell holds which field for a row
type ColumnResolver interface {
	Name() string
	Resolve(row rowCells) ColumnMap
}

// labelResolver maps cells by header labels or per-cell label attributes
type labelResolver struct {
	headers []string
}

func (r *labelResolver) Name() string { return "label" }

func (r *labelResolver) Resolve(row rowCells) ColumnMap {
	labels := r.headers
	if hasAny(row.labels) {
		labels = row.labels
	}
	return labelsToColumns(labels)
}

func labelsToColumns(labels []string) ColumnMap {
	cols := ColumnMap{}
	for i, l := range labels {
		// 첫 열은 항상 WKN
		if i == 0 {
			continue
		}
		if f, ok := FieldForLabel(l); ok && !cols.Has(f) {
			cols[f] = i
		}
	}
	return cols
}

// positionalResolver uses the conventional layout:
// code | underlying | strike | maturity | bid | ask | leverage | omega | iv | spread | premium | exercise | issuer.
// When the underlying cell looks like an amount the name column is
// missing and every later index moves one to the left.
type positionalResolver struct{}

var positionalLayout = []Field{
	FieldUnderlying, FieldStrike, FieldMaturity, FieldBid, FieldAsk, FieldLeverage,
	FieldOmega, FieldImpliedVol, FieldSpread, FieldPremium, FieldExercise, FieldIssuer,
}

func (positionalResolver) Name() string { return "positional" }

func (positionalResolver) Resolve(row rowCells) ColumnMap {
	cols := ColumnMap{}
	shift := 0
	if len(row.texts) > 1 && looksLikeAmount(row.texts[1]) {
		shift = 1
	}
	for i, f := range positionalLayout {
		idx := i + 1
		if shift == 1 {
			if f == FieldUnderlying {
				continue
			}
			idx--
		}
		if idx < len(row.texts) {
			cols[f] = idx
		}
	}
	return cols
}

// fallbackResolver tries the primary strategy and falls back to
// positional when strike or ask cannot be located
type fallbackResolver struct {
	primary ColumnResolver
}

func (r fallbackResolver) Name() string { return r.primary.Name() }

func (r fallbackResolver) Resolve(row rowCells) ColumnMap {
	cols := r.primary.Resolve(row)
	if cols.Has(FieldStrike) && cols.Has(FieldAsk) {
		return cols
	}
	return positionalResolver{}.Resolve(row)
}

// selectResolver picks label-alias lookup when header or cell labels
// identify the price columns, positional otherwise
func selectResolver(headers []string, sample []rowCells) ColumnResolver {
	hcols := labelsToColumns(headers)
	if hcols.Has(FieldStrike) && hcols.Has(FieldAsk) {
		return fallbackResolver{primary: &labelResolver{headers: headers}}
	}
	for _, row := range sample {
		if hasAny(row.labels) {
			return fallbackResolver{primary: &labelResolver{}}
		}
	}
	return positionalResolver{}
}

func hasAny(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
