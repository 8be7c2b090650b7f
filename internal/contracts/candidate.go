package contracts

import "sort"

// SubScores are the eight factor scores of a candidate
type SubScores struct {
	Spread    int `json:"spread_score"`
	Omega     int `json:"omega_score"`
	Strike    int `json:"strike_score"`
	Theta     int `json:"theta_score"`
	Vola      int `json:"vola_score"`
	Premium   int `json:"premium_score"`
	Breakeven int `json:"breakeven_score"`
	Leverage  int `json:"leverage_score"`
}

// Sum returns the total of all sub-scores (max 115)
func (s SubScores) Sum() int {
	return s.Spread + s.Omega + s.Strike + s.Theta + s.Vola + s.Premium + s.Breakeven + s.Leverage
}

// ScoredCandidate is a scored warrant. Immutable once created.
// ⭐ SSOT: 스코어러 → 리포트/저장 전달
type ScoredCandidate struct {
	Row            EnrichedListingRow `json:"row"`
	DaysToMaturity int                `json:"days_to_maturity"`
	ThetaPerDay    float64            `json:"theta_per_day"`
	ThetaPctPerDay float64            `json:"theta_pct_per_day"`
	Breakeven      *float64           `json:"breakeven,omitempty"`
	MoveNeededPct  *float64           `json:"move_needed_pct,omitempty"`
	IntrinsicValue *float64           `json:"intrinsic_value,omitempty"`
	ExtrinsicValue *float64           `json:"extrinsic_value,omitempty"`
	ExtrinsicPct   *float64           `json:"extrinsic_pct,omitempty"`
	Scores         SubScores          `json:"scores"`
	TotalScore     float64            `json:"total_score"`
}

// SortByTotal orders candidates by total score, best first.
// Stable, so equal scores keep listing order.
func SortByTotal(cands []ScoredCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].TotalScore > cands[j].TotalScore
	})
}

// AssetResult groups the ranked candidates found for one qualified asset
type AssetResult struct {
	Snapshot   AssetSnapshot     `json:"snapshot"`
	Names      []string          `json:"names"`
	Variant    string            `json:"variant,omitempty"` // search variant that produced rows
	Candidates []ScoredCandidate `json:"candidates"`
}

// RankedCandidate pairs a candidate with the snapshot of its underlying,
// one line of the final report
type RankedCandidate struct {
	Snapshot  AssetSnapshot   `json:"snapshot"`
	Candidate ScoredCandidate `json:"candidate"`
}

// Flatten concatenates the candidates of all assets and orders them by
// total score, best first. Ties keep asset order.
func Flatten(results []AssetResult) []RankedCandidate {
	var out []RankedCandidate
	for _, r := range results {
		for _, c := range r.Candidates {
			out = append(out, RankedCandidate{Snapshot: r.Snapshot, Candidate: c})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Candidate.TotalScore > out[j].Candidate.TotalScore
	})
	return out
}
