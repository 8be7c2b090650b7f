package contracts

// Pipeline Stage 정의 (SSOT)
// 로그, 메트릭 라벨에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   screen → resolve → search → prefilter → enrich → score

// Stage represents a pipeline step
type Stage string

const (
	// StageScreen: 기초자산 스크리닝 (ATR, range, RSI, 점수)
	StageScreen Stage = "screen"

	// StageResolve: 티커 → 리스팅 이름 변환
	StageResolve Stage = "resolve"

	// StageSearch: 리스팅 검색 + 기초자산 일치 검증
	StageSearch Stage = "search"

	// StagePrefilter: ask/strike/스프레드 필터
	StagePrefilter Stage = "prefilter"

	// StageEnrich: 상세 페이지 보강 (비율, 잔존일, 손익분기)
	StageEnrich Stage = "enrich"

	// StageScore: 8개 팩터 점수화 및 정렬
	StageScore Stage = "score"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageScreen:
		return "asset screening"
	case StageResolve:
		return "listing name resolution"
	case StageSearch:
		return "listing search"
	case StagePrefilter:
		return "spread prefilter"
	case StageEnrich:
		return "detail enrichment"
	case StageScore:
		return "candidate scoring"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageScreen,
		StageResolve,
		StageSearch,
		StagePrefilter,
		StageEnrich,
		StageScore,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}
