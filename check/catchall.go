package check

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/optimode/deliverkit/internal/static"
	"github.com/optimode/deliverkit/types"
)

// The catch-all analyzer differentiates a real mailbox on a catch-all
// domain from an arbitrary accepted address. A catch-all server answers
// 2xx for anything, so acceptance alone says nothing; the analyzer
// fuses the local part's pattern, its name-likeness, and the timing
// difference between the real and a synthetic recipient.

// CatchAllInput carries the evidence collected by the orchestrator.
type CatchAllInput struct {
	Local         string
	Domain        string
	IsCatchAll    bool
	RealAvgRcptTo float64 // ms, 0 when unavailable
	FakeAvgRcptTo float64 // ms, 0 when unavailable
	MXCount       int
	HasSPF        bool
	HasDMARC      bool
}

// localPattern is one row of the ordered pattern table. Higher-scoring
// patterns must come first: the first match wins.
type localPattern struct {
	re    *regexp.Regexp
	score float64
	name  string
}

var localPatterns = []localPattern{
	{regexp.MustCompile(`^[a-z]+\.[a-z]+$`), 0.90, "first.last"},
	{regexp.MustCompile(`^[a-z]+\.[a-z]\.[a-z]+$`), 0.90, "first.m.last"},
	{regexp.MustCompile(`^[a-z]+_[a-z]+$`), 0.85, "first_last"},
	{regexp.MustCompile(`^[a-z]+-[a-z]+$`), 0.85, "first-last"},
	{regexp.MustCompile(`^[a-z]{4,}[a-z]{3,}$`), 0.70, "firstlast"},
	{regexp.MustCompile(`^[a-z][a-z]{3,}$`), 0.60, "flast"},
	{regexp.MustCompile(`^[a-z]{3,}[a-z]$`), 0.50, "firstl"},
}

var (
	singleWordRE = regexp.MustCompile(`^[a-z]{3,12}$`)
	digitRE      = regexp.MustCompile(`[0-9]`)
	nameTokenRE  = regexp.MustCompile(`^[a-z]{2,15}$`)
	nonNameRE    = regexp.MustCompile(`[^a-z._-]`)
)

// PatternScore rates how much the local part looks like a deliberate
// personal address format. Returns the score and the matched pattern's
// name.
func PatternScore(local string) (float64, string) {
	local = strings.ToLower(strings.TrimSpace(local))
	if local == "" {
		return 0, ""
	}

	for _, p := range localPatterns {
		if p.re.MatchString(local) {
			return p.score, p.name
		}
	}

	for _, token := range splitTokens(local) {
		if static.IsFirstName(token) {
			return 0.60, "contains_name"
		}
	}
	if singleWordRE.MatchString(local) {
		return 0.40, "single_word"
	}
	if digitRE.MatchString(local) {
		return 0.20, "contains_numbers"
	}
	return 0.30, "unknown"
}

// NameScore rates how likely the local part is a person's name.
func NameScore(local string) float64 {
	local = strings.ToLower(strings.TrimSpace(local))
	if local == "" {
		return 0
	}

	parts := splitTokens(local)
	if len(parts) >= 2 && nameTokenRE.MatchString(parts[0]) && nameTokenRE.MatchString(parts[1]) {
		if static.IsFirstName(parts[0]) {
			return 0.95
		}
		return 0.75
	}
	if static.IsFirstName(local) {
		return 0.70
	}
	if singleWordRE.MatchString(local) {
		return 0.50
	}
	if digitRE.MatchString(local) || nonNameRE.MatchString(local) {
		return 0.20
	}
	return 0.30
}

// AnalyzeTiming compares the average RCPT TO times of the real and the
// synthetic recipient. A catch-all front that blindly accepts both
// answers in near-identical time; a server that actually looks up the
// mailbox tends to diverge. The difference is judged in estimated
// standard deviations (sigma = max(0.3 * fakeAvg, 30ms)).
func AnalyzeTiming(realAvg, fakeAvg float64) types.TimingAnalysis {
	if realAvg <= 0 || fakeAvg <= 0 {
		return types.TimingAnalysis{
			Confidence: 0.50,
			Reason:     "insufficient timing data",
		}
	}

	sigma := math.Max(0.3*fakeAvg, 30)
	z := math.Abs(realAvg-fakeAvg) / sigma

	var confidence float64
	var reason string
	switch {
	case z > 5:
		confidence = 0.85
		reason = fmt.Sprintf("very strong timing separation (z=%.1f)", z)
	case z > 3:
		confidence = 0.75
		reason = fmt.Sprintf("strong timing separation (z=%.1f)", z)
	case z > 2:
		confidence = 0.65
		reason = fmt.Sprintf("moderate timing separation (z=%.1f)", z)
	default:
		confidence = 0.50
		reason = fmt.Sprintf("no significant timing separation (z=%.1f)", z)
	}
	return types.TimingAnalysis{Confidence: confidence, ZScore: z, Reason: reason}
}

// PatternPenalty is subtracted from the timing confidence when the
// domain is a catch-all. A weak local-part pattern on a catch-all is
// the classic signature of an invented address.
func PatternPenalty(patternScore, nameScore float64) float64 {
	switch {
	case patternScore >= 0.70:
		return 0
	case patternScore >= 0.50:
		if nameScore >= 0.70 {
			return 0
		}
		return -0.05
	case patternScore >= 0.30:
		if nameScore >= 0.70 {
			return -0.10
		}
		return -0.15
	default:
		return -0.25
	}
}

// catchAllMaxConfidence caps the confidence of any catch-all verdict:
// acceptance by a catch-all can never be as convincing as a mailbox
// lookup.
const catchAllMaxConfidence = 0.85

// CatchAllConfidence assembles the authoritative catch-all confidence:
// the z-score band as the base, the pattern penalty on top, clamped to
// [0, 0.85].
func CatchAllConfidence(timing types.TimingAnalysis, patternScore, nameScore float64) float64 {
	c := timing.Confidence + PatternPenalty(patternScore, nameScore)
	if c < 0 {
		return 0
	}
	if c > catchAllMaxConfidence {
		return catchAllMaxConfidence
	}
	return c
}

// Analyze computes the full signal set for a catch-all verdict.
func Analyze(in CatchAllInput) types.CatchAllSignals {
	patternScore, patternName := PatternScore(in.Local)
	nameScore := NameScore(in.Local)
	timing := AnalyzeTiming(in.RealAvgRcptTo, in.FakeAvgRcptTo)

	return types.CatchAllSignals{
		PatternMatch: patternScore,
		PatternName:  patternName,
		NameScore:    nameScore,
		TimingScore:  timing.Confidence,
		ZScore:       timing.ZScore,
		HasSPF:       in.HasSPF,
		HasDMARC:     in.HasDMARC,
		MXCount:      in.MXCount,
		Timing:       &timing,
	}
}

// AnalyzeCatchAllWeighted is the legacy weighted-sum scorer, kept as an
// alternate entry point. It MUST NOT drive the public confidence; the
// z-score path in CatchAllConfidence is authoritative.
func AnalyzeCatchAllWeighted(in CatchAllInput) (float64, types.CatchAllSignals) {
	signals := Analyze(in)

	infra := 0.0
	if signals.HasSPF {
		infra += 0.4
	}
	if signals.HasDMARC {
		infra += 0.4
	}
	if signals.MXCount > 1 {
		infra += 0.2
	}

	confidence := 0.35*signals.PatternMatch +
		0.25*signals.NameScore +
		0.25*signals.TimingScore +
		0.15*infra
	if confidence > catchAllMaxConfidence {
		confidence = catchAllMaxConfidence
	}
	return confidence, signals
}

// splitTokens divides a local part on the common separators.
func splitTokens(local string) []string {
	return strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
}
