package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/deliverkit/check"
)

func TestPatternScore_Table(t *testing.T) {
	cases := []struct {
		local string
		score float64
		name  string
	}{
		{"john.smith", 0.90, "first.last"},
		{"anna_lee", 0.85, "first_last"},
		{"anna-lee", 0.85, "first-last"},
		{"johnsmith", 0.70, "firstlast"},
		{"user", 0.60, "flast"},
		{"abc", 0.40, "single_word"},
		{"maria", 0.60, "flast"},
		{"jsmith99", 0.20, "contains_numbers"},
		{"", 0, ""},
	}
	for _, c := range cases {
		score, name := check.PatternScore(c.local)
		assert.Equal(t, c.score, score, c.local)
		assert.Equal(t, c.name, name, c.local)
	}
}

func TestPatternScore_FirstMatchWins(t *testing.T) {
	// "johnsmith" also matches the lower-scoring flast and firstl shapes;
	// the ordered table must hand it the 0.70 band.
	score, name := check.PatternScore("JOHNSMITH")
	assert.Equal(t, 0.70, score)
	assert.Equal(t, "firstlast", name)
}

func TestPatternScore_ContainsKnownName(t *testing.T) {
	// Digit-bearing token plus a known first name: the name fallback
	// fires before the digit fallback.
	score, name := check.PatternScore("maria.x1")
	assert.Equal(t, 0.60, score)
	assert.Equal(t, "contains_name", name)
}

func TestNameScore(t *testing.T) {
	cases := []struct {
		local string
		want  float64
	}{
		{"maria.lopez", 0.95},  // known first name + surname
		{"zzyzx.qwerty", 0.75}, // two alphabetic tokens, unknown name
		{"maria", 0.70},        // bare known first name
		{"qwerty", 0.50},       // plausible single word
		{"user123", 0.20},      // digits
		{"a", 0.30},            // too short for a word, no bad chars
		{"", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, check.NameScore(c.local), c.local)
	}
}

func TestAnalyzeTiming_Bands(t *testing.T) {
	// sigma = max(0.3*fake, 30)
	cases := []struct {
		real, fake float64
		confidence float64
	}{
		{800, 100, 0.85}, // z = 700/30 >> 5
		{100, 100, 0.50}, // z = 0
		{230, 100, 0.75}, // z = 130/30 ≈ 4.3
		{165, 100, 0.65},  // z = 65/30 ≈ 2.2
		{150, 1000, 0.65}, // sigma = 300, z = 850/300 ≈ 2.8
	}

	for _, c := range cases {
		a := check.AnalyzeTiming(c.real, c.fake)
		assert.Equal(t, c.confidence, a.Confidence, "real=%v fake=%v z=%v", c.real, c.fake, a.ZScore)
		assert.NotEmpty(t, a.Reason)
	}
}

func TestAnalyzeTiming_InsufficientData(t *testing.T) {
	a := check.AnalyzeTiming(0, 120)
	assert.Equal(t, 0.50, a.Confidence)
	assert.Equal(t, "insufficient timing data", a.Reason)

	a = check.AnalyzeTiming(120, 0)
	assert.Equal(t, 0.50, a.Confidence)
}

func TestPatternPenalty(t *testing.T) {
	assert.Equal(t, 0.0, check.PatternPenalty(0.90, 0.20))
	assert.Equal(t, 0.0, check.PatternPenalty(0.60, 0.95))
	assert.Equal(t, -0.05, check.PatternPenalty(0.60, 0.50))
	assert.Equal(t, -0.10, check.PatternPenalty(0.40, 0.95))
	assert.Equal(t, -0.15, check.PatternPenalty(0.40, 0.50))
	assert.Equal(t, -0.25, check.PatternPenalty(0.20, 0.95))
}

func TestCatchAllConfidence_ClampAndAssembly(t *testing.T) {
	strong := check.AnalyzeTiming(800, 100) // 0.85 band
	weak := check.AnalyzeTiming(100, 100)   // 0.50 band

	// Strong separation, good pattern: stays at the 0.85 ceiling.
	assert.Equal(t, 0.85, check.CatchAllConfidence(strong, 0.90, 0.95))

	// Weak separation, terrible pattern: 0.50 - 0.25.
	assert.InDelta(t, 0.25, check.CatchAllConfidence(weak, 0.20, 0.20), 1e-9)

	// Never below zero.
	floor := check.AnalyzeTiming(0, 0) // 0.50
	assert.GreaterOrEqual(t, check.CatchAllConfidence(floor, 0.10, 0.10), 0.0)
}

func TestAnalyze_FullSignals(t *testing.T) {
	sig := check.Analyze(check.CatchAllInput{
		Local:         "john.smith",
		Domain:        "example.com",
		IsCatchAll:    true,
		RealAvgRcptTo: 300,
		FakeAvgRcptTo: 100,
		MXCount:       2,
		HasSPF:        true,
		HasDMARC:      false,
	})
	assert.Equal(t, 0.90, sig.PatternMatch)
	assert.Equal(t, "first.last", sig.PatternName)
	assert.Equal(t, 0.95, sig.NameScore)
	assert.True(t, sig.HasSPF)
	assert.False(t, sig.HasDMARC)
	assert.Equal(t, 2, sig.MXCount)
	if assert.NotNil(t, sig.Timing) {
		assert.Greater(t, sig.ZScore, 5.0) // |300-100|/30 ≈ 6.7
		assert.Equal(t, 0.85, sig.TimingScore)
	}
}

func TestAnalyzeCatchAllWeighted_Capped(t *testing.T) {
	conf, sig := check.AnalyzeCatchAllWeighted(check.CatchAllInput{
		Local:         "john.smith",
		RealAvgRcptTo: 900,
		FakeAvgRcptTo: 100,
		MXCount:       3,
		HasSPF:        true,
		HasDMARC:      true,
	})
	assert.LessOrEqual(t, conf, 0.85)
	assert.Greater(t, conf, 0.5)
	assert.Equal(t, 0.90, sig.PatternMatch)
}
