package scoring

import (
	"math"

	"github.com/teeline/go-swingkit/metrics"
)

// Summary is the graded result of a swing analysis
type Summary struct {
	// OverallScore is the weighted mean of the normalized metric scores in
	// [0,100]
	OverallScore float64
	// LetterGrade maps the overall score onto the A+ to F scale
	LetterGrade string
	// Confidence is the analysis confidence in [0,1], combining phase
	// detection confidence, landmark tracking confidence and sample length
	Confidence float64
	// MetricScores holds the normalized per metric scores for reporting
	MetricScores map[string]float64
}

// EngineParams defines the ideal values each metric is normalized against.
// The ideals reflect classical swing coaching references, the tempo ratio
// ideal of 3.0 is the classic 3:1 backswing to downswing tempo.
type EngineParams struct {
	IdealTempoRatio     float64 `yaml:"ideal_tempo_ratio"`
	IdealShoulderTurn   float64 `yaml:"ideal_shoulder_turn"`
	IdealHipTurn        float64 `yaml:"ideal_hip_turn"`
	IdealXFactor        float64 `yaml:"ideal_x_factor"`
	IdealWeightTransfer float64 `yaml:"ideal_weight_transfer"`
	IdealSwingPlane     float64 `yaml:"ideal_swing_plane"`
	IdealClubPath       float64 `yaml:"ideal_club_path"`
	// VelocityScale divides the impact velocity for its 0-100 score
	VelocityScale float64 `yaml:"velocity_scale"`
	// ReferenceFrames is the sample length at which the length term of the
	// analysis confidence saturates, a three second swing at 30 fps
	ReferenceFrames int `yaml:"reference_frames"`
}

// DefaultEngineParams returns the reference scoring ideals
func DefaultEngineParams() EngineParams {
	return EngineParams{
		IdealTempoRatio:     3.0,
		IdealShoulderTurn:   90,
		IdealHipTurn:        50,
		IdealXFactor:        40,
		IdealWeightTransfer: 85,
		IdealSwingPlane:     60,
		IdealClubPath:       0,
		VelocityScale:       10,
		ReferenceFrames:     90,
	}
}

// Engine normalizes each metric against its ideal, applies the importance
// weights and produces the overall score, letter grade and analysis
// confidence.  Scoring is a pure deterministic function of its input.
type Engine struct {
	// Params are the scoring ideals
	Params EngineParams
}

// NewEngine returns an Engine instance.  Zero valued parameters are replaced
// with their defaults, except IdealClubPath whose default is zero.
func NewEngine(p EngineParams) *Engine {

	def := DefaultEngineParams()

	if p.IdealTempoRatio <= 0 {
		p.IdealTempoRatio = def.IdealTempoRatio
	}

	if p.IdealShoulderTurn <= 0 {
		p.IdealShoulderTurn = def.IdealShoulderTurn
	}

	if p.IdealHipTurn <= 0 {
		p.IdealHipTurn = def.IdealHipTurn
	}

	if p.IdealXFactor <= 0 {
		p.IdealXFactor = def.IdealXFactor
	}

	if p.IdealWeightTransfer <= 0 {
		p.IdealWeightTransfer = def.IdealWeightTransfer
	}

	if p.IdealSwingPlane <= 0 {
		p.IdealSwingPlane = def.IdealSwingPlane
	}

	if p.VelocityScale <= 0 {
		p.VelocityScale = def.VelocityScale
	}

	if p.ReferenceFrames <= 0 {
		p.ReferenceFrames = def.ReferenceFrames
	}

	return &Engine{Params: p}
}

// weightedMetric pairs a metric's importance weight with its normalization
type weightedMetric struct {
	key       string
	weight    float64
	normalize func(e *Engine, raw metrics.RawMetrics) float64
}

// scoredMetrics is the fixed importance table.  Weights sum to 1.0, missing
// metrics renormalize the aggregate over the weights actually present.
var scoredMetrics = []weightedMetric{
	{metrics.KeyTempoRatio, 0.15, func(e *Engine, r metrics.RawMetrics) float64 {
		return distanceScore(r.TempoRatio, e.Params.IdealTempoRatio, 20)
	}},
	{metrics.KeyShoulderTurn, 0.10, func(e *Engine, r metrics.RawMetrics) float64 {
		return distanceScore(r.ShoulderTurn, e.Params.IdealShoulderTurn, 2)
	}},
	{metrics.KeyHipTurn, 0.10, func(e *Engine, r metrics.RawMetrics) float64 {
		return distanceScore(r.HipTurn, e.Params.IdealHipTurn, 2)
	}},
	{metrics.KeyXFactor, 0.15, func(e *Engine, r metrics.RawMetrics) float64 {
		return distanceScore(r.XFactor, e.Params.IdealXFactor, 2)
	}},
	{metrics.KeyWeightTransfer, 0.15, func(e *Engine, r metrics.RawMetrics) float64 {
		return distanceScore(r.WeightTransfer, e.Params.IdealWeightTransfer, 2)
	}},
	{metrics.KeySwingPlane, 0.10, func(e *Engine, r metrics.RawMetrics) float64 {
		return distanceScore(r.SwingPlane, e.Params.IdealSwingPlane, 2)
	}},
	{metrics.KeyClubPath, 0.10, func(e *Engine, r metrics.RawMetrics) float64 {
		return distanceScore(r.ClubPath, e.Params.IdealClubPath, 2)
	}},
	{metrics.KeyImpactVelocity, 0.10, func(e *Engine, r metrics.RawMetrics) float64 {
		// monotonically increasing, capped at 100
		return math.Min(100, r.ImpactVelocity/e.Params.VelocityScale)
	}},
	{metrics.KeySwingConsistency, 0.05, func(e *Engine, r metrics.RawMetrics) float64 {
		// already a 0-100 score
		return r.SwingConsistency
	}},
}

// grades maps score thresholds onto letter grades, highest first
var grades = []struct {
	min   float64
	grade string
}{
	{95, "A+"}, {90, "A"}, {85, "A-"},
	{80, "B+"}, {75, "B"}, {70, "B-"},
	{65, "C+"}, {60, "C"}, {55, "C-"},
	{50, "D+"}, {45, "D"}, {40, "D-"},
}

// Score normalizes the raw metrics, applies the importance weights and
// returns the overall score, letter grade and analysis confidence
func (e *Engine) Score(raw metrics.RawMetrics) Summary {

	missing := make(map[string]bool, len(raw.Missing))

	for _, key := range raw.Missing {
		missing[key] = true
	}

	perMetric := make(map[string]float64, len(scoredMetrics))
	weightedTotal := 0.0
	weightSum := 0.0

	for _, wm := range scoredMetrics {

		if missing[wm.key] {
			continue
		}

		score := wm.normalize(e, raw)
		perMetric[wm.key] = score

		weightedTotal += score * wm.weight
		weightSum += wm.weight
	}

	overall := 0.0

	if weightSum > 0 {
		overall = weightedTotal / weightSum
	}

	return Summary{
		OverallScore: overall,
		LetterGrade:  Grade(overall),
		Confidence:   e.confidence(raw),
		MetricScores: perMetric,
	}
}

// Grade maps an overall score onto the thirteen step letter grade scale
func Grade(score float64) string {

	for _, g := range grades {
		if score >= g.min {
			return g.grade
		}
	}

	return "F"
}

// confidence combines the three independent quality signals of a run, phase
// heuristic confidence, raw tracking confidence and sample length relative
// to a reference swing
func (e *Engine) confidence(raw metrics.RawMetrics) float64 {

	length := math.Min(1,
		float64(raw.FrameCount)/float64(e.Params.ReferenceFrames))

	conf := raw.PhaseConfidence * raw.TrackingConfidence * length

	if conf < 0 {
		return 0
	}

	if conf > 1 {
		return 1
	}

	return conf
}

// distanceScore maps the distance of a value from its ideal onto a 0-100
// score with the given penalty per unit of distance
func distanceScore(value, ideal, penalty float64) float64 {
	return math.Max(0, 100-penalty*math.Abs(value-ideal))
}
