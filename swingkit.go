package swingkit

import (
	"fmt"

	"github.com/teeline/go-swingkit/kinematics"
	"github.com/teeline/go-swingkit/metrics"
	"github.com/teeline/go-swingkit/phases"
	"github.com/teeline/go-swingkit/pose"
	"github.com/teeline/go-swingkit/scoring"
)

// SwingMetrics is the aggregate value object returned to callers, all
// computed metrics plus the overall score, letter grade and analysis
// confidence.  It is produced once per analysis run and read only to
// downstream consumers.
type SwingMetrics struct {
	metrics.RawMetrics
	// OverallScore is the graded swing quality in [0,100]
	OverallScore float64
	// LetterGrade is the overall score on the A+ to F scale
	LetterGrade string
	// Confidence is the analysis confidence in [0,1]
	Confidence float64
	// MetricScores holds the normalized per metric scores for reporting
	MetricScores map[string]float64
}

// Analysis is the full output of one pipeline run
type Analysis struct {
	// Phases are the seven validated phase intervals in temporal order
	Phases []phases.Interval
	// Metrics are the computed swing metrics and grade
	Metrics SwingMetrics
	// FrameRate is the effective frame rate the run was analysed at
	FrameRate float64
	// Corrections lists the phases whose detected boundaries had to be
	// forced into order, an indicator of low confidence detection worth
	// logging by the host
	Corrections []phases.Name
}

// Analyzer runs the five stage swing analysis pipeline, feature extraction,
// phase boundary detection, phase validation, metric computation and
// scoring.  An Analyzer is stateless between runs and safe to reuse, each
// run is an independent pure function of its input frames.
type Analyzer struct {
	// Params are the aggregated pipeline parameters
	Params AnalyzerParams

	smoother   *kinematics.Smoother
	extractor  *kinematics.Extractor
	detector   *phases.Detector
	validator  *phases.Validator
	calculator *metrics.Calculator
	engine     *scoring.Engine
}

// NewAnalyzer returns an Analyzer instance.  Zero valued parameters are
// replaced with their defaults stage by stage.
func NewAnalyzer(p AnalyzerParams) *Analyzer {

	if p.FrameRate <= 0 {
		p.FrameRate = pose.DefaultFrameRate
	}

	// the caller's frame rate fallback applies to every stage that needs
	// one unless overridden per stage
	if p.Extractor.FrameRate <= 0 {
		p.Extractor.FrameRate = p.FrameRate
	}

	if p.Validator.FrameRate <= 0 {
		p.Validator.FrameRate = p.FrameRate
	}

	if p.Calculator.FrameRate <= 0 {
		p.Calculator.FrameRate = p.FrameRate
	}

	return &Analyzer{
		Params:     p,
		smoother:   kinematics.NewSmoother(p.Smoothing.SmootherParams),
		extractor:  kinematics.NewExtractor(p.Extractor),
		detector:   phases.NewDetector(p.Detector),
		validator:  phases.NewValidator(p.Validator),
		calculator: metrics.NewCalculator(p.Calculator),
		engine:     scoring.NewEngine(p.Scoring),
	}
}

// Analyze runs the full pipeline over a complete captured frame sequence
// and returns the validated phases and graded metrics.
//
// Two data quality gates are fatal, phases.InsufficientDataError when fewer
// than the minimum frames are supplied and metrics.LowConfidenceError when
// the phase detection confidence is too low to grade, match them with
// errors.As.  Sporadic missing landmarks degrade individual quantities and
// never abort the run.
func (a *Analyzer) Analyze(frames []pose.Frame) (*Analysis, error) {

	input := frames

	if a.Params.Smoothing.Enabled {
		input = a.smoother.Smooth(frames)
	}

	kin := a.extractor.Extract(input)

	boundaries, err := a.detector.Detect(kin)

	if err != nil {
		return nil, fmt.Errorf("detecting phase boundaries: %w", err)
	}

	report := a.validator.Validate(boundaries, kin)

	raw, err := a.calculator.Compute(kin, report)

	if err != nil {
		return nil, fmt.Errorf("computing metrics: %w", err)
	}

	summary := a.engine.Score(raw)

	return &Analysis{
		Phases: report.Intervals,
		Metrics: SwingMetrics{
			RawMetrics:   raw,
			OverallScore: summary.OverallScore,
			LetterGrade:  summary.LetterGrade,
			Confidence:   summary.Confidence,
			MetricScores: summary.MetricScores,
		},
		FrameRate:   kinematics.FrameRate(kin, a.Params.FrameRate),
		Corrections: report.Corrections,
	}, nil
}
