package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/teeline/go-swingkit/kinematics"
	"github.com/teeline/go-swingkit/phases"
)

// Metric keys used to flag unavailable metrics for the scoring engine
const (
	KeyTempoRatio       = "tempo_ratio"
	KeyShoulderTurn     = "shoulder_turn"
	KeyHipTurn          = "hip_turn"
	KeyXFactor          = "x_factor"
	KeyWeightTransfer   = "weight_transfer"
	KeySwingPlane       = "swing_plane"
	KeyClubPath         = "club_path"
	KeyImpactVelocity   = "impact_velocity"
	KeySwingConsistency = "swing_consistency"
)

// LowConfidenceError is returned when the phase detection confidence is too
// low for the computed metrics to be trustworthy.  Callers should present
// the swing as unanalysable rather than show low quality metrics.
type LowConfidenceError struct {
	// Confidence is the overall phase detection confidence of the run
	Confidence float64
	// Min is the confidence threshold required to compute metrics
	Min float64
}

func (e LowConfidenceError) Error() string {
	return fmt.Sprintf("phase detection confidence %.2f below required %.2f",
		e.Confidence, e.Min)
}

// RawMetrics is the aggregate of all computed swing metrics plus the quality
// signals the scoring engine combines into the analysis confidence.  Angles
// are in degrees, durations in seconds, percentages in [0,100].
type RawMetrics struct {
	// Timing
	TempoRatio     float64
	BackswingTime  float64
	DownswingTime  float64
	TotalSwingTime float64

	// Rotation
	ShoulderTurn float64
	HipTurn      float64
	XFactor      float64
	SpineAngle   float64

	// Weight transfer
	WeightTransfer   float64
	PressureShift    float64
	BalanceStability float64

	// Swing path
	SwingPlane  float64
	ClubPath    float64
	AttackAngle float64
	ShaftAngle  float64

	// Impact
	HandPosition   kinematics.Point
	ClubfaceAngle  float64
	LowPoint       float64
	ImpactVelocity float64

	// Consistency
	SwingConsistency float64
	TempoStability   float64
	PlaneConsistency float64

	// Quality signals carried through to the scoring engine
	PhaseConfidence    float64
	TrackingConfidence float64
	FrameCount         int

	// Missing lists the metric keys that could not be computed for this
	// run, the scoring engine renormalizes its weights over the rest
	Missing []string
}

// CalculatorParams defines the tunable parameters for metric computation
type CalculatorParams struct {
	// MinConfidence is the phase detection confidence below which the
	// calculator refuses to run
	MinConfidence float64 `yaml:"min_confidence"`
	// LandmarkConfidence is the minimum landmark confidence for a landmark
	// pair to count toward the consistency displacement
	LandmarkConfidence float64 `yaml:"landmark_confidence"`
	// BalanceScale, ConsistencyScale, TempoScale and PlaneScale are the
	// penalty coefficients of the derived stability scores
	BalanceScale     float64 `yaml:"balance_scale"`
	ConsistencyScale float64 `yaml:"consistency_scale"`
	TempoScale       float64 `yaml:"tempo_scale"`
	PlaneScale       float64 `yaml:"plane_scale"`
	// FrameRate is the fallback frame rate when frames carry no usable
	// timestamps
	FrameRate float64 `yaml:"frame_rate"`
}

// DefaultCalculatorParams returns the reference metric parameters
func DefaultCalculatorParams() CalculatorParams {
	return CalculatorParams{
		MinConfidence:      0.5,
		LandmarkConfidence: 0.5,
		BalanceScale:       2,
		ConsistencyScale:   10,
		TempoScale:         20,
		PlaneScale:         5,
		FrameRate:          30,
	}
}

// Calculator computes the biomechanical swing metrics from the kinematic
// frames and validated phase intervals
type Calculator struct {
	// Params are the metric computation parameters
	Params CalculatorParams
}

// NewCalculator returns a Calculator instance.  Zero valued parameters are
// replaced with their defaults.
func NewCalculator(p CalculatorParams) *Calculator {

	def := DefaultCalculatorParams()

	if p.MinConfidence <= 0 {
		p.MinConfidence = def.MinConfidence
	}

	if p.LandmarkConfidence <= 0 {
		p.LandmarkConfidence = def.LandmarkConfidence
	}

	if p.BalanceScale <= 0 {
		p.BalanceScale = def.BalanceScale
	}

	if p.ConsistencyScale <= 0 {
		p.ConsistencyScale = def.ConsistencyScale
	}

	if p.TempoScale <= 0 {
		p.TempoScale = def.TempoScale
	}

	if p.PlaneScale <= 0 {
		p.PlaneScale = def.PlaneScale
	}

	if p.FrameRate <= 0 {
		p.FrameRate = def.FrameRate
	}

	return &Calculator{Params: p}
}

// Compute calculates all swing metrics from the kinematic frames and the
// validated phase report.  It refuses to run below the configured phase
// detection confidence, grading on unreliable boundaries would be
// misleading.  Individual metrics degrade to zero or are flagged missing
// when their inputs were not observed, only the confidence gate is fatal.
func (c *Calculator) Compute(frames []kinematics.Frame,
	report phases.Report) (RawMetrics, error) {

	if report.Confidence < c.Params.MinConfidence {
		return RawMetrics{}, LowConfidenceError{
			Confidence: report.Confidence,
			Min:        c.Params.MinConfidence,
		}
	}

	m := RawMetrics{
		PhaseConfidence: report.Confidence,
		FrameCount:      len(frames),
	}

	fps := kinematics.FrameRate(frames, c.Params.FrameRate)

	c.timing(&m, report)
	c.rotation(&m, frames, report)
	c.weightTransfer(&m, frames, report)
	c.swingPath(&m, frames, report)
	c.impact(&m, frames, report, fps)
	c.consistency(&m, frames, report)

	m.TrackingConfidence = meanTrackingConfidence(frames)

	return m, nil
}

// timing derives the tempo metrics from the phase durations
func (c *Calculator) timing(m *RawMetrics, report phases.Report) {

	m.BackswingTime = report.Interval(phases.Backswing).Duration
	m.DownswingTime = report.Interval(phases.Downswing).Duration

	if m.DownswingTime > 0 {
		m.TempoRatio = m.BackswingTime / m.DownswingTime
	}

	for _, iv := range report.Intervals {
		m.TotalSwingTime += iv.Duration
	}
}

// rotation derives the shoulder and hip turn between address and the top of
// the backswing, the X-Factor separation and the spine angle at impact
func (c *Calculator) rotation(m *RawMetrics, frames []kinematics.Frame,
	report phases.Report) {

	topIdx := report.Interval(phases.Top).StartFrame

	address := frameAt(frames, report.Interval(phases.Address).StartFrame)
	top := frameAt(frames, topIdx)
	impact := frameAt(frames, report.Interval(phases.Impact).StartFrame)

	m.ShoulderTurn = angleDiffDeg(top.ShoulderAngle, address.ShoulderAngle)
	m.HipTurn = angleDiffDeg(top.HipAngle, address.HipAngle)
	m.XFactor = m.ShoulderTurn - m.HipTurn
	m.SpineAngle = impact.SpineAngle

	// without a single body observation by the top the turn angles are
	// zeros, not measurements, the scoring engine must not grade them
	if !bodySeen(frames, topIdx) {
		m.Missing = append(m.Missing,
			KeyShoulderTurn, KeyHipTurn, KeyXFactor)
	}
}

// weightTransfer derives the lateral weight shift metrics
func (c *Calculator) weightTransfer(m *RawMetrics, frames []kinematics.Frame,
	report phases.Report) {

	impactIdx := report.Interval(phases.Impact).StartFrame

	impact := frameAt(frames, impactIdx)
	downswing := frameAt(frames, report.Interval(phases.Downswing).StartFrame)

	m.WeightTransfer = impact.WeightTransfer
	m.PressureShift = impact.WeightTransfer - downswing.WeightTransfer

	if !bodySeen(frames, impactIdx) {
		m.Missing = append(m.Missing, KeyWeightTransfer)
	}

	series := make([]float64, len(frames))

	for i, k := range frames {
		series[i] = k.WeightTransfer
	}

	m.BalanceStability = floorScore(100 - c.Params.BalanceScale*stat.StdDev(series, nil))
}

// swingPath derives the swing plane and club path approximations from the
// wrist line angles and the club head track
func (c *Calculator) swingPath(m *RawMetrics, frames []kinematics.Frame,
	report phases.Report) {

	backswing := report.Interval(phases.Backswing)
	downswing := report.Interval(phases.Downswing)
	impactIdx := report.Interval(phases.Impact).StartFrame
	impact := frameAt(frames, impactIdx)

	backswingPlane := meanWristAngle(frames, backswing.StartFrame, backswing.EndFrame)
	downswingPlane := meanWristAngle(frames, downswing.StartFrame, downswing.EndFrame)

	m.SwingPlane = (backswingPlane + downswingPlane) / 2
	m.ClubPath = impact.WristLineAngle

	if impactIdx > 0 {
		before := frameAt(frames, impactIdx-1)
		m.AttackAngle = angleDeg(
			impact.ClubHead.X-before.ClubHead.X,
			impact.ClubHead.Y-before.ClubHead.Y)
	}

	m.ShaftAngle = angleDeg(
		impact.ClubHead.X-impact.HandCenter.X,
		impact.ClubHead.Y-impact.HandCenter.Y)
}

// impact derives the impact position and velocity metrics
func (c *Calculator) impact(m *RawMetrics, frames []kinematics.Frame,
	report phases.Report, fps float64) {

	impactIdx := report.Interval(phases.Impact).StartFrame
	impact := frameAt(frames, impactIdx)

	m.HandPosition = impact.HandCenter
	m.ClubfaceAngle = impact.WristLineAngle

	// low point is the frame with the lowest hand position, largest y in
	// image coordinates, between the downswing and the end of the follow
	// through
	from := report.Interval(phases.Downswing).StartFrame
	to := report.Interval(phases.FollowThrough).EndFrame
	lowIdx := from

	for i := from; i <= to && i < len(frames); i++ {
		if frames[i].HandCenter.Y > frames[lowIdx].HandCenter.Y {
			lowIdx = i
		}
	}

	m.LowPoint = float64(lowIdx) / fps

	if impactIdx > 0 && impact.ClubObserved {
		before := frameAt(frames, impactIdx-1)
		m.ImpactVelocity = math.Hypot(
			impact.HandCenter.X-before.HandCenter.X,
			impact.HandCenter.Y-before.HandCenter.Y) * fps
	} else {
		m.Missing = append(m.Missing, KeyImpactVelocity)
	}
}

// consistency derives the stability scores over the whole swing
func (c *Calculator) consistency(m *RawMetrics, frames []kinematics.Frame,
	report phases.Report) {

	// mean landmark displacement across the address, top and impact frames,
	// in normalized units, counting landmarks confidently tracked in both
	// compared frames
	address := frameAt(frames, report.Interval(phases.Address).StartFrame)
	top := frameAt(frames, report.Interval(phases.Top).StartFrame)
	impact := frameAt(frames, report.Interval(phases.Impact).StartFrame)

	displacement, counted := pairDisplacement(address, top, c.Params.LandmarkConfidence)
	d2, c2 := pairDisplacement(top, impact, c.Params.LandmarkConfidence)

	displacement += d2
	counted += c2

	mean := 0.0

	if counted > 0 {
		mean = displacement / float64(counted)
	}

	m.SwingConsistency = floorScore(100 - c.Params.ConsistencyScale*mean)

	durations := make([]float64, len(report.Intervals))

	for i, iv := range report.Intervals {
		durations[i] = iv.Duration
	}

	m.TempoStability = floorScore(100 - c.Params.TempoScale*stat.StdDev(durations, nil))

	// wrist line angle spread from the backswing through the follow through
	from := report.Interval(phases.Backswing).StartFrame
	to := report.Interval(phases.FollowThrough).EndFrame

	var angles []float64

	for i := from; i <= to && i < len(frames); i++ {
		if frames[i].ClubObserved {
			angles = append(angles, frames[i].WristLineAngle)
		}
	}

	if len(angles) > 1 {
		m.PlaneConsistency = floorScore(100 - c.Params.PlaneScale*stat.StdDev(angles, nil))
	} else {
		m.PlaneConsistency = floorScore(100)
	}
}

// pairDisplacement sums the landmark by landmark displacement between two
// frames over the landmarks confidently tracked in both
func pairDisplacement(a, b kinematics.Frame, minConfidence float64) (float64, int) {

	total := 0.0
	counted := 0

	for name, la := range a.Pose.Landmarks {

		lb, ok := b.Pose.Landmarks[name]

		if !ok {
			continue
		}

		if la.Confidence <= minConfidence || lb.Confidence <= minConfidence {
			continue
		}

		total += math.Hypot(lb.X-la.X, lb.Y-la.Y)
		counted++
	}

	return total, counted
}

// meanWristAngle averages the wrist line angle over the observed frames of
// an interval
func meanWristAngle(frames []kinematics.Frame, start, end int) float64 {

	total := 0.0
	count := 0

	for i := start; i <= end && i < len(frames); i++ {

		if !frames[i].ClubObserved {
			continue
		}

		total += frames[i].WristLineAngle
		count++
	}

	if count == 0 {
		return 0
	}

	return total / float64(count)
}

// bodySeen reports whether the body landmarks were observed in any frame up
// to and including idx.  Unobserved frames hold the last observed values, so
// a value at idx is a measurement only if some earlier frame observed the
// body.
func bodySeen(frames []kinematics.Frame, idx int) bool {

	for i := 0; i <= idx && i < len(frames); i++ {
		if frames[i].BodyObserved {
			return true
		}
	}

	return false
}

// meanTrackingConfidence averages the per frame required landmark confidence
func meanTrackingConfidence(frames []kinematics.Frame) float64 {

	if len(frames) == 0 {
		return 0
	}

	total := 0.0

	for _, k := range frames {
		total += k.TrackingConfidence
	}

	return total / float64(len(frames))
}

// frameAt returns the frame at idx, or a zero frame when out of range
func frameAt(frames []kinematics.Frame, idx int) kinematics.Frame {

	if idx < 0 || idx >= len(frames) {
		return kinematics.Frame{}
	}

	return frames[idx]
}

// angleDeg returns the angle of the vector (dx, dy) in degrees
func angleDeg(dx, dy float64) float64 {
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// angleDiffDeg returns the absolute angular difference between two angles
// in degrees, wrapped into [0,180]
func angleDiffDeg(a, b float64) float64 {

	diff := math.Mod(math.Abs(a-b), 360)

	if diff > 180 {
		diff = 360 - diff
	}

	return diff
}

// floorScore clamps a derived 0-100 score at zero
func floorScore(score float64) float64 {

	if score < 0 {
		return 0
	}

	return score
}
