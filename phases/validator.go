package phases

import (
	"github.com/teeline/go-swingkit/kinematics"
)

// ValidatorParams defines the tunable parameters for boundary validation and
// per phase confidence estimation
type ValidatorParams struct {
	// FrameRate is the fallback frame rate used for phase durations when
	// the frames carry no usable timestamps
	FrameRate float64 `yaml:"frame_rate"`
	// BaseConfidence is assigned to phases that have no dedicated
	// confidence heuristic
	BaseConfidence float64 `yaml:"base_confidence"`
	// AddressSpeedScale is the average club speed at which address
	// confidence reaches zero, the address interval expects near zero speed
	AddressSpeedScale float64 `yaml:"address_speed_scale"`
	// ImpactSpeedScale is the average club speed at which impact confidence
	// reaches one, the impact interval expects a velocity spike
	ImpactSpeedScale float64 `yaml:"impact_speed_scale"`
	// DirectionalConfidence is assigned to the backswing and downswing when
	// their average vertical velocity points the expected way
	DirectionalConfidence float64 `yaml:"directional_confidence"`
	// PenalizedConfidence is assigned to the backswing and downswing when
	// their average vertical velocity points the wrong way
	PenalizedConfidence float64 `yaml:"penalized_confidence"`
}

// DefaultValidatorParams returns the reference validation parameters
func DefaultValidatorParams() ValidatorParams {
	return ValidatorParams{
		FrameRate:             30,
		BaseConfidence:        0.8,
		AddressSpeedScale:     50,
		ImpactSpeedScale:      300,
		DirectionalConfidence: 0.9,
		PenalizedConfidence:   0.5,
	}
}

// Validator turns candidate phase boundaries into a validated, ordered set
// of phase intervals with per phase confidences
type Validator struct {
	// Params are the validation configuration parameters
	Params ValidatorParams
}

// NewValidator returns a Validator instance.  Zero valued parameters are
// replaced with their defaults.
func NewValidator(p ValidatorParams) *Validator {

	def := DefaultValidatorParams()

	if p.FrameRate <= 0 {
		p.FrameRate = def.FrameRate
	}

	if p.BaseConfidence <= 0 {
		p.BaseConfidence = def.BaseConfidence
	}

	if p.AddressSpeedScale <= 0 {
		p.AddressSpeedScale = def.AddressSpeedScale
	}

	if p.ImpactSpeedScale <= 0 {
		p.ImpactSpeedScale = def.ImpactSpeedScale
	}

	if p.DirectionalConfidence <= 0 {
		p.DirectionalConfidence = def.DirectionalConfidence
	}

	if p.PenalizedConfidence <= 0 {
		p.PenalizedConfidence = def.PenalizedConfidence
	}

	return &Validator{Params: p}
}

// Validate enforces the fixed phase ordering over the candidate boundaries
// and produces the seven phase intervals.  The first phase is pinned to
// frame 0 so the intervals cover the whole sequence, and a boundary at or
// before its predecessor is forced to the frame after it.  A repaired
// interval is flagged since a forced correction indicates low confidence
// detection for that phase.  All boundaries are clamped into the frame
// range.
func (v *Validator) Validate(b Boundaries, frames []kinematics.Frame) Report {

	frameCount := len(frames)
	fps := kinematics.FrameRate(frames, v.Params.FrameRate)

	report := Report{
		Intervals: make([]Interval, len(Order)),
	}

	// repair boundary ordering, driven by the single ordered phase list
	starts := make([]int, len(Order))

	for i, name := range Order {

		start := clampInt(b[name], 0, frameCount-1)
		forced := false

		// every frame belongs to a phase, the first phase owns the
		// sequence from frame 0 even when the detector could not observe
		// the club there
		if i == 0 && start != 0 {
			start = 0
			forced = true
			report.Corrections = append(report.Corrections, name)
		}

		if i > 0 && start <= starts[i-1] {
			start = clampInt(starts[i-1]+1, 0, frameCount-1)
			forced = true
			report.Corrections = append(report.Corrections, name)
		}

		starts[i] = start
		report.Intervals[i] = Interval{
			Name:       name,
			StartFrame: start,
			Forced:     forced,
		}
	}

	// tile the intervals, each phase ends where the next starts and the
	// last phase ends at the final frame
	total := 0.0

	for i := range report.Intervals {

		iv := &report.Intervals[i]

		if i < len(report.Intervals)-1 {
			iv.EndFrame = starts[i+1]
		} else {
			iv.EndFrame = frameCount - 1
		}

		iv.Duration = float64(iv.EndFrame-iv.StartFrame) / fps
		iv.Confidence = v.confidence(*iv, frames)

		total += iv.Confidence
	}

	report.Confidence = total / float64(len(report.Intervals))

	return report
}

// confidence estimates how well an interval's kinematics match the
// expectation for its phase
func (v *Validator) confidence(iv Interval, frames []kinematics.Frame) float64 {

	// a degenerate interval carries no signal
	if iv.EndFrame <= iv.StartFrame {
		return 0
	}

	avgSpeed, avgVertical := intervalAverages(frames, iv.StartFrame, iv.EndFrame)

	conf := v.Params.BaseConfidence

	switch iv.Name {
	case Address:
		// expect near zero speed at address
		conf = 1 - avgSpeed/v.Params.AddressSpeedScale

	case Backswing:
		// expect upward motion, negative vertical velocity
		if avgVertical < 0 {
			conf = v.Params.DirectionalConfidence
		} else {
			conf = v.Params.PenalizedConfidence
		}

	case Downswing:
		// symmetric, expect downward motion
		if avgVertical > 0 {
			conf = v.Params.DirectionalConfidence
		} else {
			conf = v.Params.PenalizedConfidence
		}

	case Impact:
		// expect a velocity spike
		conf = avgSpeed / v.Params.ImpactSpeedScale
	}

	if conf < 0 {
		return 0
	}

	if conf > 1 {
		return 1
	}

	return conf
}

// intervalAverages returns the mean club speed and mean vertical club
// velocity over the observed frames of the interval
func intervalAverages(frames []kinematics.Frame, start, end int) (float64, float64) {

	speed := 0.0
	vertical := 0.0
	count := 0

	for i := start; i <= end && i < len(frames); i++ {

		if !frames[i].ClubObserved {
			continue
		}

		speed += frames[i].ClubSpeed
		vertical += frames[i].ClubVelocity.Y
		count++
	}

	if count == 0 {
		return 0, 0
	}

	return speed / float64(count), vertical / float64(count)
}

// clampInt restricts val to the range min to max
func clampInt(val, min, max int) int {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}
