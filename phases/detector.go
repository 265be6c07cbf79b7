package phases

import (
	"fmt"

	"github.com/teeline/go-swingkit/kinematics"
)

// Boundaries maps each phase to its candidate starting frame index.  The
// candidates are produced by independent heuristics and are not guaranteed
// monotonic, they must be passed through the Validator before use.
type Boundaries map[Name]int

// InsufficientDataError is returned when a frame sequence is too short for
// the velocity heuristics to be meaningful
type InsufficientDataError struct {
	// Frames is the number of frames supplied
	Frames int
	// Min is the minimum number of frames required
	Min int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d frames supplied, minimum is %d",
		e.Frames, e.Min)
}

// DetectorParams defines the tunable thresholds for phase boundary
// detection.  Velocities are in reference space units per second.  The
// defaults are empirically chosen, treat them as a starting point to tune
// against labelled swings rather than ground truth.
type DetectorParams struct {
	// MinFrames is the minimum sequence length the heuristics accept
	MinFrames int `yaml:"min_frames"`
	// AddressWindow is the number of leading frames searched for the
	// address position
	AddressWindow int `yaml:"address_window"`
	// LowSpeed is the club speed below which the golfer is considered
	// stationary
	LowSpeed float64 `yaml:"low_speed"`
	// MovementSpeed is the club speed above which the swing is considered
	// to have started, and below which it is considered finished
	MovementSpeed float64 `yaml:"movement_speed"`
	// DownswingSpeed is the downward vertical club velocity that marks the
	// start of the downswing
	DownswingSpeed float64 `yaml:"downswing_speed"`
}

// DefaultDetectorParams returns the reference detection thresholds
func DefaultDetectorParams() DetectorParams {
	return DetectorParams{
		MinFrames:      30,
		AddressWindow:  10,
		LowSpeed:       5,
		MovementSpeed:  10,
		DownswingSpeed: 5,
	}
}

// Detector proposes the frame indices of the seven phase boundaries using
// sequential velocity and position heuristics.  Each heuristic scans forward
// from the previous phase's boundary, never backward past it.  The
// heuristics are cheap single pass scans that trade precision for robustness
// on noisy pose estimates, edge cases resolve to a sane default rather than
// failing the run.
type Detector struct {
	// Params are the detection threshold parameters
	Params DetectorParams
}

// NewDetector returns a Detector instance.  Zero valued parameters are
// replaced with their defaults.
func NewDetector(p DetectorParams) *Detector {

	def := DefaultDetectorParams()

	if p.MinFrames <= 0 {
		p.MinFrames = def.MinFrames
	}

	if p.AddressWindow <= 0 {
		p.AddressWindow = def.AddressWindow
	}

	if p.LowSpeed <= 0 {
		p.LowSpeed = def.LowSpeed
	}

	if p.MovementSpeed <= 0 {
		p.MovementSpeed = def.MovementSpeed
	}

	if p.DownswingSpeed <= 0 {
		p.DownswingSpeed = def.DownswingSpeed
	}

	return &Detector{Params: p}
}

// Detect scans the kinematic frame sequence and returns the candidate
// boundary for each phase.  Frames whose club feature was not observed are
// skipped, a held position is not a measurement the heuristics should react
// to.  Returns InsufficientDataError when fewer than MinFrames frames are
// supplied.
func (d *Detector) Detect(frames []kinematics.Frame) (Boundaries, error) {

	if len(frames) < d.Params.MinFrames {
		return nil, InsufficientDataError{
			Frames: len(frames),
			Min:    d.Params.MinFrames,
		}
	}

	b := make(Boundaries, len(Order))

	b[Address] = d.detectAddress(frames)
	b[Approach] = d.detectApproach(frames, b[Address])
	b[Backswing] = d.detectBackswing(frames, b[Approach])
	b[Top] = d.detectTop(frames, b[Backswing])
	b[Downswing] = d.detectDownswing(frames, b[Top])
	b[Impact] = d.detectImpact(frames, b[Downswing])
	b[FollowThrough] = d.detectFollowThrough(frames, b[Impact])

	return b, nil
}

// detectAddress finds the first stationary frame within the leading window,
// defaulting to frame 0
func (d *Detector) detectAddress(frames []kinematics.Frame) int {

	window := d.Params.AddressWindow

	if window > len(frames) {
		window = len(frames)
	}

	for i := 0; i < window; i++ {
		if frames[i].ClubObserved && frames[i].ClubSpeed < d.Params.LowSpeed {
			return i
		}
	}

	return 0
}

// detectApproach finds the first frame after address where the club starts
// moving
func (d *Detector) detectApproach(frames []kinematics.Frame, after int) int {

	for i := after + 1; i < len(frames); i++ {
		if frames[i].ClubObserved && frames[i].ClubSpeed > d.Params.MovementSpeed {
			return i
		}
	}

	return after + 1
}

// detectBackswing finds the first frame after the approach where the club
// moves upward.  Image coordinates increase downward so upward motion is a
// negative vertical velocity.
func (d *Detector) detectBackswing(frames []kinematics.Frame, after int) int {

	for i := after + 1; i < len(frames); i++ {
		if frames[i].ClubObserved && frames[i].ClubVelocity.Y < 0 {
			return i
		}
	}

	return after + 1
}

// detectTop finds the frame where the upward motion reverses.  The frame
// with the minimum vertical club position seen so far is tracked as a
// fallback in case no reversal occurs before the sequence ends.
func (d *Detector) detectTop(frames []kinematics.Frame, after int) int {

	highest := after + 1
	haveHighest := false

	for i := after + 1; i < len(frames); i++ {

		if !frames[i].ClubObserved {
			continue
		}

		if frames[i].ClubVelocity.Y >= 0 {
			return i
		}

		if !haveHighest || frames[i].ClubHead.Y < frames[highest].ClubHead.Y {
			highest = i
			haveHighest = true
		}
	}

	return highest
}

// detectDownswing finds the first frame after the top where downward motion
// resumes
func (d *Detector) detectDownswing(frames []kinematics.Frame, after int) int {

	for i := after + 1; i < len(frames); i++ {
		if frames[i].ClubObserved && frames[i].ClubVelocity.Y > d.Params.DownswingSpeed {
			return i
		}
	}

	return after + 1
}

// detectImpact finds the frame of maximum club speed from the downswing to
// the end of the sequence
func (d *Detector) detectImpact(frames []kinematics.Frame, after int) int {

	impact := after
	maxSpeed := -1.0

	for i := after; i < len(frames); i++ {

		if !frames[i].ClubObserved {
			continue
		}

		if frames[i].ClubSpeed > maxSpeed {
			maxSpeed = frames[i].ClubSpeed
			impact = i
		}
	}

	return impact
}

// detectFollowThrough finds the first frame after impact where the club
// slows back down, defaulting to the last frame
func (d *Detector) detectFollowThrough(frames []kinematics.Frame, after int) int {

	for i := after + 1; i < len(frames); i++ {
		if frames[i].ClubObserved && frames[i].ClubSpeed < d.Params.MovementSpeed {
			return i
		}
	}

	return len(frames) - 1
}
