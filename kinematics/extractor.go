package kinematics

import (
	"math"

	"github.com/teeline/go-swingkit/pose"
)

// Point is a 2D position or vector in the reference coordinate space
type Point struct {
	X float64
	Y float64
}

// Frame holds the derived kinematic quantities for one pose frame.  The
// club head is estimated from the wrist midpoint, no club is detected, so
// club quantities are a proxy for hand path rather than a measured club.
//
// Positions and velocities are expressed in the reference coordinate space
// (normalized landmark coordinates scaled by ExtractorParams.CoordScale) so
// that the detector's velocity thresholds keep their pixel space meaning.
// WeightTransfer stays in normalized space as a 0-100 percentage.
type Frame struct {
	// Index is the frame's position in the analysed sequence
	Index int
	// Timestamp is the capture time in seconds copied from the pose frame
	Timestamp float64
	// ClubHead is the estimated club head position, the wrist midpoint
	// offset downward by the configured club length
	ClubHead Point
	// ClubVelocity is the club head velocity in units per second
	ClubVelocity Point
	// ClubSpeed is the magnitude of ClubVelocity
	ClubSpeed float64
	// ClubAcceleration is the club head acceleration in units per second squared
	ClubAcceleration Point
	// HandCenter is the midpoint of the two wrists
	HandCenter Point
	// Head is the nose position
	Head Point
	// WeightTransfer is the normalized hip center x position as a 0-100
	// percentage, a proxy for lateral weight shift between the feet
	WeightTransfer float64
	// ShoulderAngle is the angle in degrees of the left to right shoulder line
	ShoulderAngle float64
	// HipAngle is the angle in degrees of the left to right hip line
	HipAngle float64
	// SpineAngle is the angle in degrees of the hip center to shoulder
	// center line
	SpineAngle float64
	// WristLineAngle is the angle in degrees of the left to right wrist line,
	// used as the swing plane approximation
	WristLineAngle float64
	// TrackingConfidence is the mean confidence of the required landmarks
	// in the source pose frame
	TrackingConfidence float64
	// ClubObserved reports whether the wrist landmarks were visible in this
	// frame.  When false the club quantities hold the last observed values
	// with zero velocity and must not be treated as measurements.
	ClubObserved bool
	// BodyObserved reports whether the shoulder and hip landmarks were
	// visible in this frame
	BodyObserved bool
	// HeadObserved reports whether the nose landmark was visible
	HeadObserved bool
	// Pose is the source observation the frame was derived from
	Pose pose.Frame
}

// ExtractorParams defines the tunable parameters for feature extraction
type ExtractorParams struct {
	// CoordScale projects normalized landmark coordinates into a reference
	// pixel space before differentiation
	CoordScale float64 `yaml:"coord_scale"`
	// ClubLength is the fixed downward offset in reference units from the
	// wrist midpoint to the estimated club head
	ClubLength float64 `yaml:"club_length"`
	// MinVisibility is the minimum landmark confidence for a landmark to
	// count as observed
	MinVisibility float64 `yaml:"min_visibility"`
	// FrameRate is the fallback frame rate used when the pose frames carry
	// no usable timestamps
	FrameRate float64 `yaml:"frame_rate"`
}

// DefaultExtractorParams returns extractor parameters tuned for a pose model
// emitting normalized coordinates at 30 fps
func DefaultExtractorParams() ExtractorParams {
	return ExtractorParams{
		CoordScale:    640,
		ClubLength:    90,
		MinVisibility: 0.1,
		FrameRate:     pose.DefaultFrameRate,
	}
}

// Extractor derives kinematic features from raw pose frames
type Extractor struct {
	// Params are the feature extraction configuration parameters
	Params ExtractorParams
}

// NewExtractor returns an Extractor instance.  Zero valued parameters are
// replaced with their defaults.
func NewExtractor(p ExtractorParams) *Extractor {

	def := DefaultExtractorParams()

	if p.CoordScale <= 0 {
		p.CoordScale = def.CoordScale
	}

	if p.ClubLength <= 0 {
		p.ClubLength = def.ClubLength
	}

	if p.MinVisibility <= 0 {
		p.MinVisibility = def.MinVisibility
	}

	if p.FrameRate <= 0 {
		p.FrameRate = def.FrameRate
	}

	return &Extractor{Params: p}
}

// Extract derives one kinematic frame per pose frame, in input order.  The
// extraction is a single forward pass threading the previous frame through
// as an accumulator, each output frame is a pure function of the input
// sequence up to its index.
//
// Frames missing a required landmark are not fatal, the affected quantities
// carry the last observed values, the velocity is zeroed and the matching
// observation flag is cleared so downstream stages can tell a held value
// from a measurement.
func (e *Extractor) Extract(frames []pose.Frame) []Frame {

	out := make([]Frame, len(frames))

	fps := pose.EstimateFrameRate(frames, e.Params.FrameRate)
	fallbackDt := 1.0 / fps

	// last frame whose club was observed, used to difference velocity
	// across dropout gaps
	haveClub := false
	var lastClub Point
	var lastClubAt float64
	lastClubIdx := 0

	var prev Frame

	for i, pf := range frames {

		k := e.extractStatic(pf)
		k.Index = i
		k.Timestamp = pf.Timestamp

		if !k.ClubObserved {
			// hold the last observed club and hand positions
			k.ClubHead = prev.ClubHead
			k.HandCenter = prev.HandCenter
		}

		if !k.BodyObserved {
			k.WeightTransfer = prev.WeightTransfer
			k.ShoulderAngle = prev.ShoulderAngle
			k.HipAngle = prev.HipAngle
			k.SpineAngle = prev.SpineAngle
			k.WristLineAngle = prev.WristLineAngle
		}

		if !k.HeadObserved {
			k.Head = prev.Head
		}

		// first frame has zero velocity and acceleration by convention
		if i > 0 && k.ClubObserved && haveClub {

			dt := pf.Timestamp - lastClubAt

			if dt <= 0 {
				dt = float64(i-lastClubIdx) * fallbackDt
			}

			k.ClubVelocity = Point{
				X: (k.ClubHead.X - lastClub.X) / dt,
				Y: (k.ClubHead.Y - lastClub.Y) / dt,
			}
			k.ClubSpeed = math.Hypot(k.ClubVelocity.X, k.ClubVelocity.Y)

			k.ClubAcceleration = Point{
				X: (k.ClubVelocity.X - prev.ClubVelocity.X) / dt,
				Y: (k.ClubVelocity.Y - prev.ClubVelocity.Y) / dt,
			}
		}

		if k.ClubObserved {
			haveClub = true
			lastClub = k.ClubHead
			lastClubAt = pf.Timestamp
			lastClubIdx = i
		}

		out[i] = k
		prev = k
	}

	return out
}

// extractStatic derives the per frame quantities that need no previous frame
func (e *Extractor) extractStatic(pf pose.Frame) Frame {

	k := Frame{Pose: pf}

	lWrist, lwOK := e.visible(pf, pose.LeftWrist)
	rWrist, rwOK := e.visible(pf, pose.RightWrist)
	lShoulder, lsOK := e.visible(pf, pose.LeftShoulder)
	rShoulder, rsOK := e.visible(pf, pose.RightShoulder)
	lHip, lhOK := e.visible(pf, pose.LeftHip)
	rHip, rhOK := e.visible(pf, pose.RightHip)
	nose, nOK := e.visible(pf, pose.Nose)

	scale := e.Params.CoordScale

	if lwOK && rwOK {
		k.ClubObserved = true

		k.HandCenter = Point{
			X: (lWrist.X + rWrist.X) / 2 * scale,
			Y: (lWrist.Y + rWrist.Y) / 2 * scale,
		}

		// club head estimate, offset below the hands by the club length
		k.ClubHead = Point{
			X: k.HandCenter.X,
			Y: k.HandCenter.Y + e.Params.ClubLength,
		}

		k.WristLineAngle = angleDeg(
			rWrist.X-lWrist.X, rWrist.Y-lWrist.Y)
	}

	if lsOK && rsOK && lhOK && rhOK {
		k.BodyObserved = true

		k.ShoulderAngle = angleDeg(
			rShoulder.X-lShoulder.X, rShoulder.Y-lShoulder.Y)
		k.HipAngle = angleDeg(
			rHip.X-lHip.X, rHip.Y-lHip.Y)

		hipCenterX := (lHip.X + rHip.X) / 2
		hipCenterY := (lHip.Y + rHip.Y) / 2
		shoulderCenterX := (lShoulder.X + rShoulder.X) / 2
		shoulderCenterY := (lShoulder.Y + rShoulder.Y) / 2

		k.SpineAngle = angleDeg(
			shoulderCenterX-hipCenterX, shoulderCenterY-hipCenterY)

		// landmark coordinates are already normalized so the frame width
		// normalizer reduces to a factor of 100
		k.WeightTransfer = clamp(hipCenterX*100, 0, 100)
	}

	if nOK {
		k.HeadObserved = true
		k.Head = Point{X: nose.X * scale, Y: nose.Y * scale}
	}

	k.TrackingConfidence = trackingConfidence(pf)

	return k
}

// visible returns the named landmark when it is present with sufficient
// confidence
func (e *Extractor) visible(pf pose.Frame, name string) (pose.Landmark, bool) {

	lm, ok := pf.Get(name)

	if !ok || lm.Confidence < e.Params.MinVisibility {
		return pose.Landmark{}, false
	}

	return lm, true
}

// trackingConfidence is the mean confidence of the required landmarks,
// missing landmarks count as zero
func trackingConfidence(pf pose.Frame) float64 {

	total := 0.0

	for _, name := range pose.RequiredLandmarks {
		if lm, ok := pf.Get(name); ok {
			total += lm.Confidence
		}
	}

	return total / float64(len(pose.RequiredLandmarks))
}

// FrameRate derives the effective frame rate of a kinematic frame sequence
// from its timestamps, falling back to the given rate when the timestamps
// are absent or non-monotonic
func FrameRate(frames []Frame, fallback float64) float64 {

	if fallback <= 0 {
		fallback = pose.DefaultFrameRate
	}

	if len(frames) < 2 {
		return fallback
	}

	total := 0.0

	for i := 1; i < len(frames); i++ {
		dt := frames[i].Timestamp - frames[i-1].Timestamp

		if dt <= 0 {
			return fallback
		}

		total += dt
	}

	return float64(len(frames)-1) / total
}

// angleDeg returns the angle of the vector (dx, dy) in degrees
func angleDeg(dx, dy float64) float64 {
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// clamp restricts val to the range min to max
func clamp(val, min, max float64) float64 {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}
