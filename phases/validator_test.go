package phases

import (
	"math"
	"testing"

	"github.com/teeline/go-swingkit/kinematics"
)

func TestValidateTilesIntervals(t *testing.T) {

	v := NewValidator(DefaultValidatorParams())

	frames := scriptedSwing()

	b := Boundaries{
		Address:       0,
		Approach:      10,
		Backswing:     11,
		Top:           41,
		Downswing:     42,
		Impact:        75,
		FollowThrough: 79,
	}

	report := v.Validate(b, frames)

	if len(report.Intervals) != len(Order) {
		t.Fatalf("expected %d intervals, got %d", len(Order), len(report.Intervals))
	}

	// every frame belongs to exactly one phase, each interval ends where
	// the next begins and the last interval ends on the final frame
	for i, iv := range report.Intervals {

		if iv.Name != Order[i] {
			t.Errorf("interval %d: expected phase %s, got %s", i, Order[i], iv.Name)
		}

		if i < len(report.Intervals)-1 {
			next := report.Intervals[i+1]

			if iv.EndFrame != next.StartFrame {
				t.Errorf("%s ends at %d but %s starts at %d",
					iv.Name, iv.EndFrame, next.Name, next.StartFrame)
			}
		}

		if iv.Forced {
			t.Errorf("%s: ordered boundaries should not be repaired", iv.Name)
		}

		wantDur := float64(iv.EndFrame-iv.StartFrame) / 30

		if math.Abs(iv.Duration-wantDur) > 1e-9 {
			t.Errorf("%s: expected duration %.3f, got %.3f",
				iv.Name, wantDur, iv.Duration)
		}
	}

	last := report.Intervals[len(report.Intervals)-1]

	if last.EndFrame != len(frames)-1 {
		t.Errorf("expected final interval to end at %d, got %d",
			len(frames)-1, last.EndFrame)
	}

	if len(report.Corrections) != 0 {
		t.Errorf("expected no corrections, got %v", report.Corrections)
	}
}

func TestValidateForcesOrdering(t *testing.T) {

	v := NewValidator(DefaultValidatorParams())

	frames := scriptedSwing()

	// downswing candidate landed before the top
	b := Boundaries{
		Address:       0,
		Approach:      10,
		Backswing:     11,
		Top:           41,
		Downswing:     35,
		Impact:        75,
		FollowThrough: 79,
	}

	report := v.Validate(b, frames)

	down := report.Interval(Downswing)

	if down.StartFrame != 42 {
		t.Errorf("expected downswing forced to frame 42, got %d", down.StartFrame)
	}

	if !down.Forced {
		t.Error("expected repaired downswing to be flagged")
	}

	if len(report.Corrections) != 1 || report.Corrections[0] != Downswing {
		t.Errorf("expected corrections [downswing], got %v", report.Corrections)
	}
}

func TestValidatePinsFirstPhase(t *testing.T) {

	v := NewValidator(DefaultValidatorParams())

	frames := scriptedSwing()

	// the address candidate missed frame 0, the club was not observed there
	b := Boundaries{
		Address:       1,
		Approach:      10,
		Backswing:     11,
		Top:           41,
		Downswing:     42,
		Impact:        75,
		FollowThrough: 79,
	}

	report := v.Validate(b, frames)

	first := report.Intervals[0]

	if first.StartFrame != 0 {
		t.Errorf("expected first phase pinned to frame 0, got %d", first.StartFrame)
	}

	if !first.Forced {
		t.Error("expected pinned first phase to be flagged")
	}

	if len(report.Corrections) != 1 || report.Corrections[0] != Address {
		t.Errorf("expected corrections [address], got %v", report.Corrections)
	}

	// the remaining boundaries are untouched
	if got := report.Interval(Approach).StartFrame; got != 10 {
		t.Errorf("expected approach at frame 10, got %d", got)
	}
}

func TestValidateClampsOutOfRange(t *testing.T) {

	v := NewValidator(DefaultValidatorParams())

	frames := scriptedSwing()

	b := Boundaries{
		Address:       -5,
		Approach:      10,
		Backswing:     11,
		Top:           41,
		Downswing:     42,
		Impact:        75,
		FollowThrough: 500,
	}

	report := v.Validate(b, frames)

	if got := report.Interval(Address).StartFrame; got != 0 {
		t.Errorf("expected address clamped to 0, got %d", got)
	}

	if got := report.Interval(FollowThrough).StartFrame; got != len(frames)-1 {
		t.Errorf("expected follow through clamped to %d, got %d",
			len(frames)-1, got)
	}
}

func TestValidateConfidenceBounds(t *testing.T) {

	v := NewValidator(DefaultValidatorParams())

	// a stationary sequence exercises the degenerate interval and forced
	// boundary paths
	frames := make([]kinematics.Frame, 30)

	for i := range frames {
		frames[i] = scriptFrame(i, 0, 400)
	}

	b := Boundaries{
		Address:       0,
		Approach:      1,
		Backswing:     2,
		Top:           3,
		Downswing:     4,
		Impact:        4,
		FollowThrough: 4,
	}

	report := v.Validate(b, frames)

	for _, iv := range report.Intervals {
		if iv.Confidence < 0 || iv.Confidence > 1 {
			t.Errorf("%s: confidence %.3f out of range", iv.Name, iv.Confidence)
		}
	}

	if report.Confidence < 0 || report.Confidence > 1 {
		t.Errorf("overall confidence %.3f out of range", report.Confidence)
	}

	// a motionless address interval is maximally confident
	if got := report.Interval(Address).Confidence; got != 1 {
		t.Errorf("expected address confidence 1, got %.3f", got)
	}

	// a motionless impact interval carries no velocity spike
	if got := report.Interval(Impact).Confidence; got != 0 {
		t.Errorf("expected impact confidence 0, got %.3f", got)
	}
}

func TestValidateDirectionalConfidence(t *testing.T) {

	v := NewValidator(DefaultValidatorParams())

	frames := scriptedSwing()

	b := Boundaries{
		Address:       0,
		Approach:      10,
		Backswing:     11,
		Top:           41,
		Downswing:     42,
		Impact:        75,
		FollowThrough: 79,
	}

	report := v.Validate(b, frames)

	// club moves up through the backswing and down through the downswing,
	// both earn the directional confidence
	if got := report.Interval(Backswing).Confidence; !almostEqual(got, 0.9, 1e-9) {
		t.Errorf("expected backswing confidence 0.9, got %.3f", got)
	}

	if got := report.Interval(Downswing).Confidence; !almostEqual(got, 0.9, 1e-9) {
		t.Errorf("expected downswing confidence 0.9, got %.3f", got)
	}
}

// almostEqual checks if two float64 values are approximately equal
func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
