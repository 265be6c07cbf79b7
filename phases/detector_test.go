package phases

import (
	"errors"
	"math"
	"testing"

	"github.com/teeline/go-swingkit/kinematics"
)

// scriptFrame builds an observed kinematic frame with the given vertical
// velocity, speed is derived from it
func scriptFrame(idx int, verticalVelocity, clubY float64) kinematics.Frame {
	return kinematics.Frame{
		Index:        idx,
		Timestamp:    float64(idx) / 30,
		ClubHead:     kinematics.Point{X: 320, Y: clubY},
		ClubVelocity: kinematics.Point{Y: verticalVelocity},
		ClubSpeed:    math.Abs(verticalVelocity),
		ClubObserved: true,
	}
}

// scriptedSwing builds a 90 frame swing profile, stationary for the first
// ten frames, rising until frame 40, accelerating downward to a speed peak
// at frame 75 and settling after frame 80
func scriptedSwing() []kinematics.Frame {

	frames := make([]kinematics.Frame, 90)

	for i := range frames {

		var vy float64
		clubY := 400.0

		switch {
		case i < 10:
			// at address
			vy = 0

		case i < 41:
			// backswing, club rising
			vy = -300
			clubY = 400 - float64(i-9)*8

		case i <= 75:
			// downswing, speed building to the impact spike
			vy = 100 + float64(i-41)*14
			clubY = 150 + float64(i-40)*8

		case i < 80:
			// follow through slowdown
			vy = 100 - float64(i-75)*25
			clubY = 430

		default:
			vy = 0
			clubY = 430
		}

		frames[i] = scriptFrame(i, vy, clubY)
	}

	return frames
}

func TestDetectBoundaries(t *testing.T) {

	d := NewDetector(DefaultDetectorParams())

	boundaries, err := d.Detect(scriptedSwing())

	if err != nil {
		t.Fatal("unexpected detection error: ", err)
	}

	tests := []struct {
		phase Name
		want  int
	}{
		{Address, 0},
		{Approach, 10},
		{Backswing, 11},
		{Top, 41},
		{Downswing, 42},
		{Impact, 75},
		{FollowThrough, 79},
	}

	for _, tc := range tests {
		if got := boundaries[tc.phase]; got != tc.want {
			t.Errorf("%s: expected frame %d, got %d", tc.phase, tc.want, got)
		}
	}
}

func TestDetectInsufficientData(t *testing.T) {

	d := NewDetector(DefaultDetectorParams())

	frames := make([]kinematics.Frame, 29)

	for i := range frames {
		frames[i] = scriptFrame(i, 0, 400)
	}

	_, err := d.Detect(frames)

	var insufficient InsufficientDataError

	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}

	if insufficient.Frames != 29 || insufficient.Min != 30 {
		t.Errorf("expected error fields 29/30, got %d/%d",
			insufficient.Frames, insufficient.Min)
	}
}

func TestDetectSkipsUnobservedFrames(t *testing.T) {

	d := NewDetector(DefaultDetectorParams())

	frames := scriptedSwing()

	// a held dropout in the backswing must not trigger the top reversal
	for i := 20; i <= 25; i++ {
		frames[i].ClubObserved = false
		frames[i].ClubVelocity = kinematics.Point{}
		frames[i].ClubSpeed = 0
	}

	boundaries, err := d.Detect(frames)

	if err != nil {
		t.Fatal("unexpected detection error: ", err)
	}

	if got := boundaries[Top]; got != 41 {
		t.Errorf("expected top at frame 41 despite dropout, got %d", got)
	}
}

func TestDetectTopFallsBackToHighestPoint(t *testing.T) {

	d := NewDetector(DefaultDetectorParams())

	// club rises for the whole sequence, no reversal ever occurs
	frames := make([]kinematics.Frame, 40)

	for i := range frames {

		vy := 0.0
		clubY := 400.0

		if i >= 5 {
			vy = -200
			clubY = 400 - float64(i-4)*8
		}

		frames[i] = scriptFrame(i, vy, clubY)

		if i > 0 && i < 5 {
			// give the approach some lateral movement to latch onto
			frames[i].ClubVelocity.X = 50
			frames[i].ClubSpeed = 50
		}
	}

	boundaries, err := d.Detect(frames)

	if err != nil {
		t.Fatal("unexpected detection error: ", err)
	}

	// the highest club position is the final frame
	if got := boundaries[Top]; got != len(frames)-1 {
		t.Errorf("expected top fallback at frame %d, got %d",
			len(frames)-1, got)
	}
}
