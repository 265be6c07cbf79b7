package swingkit

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/teeline/go-swingkit/phases"
	"github.com/teeline/go-swingkit/pose"
)

// syntheticSwing builds a 90 frame reference swing at 30 fps, address
// through frame 10, backswing to frame 40, downswing to impact at frame 75
// and a finish that settles by frame 80
func syntheticSwing() []pose.Frame {

	frames := make([]pose.Frame, 90)

	for i := range frames {
		frames[i] = pose.Frame{
			Index:     i,
			Timestamp: float64(i) / 30,
			Landmarks: swingPose(i),
		}
	}

	return frames
}

// swingPose synthesizes the landmark set for one frame of the reference
// swing
func swingPose(i int) map[string]pose.Landmark {

	// wrist height, rising through the backswing and accelerating back
	// down through the downswing
	var wristY float64

	switch {
	case i <= 10:
		wristY = 0.6

	case i <= 40:
		wristY = 0.6 - 0.4*math.Sin(math.Pi/2*float64(i-10)/30)

	case i <= 75:
		t := float64(i-40) / 35
		wristY = 0.2 + 0.55*t*t

	case i == 76:
		wristY = 0.77

	case i == 77:
		wristY = 0.78

	case i == 78:
		wristY = 0.785

	default:
		wristY = 0.787
	}

	// shoulder rotation, 90 degrees at the top unwinding through impact,
	// hips turn half as far
	var theta float64

	switch {
	case i <= 10:
		theta = 0

	case i <= 40:
		theta = 90 * float64(i-10) / 30

	case i <= 45:
		theta = 90

	case i <= 75:
		theta = 90 * (1 - float64(i-45)/30)
	}

	phi := theta / 2

	// lateral hip slide toward the target through the downswing
	hipCX := 0.45

	switch {
	case i > 75:
		hipCX = 0.85

	case i > 41:
		hipCX = 0.45 + 0.4*float64(i-41)/34
	}

	rad := theta * math.Pi / 180
	prad := phi * math.Pi / 180

	sdx := 0.12 * math.Cos(rad)
	sdy := 0.12 * math.Sin(rad)
	hdx := 0.08 * math.Cos(prad)
	hdy := 0.08 * math.Sin(prad)

	return map[string]pose.Landmark{
		pose.Nose:          {X: 0.5, Y: 0.15, Confidence: 0.95},
		pose.LeftShoulder:  {X: 0.5 - sdx, Y: 0.35 - sdy, Confidence: 0.95},
		pose.RightShoulder: {X: 0.5 + sdx, Y: 0.35 + sdy, Confidence: 0.95},
		pose.LeftWrist:     {X: 0.49, Y: wristY, Confidence: 0.95},
		pose.RightWrist:    {X: 0.51, Y: wristY, Confidence: 0.95},
		pose.LeftHip:       {X: hipCX - hdx, Y: 0.55 - hdy, Confidence: 0.95},
		pose.RightHip:      {X: hipCX + hdx, Y: 0.55 + hdy, Confidence: 0.95},
	}
}

// staticFrames builds n motionless frames at the address position
func staticFrames(n int) []pose.Frame {

	frames := make([]pose.Frame, n)

	for i := range frames {
		frames[i] = pose.Frame{
			Index:     i,
			Timestamp: float64(i) / 30,
			Landmarks: swingPose(0),
		}
	}

	return frames
}

func TestAnalyzeSyntheticSwing(t *testing.T) {

	analyzer := NewAnalyzer(DefaultAnalyzerParams())

	result, err := analyzer.Analyze(syntheticSwing())

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	top := intervalStart(result, phases.Top)
	impact := intervalStart(result, phases.Impact)

	if top < 38 || top > 42 {
		t.Errorf("expected top near frame 40, got %d", top)
	}

	if impact < 73 || impact > 77 {
		t.Errorf("expected impact near frame 75, got %d", impact)
	}

	if got := intervalStart(result, phases.Address); got != 0 {
		t.Errorf("expected address at frame 0, got %d", got)
	}

	// backswing and downswing take roughly a second each
	if result.Metrics.TempoRatio < 0.7 || result.Metrics.TempoRatio > 1.1 {
		t.Errorf("expected tempo ratio near 0.88, got %.3f",
			result.Metrics.TempoRatio)
	}

	// the hips slide fully toward the target by impact
	if math.Abs(result.Metrics.WeightTransfer-85) > 2 {
		t.Errorf("expected weight transfer near 85, got %.1f",
			result.Metrics.WeightTransfer)
	}

	// shoulders wind up 90 degrees at the top
	if math.Abs(result.Metrics.ShoulderTurn-90) > 5 {
		t.Errorf("expected shoulder turn near 90, got %.1f",
			result.Metrics.ShoulderTurn)
	}

	if result.Metrics.OverallScore < 0 || result.Metrics.OverallScore > 100 {
		t.Errorf("overall score %.1f out of range", result.Metrics.OverallScore)
	}

	if result.Metrics.LetterGrade == "" {
		t.Error("expected a letter grade")
	}

	if result.Metrics.Confidence <= 0 || result.Metrics.Confidence > 1 {
		t.Errorf("confidence %.3f out of range", result.Metrics.Confidence)
	}
}

func TestAnalyzeDeterminism(t *testing.T) {

	analyzer := NewAnalyzer(DefaultAnalyzerParams())

	frames := syntheticSwing()

	a, err := analyzer.Analyze(frames)

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	b, err := analyzer.Analyze(frames)

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("repeated analysis of the same input differed")
	}
}

func TestAnalyzePhaseTiling(t *testing.T) {

	analyzer := NewAnalyzer(DefaultAnalyzerParams())

	frames := syntheticSwing()

	result, err := analyzer.Analyze(frames)

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	if len(result.Phases) != len(phases.Order) {
		t.Fatalf("expected %d phases, got %d", len(phases.Order), len(result.Phases))
	}

	// the intervals tile the sequence in the fixed phase order
	for i, iv := range result.Phases {

		if iv.Name != phases.Order[i] {
			t.Errorf("phase %d: expected %s, got %s", i, phases.Order[i], iv.Name)
		}

		if iv.Confidence < 0 || iv.Confidence > 1 {
			t.Errorf("%s: confidence %.3f out of range", iv.Name, iv.Confidence)
		}

		if i == 0 {
			continue
		}

		prev := result.Phases[i-1]

		if iv.StartFrame != prev.EndFrame {
			t.Errorf("%s starts at %d but %s ends at %d",
				iv.Name, iv.StartFrame, prev.Name, prev.EndFrame)
		}

		if iv.StartFrame <= prev.StartFrame {
			t.Errorf("%s start %d not after %s start %d",
				iv.Name, iv.StartFrame, prev.Name, prev.StartFrame)
		}
	}

	last := result.Phases[len(result.Phases)-1]

	if last.EndFrame != len(frames)-1 {
		t.Errorf("expected final phase to end at %d, got %d",
			len(frames)-1, last.EndFrame)
	}
}

func TestAnalyzeMinimumFrames(t *testing.T) {

	analyzer := NewAnalyzer(DefaultAnalyzerParams())

	// exactly the minimum sequence length must complete, even motionless
	result, err := analyzer.Analyze(staticFrames(30))

	if err != nil {
		t.Fatal("expected analysis to complete at 30 frames, got ", err)
	}

	if len(result.Phases) != len(phases.Order) {
		t.Errorf("expected %d phases, got %d", len(phases.Order), len(result.Phases))
	}

	if result.Metrics.Confidence <= 0 {
		t.Errorf("expected positive confidence, got %.3f", result.Metrics.Confidence)
	}
}

func TestAnalyzeTooFewFrames(t *testing.T) {

	analyzer := NewAnalyzer(DefaultAnalyzerParams())

	_, err := analyzer.Analyze(staticFrames(29))

	var insufficient phases.InsufficientDataError

	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}

	if insufficient.Frames != 29 || insufficient.Min != 30 {
		t.Errorf("expected error fields 29/30, got %d/%d",
			insufficient.Frames, insufficient.Min)
	}
}

func TestAnalyzeMissingLandmarks(t *testing.T) {

	analyzer := NewAnalyzer(DefaultAnalyzerParams())

	clean, err := analyzer.Analyze(syntheticSwing())

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	// drop the left wrist for a short stretch of the backswing
	degraded := syntheticSwing()

	for i := 20; i <= 25; i++ {
		lm := degraded[i].Landmarks[pose.LeftWrist]
		lm.Confidence = 0
		degraded[i].Landmarks[pose.LeftWrist] = lm
	}

	result, err := analyzer.Analyze(degraded)

	if err != nil {
		t.Fatal("expected degraded run to complete, got ", err)
	}

	// a brief dropout must neither move the key boundaries nor shift the
	// grade materially
	if got := intervalStart(result, phases.Top); got != intervalStart(clean, phases.Top) {
		t.Errorf("top moved from %d to %d under dropout",
			intervalStart(clean, phases.Top), got)
	}

	diff := math.Abs(result.Metrics.OverallScore - clean.Metrics.OverallScore)

	if diff >= 10 {
		t.Errorf("score shifted %.1f points under a six frame dropout", diff)
	}
}

func TestAnalyzeFirstFrameDropout(t *testing.T) {

	analyzer := NewAnalyzer(DefaultAnalyzerParams())

	// the wrists are invisible on the very first frame, the first phase
	// must still own the sequence from frame 0
	frames := syntheticSwing()

	for _, name := range []string{pose.LeftWrist, pose.RightWrist} {
		lm := frames[0].Landmarks[name]
		lm.Confidence = 0
		frames[0].Landmarks[name] = lm
	}

	result, err := analyzer.Analyze(frames)

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	if got := result.Phases[0].StartFrame; got != 0 {
		t.Errorf("expected first phase to start at frame 0, got %d", got)
	}

	// the intervals still cover every captured frame
	want := float64(len(frames)-1) / 30

	if math.Abs(result.Metrics.TotalSwingTime-want) > 1e-9 {
		t.Errorf("expected total swing time %.3f, got %.3f",
			want, result.Metrics.TotalSwingTime)
	}
}

func TestAnalyzeWithSmoothing(t *testing.T) {

	params := DefaultAnalyzerParams()
	params.Smoothing.Enabled = true

	analyzer := NewAnalyzer(params)

	frames := syntheticSwing()

	result, err := analyzer.Analyze(frames)

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	// smoothing operates on a copy, the caller's frames stay untouched
	if !reflect.DeepEqual(frames, syntheticSwing()) {
		t.Error("input frames were mutated by the smoothing stage")
	}

	top := intervalStart(result, phases.Top)

	if top < 38 || top > 44 {
		t.Errorf("expected top near frame 40 after smoothing, got %d", top)
	}
}

func TestNewAnalyzerFrameRateFallback(t *testing.T) {

	a := NewAnalyzer(AnalyzerParams{FrameRate: 24})

	if a.Params.Extractor.FrameRate != 24 {
		t.Errorf("expected extractor frame rate 24, got %.1f",
			a.Params.Extractor.FrameRate)
	}

	if a.Params.Calculator.FrameRate != 24 {
		t.Errorf("expected calculator frame rate 24, got %.1f",
			a.Params.Calculator.FrameRate)
	}
}

func TestPool(t *testing.T) {

	pool := NewPool(2, DefaultAnalyzerParams())
	defer pool.Close()

	a := pool.Get()
	b := pool.Get()

	if a == nil || b == nil {
		t.Fatal("expected two analyzers from the pool")
	}

	result, err := a.Analyze(syntheticSwing())

	if err != nil {
		t.Fatal("unexpected analysis error: ", err)
	}

	if result.Metrics.LetterGrade == "" {
		t.Error("expected a graded result from a pooled analyzer")
	}

	pool.Return(a)

	if got := pool.Get(); got != a {
		t.Error("expected the returned analyzer back from the pool")
	}
}

func TestPoolReturnAfterClose(t *testing.T) {

	pool := NewPool(1, DefaultAnalyzerParams())

	a := pool.Get()

	pool.Close()

	// a worker finishing after shutdown must not panic the host
	pool.Return(a)

	if got := pool.Get(); got != nil {
		t.Errorf("expected nil from a closed pool, got %v", got)
	}

	// closing again is a no-op
	pool.Close()
}

// intervalStart returns the start frame of the named phase
func intervalStart(result *Analysis, name phases.Name) int {

	for _, iv := range result.Phases {
		if iv.Name == name {
			return iv.StartFrame
		}
	}

	return -1
}
