package pose

// Landmark names produced by the upstream pose estimation model.  The
// pipeline only reads the subset of the COCO body points listed in
// RequiredLandmarks, any additional landmarks carried in a frame are ignored.
const (
	Nose          = "nose"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
)

// RequiredLandmarks are the body points the analysis pipeline derives its
// features from.  A frame missing one of these degrades gracefully, the
// affected derived quantity is carried forward instead of aborting the run.
var RequiredLandmarks = []string{
	LeftWrist, RightWrist,
	LeftShoulder, RightShoulder,
	LeftHip, RightHip,
	Nose,
}

// DefaultFrameRate is the frame rate assumed when a frame sequence carries
// no usable timestamps
const DefaultFrameRate = 30.0

// Landmark is a single tracked body point in normalized frame coordinates.
// X and Y are in the range [0,1] with Y increasing downward.  Confidence is
// the pose model's visibility score for the point in the range [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Frame is a single video frame's pose observation, a mapping of landmark
// name to tracked point plus the frame's position in the sequence and
// capture time.  Frames are produced by the pose estimation collaborator and
// are never mutated by the pipeline.
type Frame struct {
	Index     int                 `json:"frame_index"`
	Timestamp float64             `json:"timestamp_seconds"`
	Landmarks map[string]Landmark `json:"landmarks"`
}

// Get returns the named landmark and whether the frame contains it
func (f Frame) Get(name string) (Landmark, bool) {
	lm, ok := f.Landmarks[name]
	return lm, ok
}

// EstimateFrameRate derives the capture frame rate from consecutive frame
// timestamps.  If the sequence is too short or the timestamps are absent or
// non-monotonic the fallback rate is returned, or DefaultFrameRate when the
// fallback is not positive.
func EstimateFrameRate(frames []Frame, fallback float64) float64 {

	if fallback <= 0 {
		fallback = DefaultFrameRate
	}

	if len(frames) < 2 {
		return fallback
	}

	total := 0.0

	for i := 1; i < len(frames); i++ {
		dt := frames[i].Timestamp - frames[i-1].Timestamp

		if dt <= 0 {
			// absent or non-monotonic timestamps
			return fallback
		}

		total += dt
	}

	return float64(len(frames)-1) / total
}
