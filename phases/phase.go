package phases

// Name identifies one of the seven swing phases
type Name string

// The seven swing phases in their fixed temporal order
const (
	Address       Name = "address"
	Approach      Name = "approach"
	Backswing     Name = "backswing"
	Top           Name = "top"
	Downswing     Name = "downswing"
	Impact        Name = "impact"
	FollowThrough Name = "follow_through"
)

// Order lists the seven phases in temporal order.  It is the single source
// of truth for phase ordering, the validator enforces monotonicity by
// iterating over it rather than comparing phases pairwise.
var Order = []Name{
	Address,
	Approach,
	Backswing,
	Top,
	Downswing,
	Impact,
	FollowThrough,
}

// Interval is one validated phase segment of the swing.  Intervals tile the
// frame sequence, the end frame of each phase equals the start frame of the
// next and the last phase ends at the final frame index.
type Interval struct {
	// Name of the phase
	Name Name
	// StartFrame is the first frame index of the phase
	StartFrame int
	// EndFrame is the frame index the phase ends at
	EndFrame int
	// Duration of the phase in seconds
	Duration float64
	// Confidence is the detection confidence for this phase in [0,1]
	Confidence float64
	// Forced reports that the detected boundary violated the phase order
	// and was repaired by the validator, indicating low confidence
	// detection for this phase
	Forced bool
}

// Report is the validator's output, the seven phase intervals in temporal
// order plus the overall phase detection confidence
type Report struct {
	// Intervals holds one interval per phase in Order
	Intervals []Interval
	// Confidence is the mean of the per phase confidences in [0,1]
	Confidence float64
	// Corrections lists the phases whose boundaries were forced into order
	Corrections []Name
}

// Interval returns the interval for the named phase
func (r Report) Interval(name Name) Interval {

	for _, iv := range r.Intervals {
		if iv.Name == name {
			return iv
		}
	}

	return Interval{}
}
