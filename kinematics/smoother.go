package kinematics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/teeline/go-swingkit/pose"
)

// SmootherParams defines the tunable parameters for landmark smoothing
type SmootherParams struct {
	// ProcessNoise is the standard deviation of the constant velocity
	// model's process noise, in normalized units
	ProcessNoise float64 `yaml:"process_noise"`
	// MeasurementNoise is the standard deviation of the pose estimator's
	// positional jitter, in normalized units
	MeasurementNoise float64 `yaml:"measurement_noise"`
	// MinConfidence is the minimum landmark confidence for an observation
	// to update the filter, lower confidence frames are predicted through
	MinConfidence float64 `yaml:"min_confidence"`
}

// DefaultSmootherParams returns smoother parameters tuned for typical pose
// estimator jitter on normalized coordinates
func DefaultSmootherParams() SmootherParams {
	return SmootherParams{
		ProcessNoise:     0.5,
		MeasurementNoise: 0.01,
		MinConfidence:    0.1,
	}
}

// Smoother applies a constant velocity Kalman filter to each required
// landmark track before feature extraction.  Smoothing is optional, the
// analyser's heuristics run on raw tracks by default.
type Smoother struct {
	// Params are the smoothing configuration parameters
	Params SmootherParams
}

// NewSmoother returns a Smoother instance.  Zero valued parameters are
// replaced with their defaults.
func NewSmoother(p SmootherParams) *Smoother {

	def := DefaultSmootherParams()

	if p.ProcessNoise <= 0 {
		p.ProcessNoise = def.ProcessNoise
	}

	if p.MeasurementNoise <= 0 {
		p.MeasurementNoise = def.MeasurementNoise
	}

	if p.MinConfidence <= 0 {
		p.MinConfidence = def.MinConfidence
	}

	return &Smoother{Params: p}
}

// Smooth returns a copy of the frame sequence with each required landmark's
// position track filtered.  Landmark confidences are preserved and low
// confidence observations are predicted through rather than updated, so the
// dropout policy of the extractor is unaffected.  The input frames are not
// mutated.
func (s *Smoother) Smooth(frames []pose.Frame) []pose.Frame {

	if len(frames) == 0 {
		return nil
	}

	out := make([]pose.Frame, len(frames))

	for i, pf := range frames {
		copied := pf
		copied.Landmarks = make(map[string]pose.Landmark, len(pf.Landmarks))

		for name, lm := range pf.Landmarks {
			copied.Landmarks[name] = lm
		}

		out[i] = copied
	}

	fps := pose.EstimateFrameRate(frames, 0)
	fallbackDt := 1.0 / fps

	for _, name := range pose.RequiredLandmarks {
		s.smoothTrack(out, name, fallbackDt)
	}

	return out
}

// smoothTrack filters a single landmark's track in place
func (s *Smoother) smoothTrack(frames []pose.Frame, name string, fallbackDt float64) {

	var pf *pointFilter
	lastAt := 0.0

	for i := range frames {

		lm, ok := frames[i].Get(name)

		if pf == nil {
			// initialise on the first confident observation
			if ok && lm.Confidence >= s.Params.MinConfidence {
				pf = newPointFilter(lm.X, lm.Y,
					s.Params.ProcessNoise, s.Params.MeasurementNoise)
				lastAt = frames[i].Timestamp
			}
			continue
		}

		dt := frames[i].Timestamp - lastAt

		if dt <= 0 {
			dt = fallbackDt
		}

		lastAt = frames[i].Timestamp

		pf.predict(dt)

		if ok && lm.Confidence >= s.Params.MinConfidence {
			pf.correct(lm.X, lm.Y)

			x, y := pf.position()
			lm.X = x
			lm.Y = y
			frames[i].Landmarks[name] = lm
		}
	}
}

// pointFilter is a constant velocity Kalman filter over a single tracked
// point with state vector (x, y, vx, vy)
type pointFilter struct {
	state      *mat.VecDense
	covariance *mat.Dense
	updateMat  *mat.Dense
	q          float64
	r          float64
}

// newPointFilter initialises the filter at the first observed position with
// zero velocity
func newPointFilter(x, y, processNoise, measurementNoise float64) *pointFilter {

	state := mat.NewVecDense(4, []float64{x, y, 0, 0})

	// position is trusted to the measurement noise, velocity is unknown
	covariance := mat.NewDense(4, 4, nil)
	covariance.Set(0, 0, measurementNoise*measurementNoise)
	covariance.Set(1, 1, measurementNoise*measurementNoise)
	covariance.Set(2, 2, 1.0)
	covariance.Set(3, 3, 1.0)

	// updateMat projects the state to measurement space
	updateMat := mat.NewDense(2, 4, nil)
	updateMat.Set(0, 0, 1)
	updateMat.Set(1, 1, 1)

	return &pointFilter{
		state:      state,
		covariance: covariance,
		updateMat:  updateMat,
		q:          processNoise,
		r:          measurementNoise,
	}
}

// predict advances the state by dt seconds under the constant velocity model
func (pf *pointFilter) predict(dt float64) {

	motionMat := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		motionMat.Set(i, i, 1)
	}

	motionMat.Set(0, 2, dt)
	motionMat.Set(1, 3, dt)

	// x = F x
	next := mat.NewVecDense(4, nil)
	next.MulVec(motionMat, pf.state)
	pf.state.CopyVec(next)

	// P = F P Ft + Q
	cov := mat.NewDense(4, 4, nil)
	cov.Mul(motionMat, pf.covariance)
	cov.Mul(cov, motionMat.T())

	qp := pf.q * dt * dt
	qv := pf.q * dt

	cov.Set(0, 0, cov.At(0, 0)+qp*qp)
	cov.Set(1, 1, cov.At(1, 1)+qp*qp)
	cov.Set(2, 2, cov.At(2, 2)+qv*qv)
	cov.Set(3, 3, cov.At(3, 3)+qv*qv)

	pf.covariance = cov
}

// correct folds a position measurement into the state
func (pf *pointFilter) correct(x, y float64) {

	// S = H P Ht + R
	innovationCov := mat.NewDense(2, 2, nil)
	tmp := mat.NewDense(2, 4, nil)
	tmp.Mul(pf.updateMat, pf.covariance)
	innovationCov.Mul(tmp, pf.updateMat.T())
	innovationCov.Set(0, 0, innovationCov.At(0, 0)+pf.r*pf.r)
	innovationCov.Set(1, 1, innovationCov.At(1, 1)+pf.r*pf.r)

	var inverse mat.Dense

	if err := inverse.Inverse(innovationCov); err != nil {
		// degenerate covariance, keep the prediction
		return
	}

	// K = P Ht S-1
	gain := mat.NewDense(4, 2, nil)
	tmp2 := mat.NewDense(4, 2, nil)
	tmp2.Mul(pf.covariance, pf.updateMat.T())
	gain.Mul(tmp2, &inverse)

	// innovation is the measurement residual
	innovation := mat.NewVecDense(2, []float64{
		x - pf.state.AtVec(0),
		y - pf.state.AtVec(1),
	})

	// x = x + K innovation
	adjust := mat.NewVecDense(4, nil)
	adjust.MulVec(gain, innovation)

	for i := 0; i < 4; i++ {
		pf.state.SetVec(i, pf.state.AtVec(i)+adjust.AtVec(i))
	}

	// P = (I - K H) P
	kh := mat.NewDense(4, 4, nil)
	kh.Mul(gain, pf.updateMat)

	identity := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		identity.Set(i, i, 1)
	}

	identity.Sub(identity, kh)

	newCov := mat.NewDense(4, 4, nil)
	newCov.Mul(identity, pf.covariance)

	pf.covariance = newCov
}

// position returns the filtered point position
func (pf *pointFilter) position() (float64, float64) {
	return pf.state.AtVec(0), pf.state.AtVec(1)
}
