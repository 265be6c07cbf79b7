package swingkit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teeline/go-swingkit/kinematics"
	"github.com/teeline/go-swingkit/metrics"
	"github.com/teeline/go-swingkit/phases"
	"github.com/teeline/go-swingkit/scoring"
)

// SmoothingParams controls the optional landmark smoothing stage
type SmoothingParams struct {
	// Enabled turns the Kalman landmark smoother on, the pipeline runs on
	// raw landmark tracks by default
	Enabled bool `yaml:"enabled"`

	kinematics.SmootherParams `yaml:",inline"`
}

// AnalyzerParams aggregates the tunable parameters of every pipeline stage.
// The thresholds are empirically chosen values carried as configuration
// rather than constants, load a tuned set from YAML with
// LoadAnalyzerParams.  Zero valued fields fall back to their defaults.
type AnalyzerParams struct {
	// FrameRate is the fallback frame rate applied to every stage when the
	// input frames carry no usable timestamps
	FrameRate float64 `yaml:"frame_rate"`

	Smoothing  SmoothingParams            `yaml:"smoothing"`
	Extractor  kinematics.ExtractorParams `yaml:"extractor"`
	Detector   phases.DetectorParams      `yaml:"detector"`
	Validator  phases.ValidatorParams     `yaml:"validator"`
	Calculator metrics.CalculatorParams   `yaml:"calculator"`
	Scoring    scoring.EngineParams       `yaml:"scoring"`
}

// DefaultAnalyzerParams returns the reference parameter set for every stage
func DefaultAnalyzerParams() AnalyzerParams {
	return AnalyzerParams{
		FrameRate: 30,
		Smoothing: SmoothingParams{
			Enabled:        false,
			SmootherParams: kinematics.DefaultSmootherParams(),
		},
		Extractor:  kinematics.DefaultExtractorParams(),
		Detector:   phases.DefaultDetectorParams(),
		Validator:  phases.DefaultValidatorParams(),
		Calculator: metrics.DefaultCalculatorParams(),
		Scoring:    scoring.DefaultEngineParams(),
	}
}

// LoadAnalyzerParams reads a YAML parameter file over the defaults, so a
// file only needs to carry the values it tunes
func LoadAnalyzerParams(path string) (AnalyzerParams, error) {

	params := DefaultAnalyzerParams()

	data, err := os.ReadFile(path)

	if err != nil {
		return params, fmt.Errorf("read params file: %w", err)
	}

	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("parse params file: %w", err)
	}

	return params, nil
}
