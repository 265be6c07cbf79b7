package render

import (
	"image/color"

	"github.com/teeline/go-swingkit/phases"
)

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}

	// phaseColors paints each swing phase with a distinct banner color
	phaseColors = map[phases.Name]color.RGBA{
		phases.Address:       {R: 96, G: 96, B: 96, A: 255},   // #606060
		phases.Approach:      {R: 0, G: 194, B: 255, A: 255},  // #00C2FF
		phases.Backswing:     {R: 72, G: 249, B: 10, A: 255},  // #48F90A
		phases.Top:           {R: 255, G: 178, B: 29, A: 255}, // #FFB21D
		phases.Downswing:     {R: 255, G: 112, B: 31, A: 255}, // #FF701F
		phases.Impact:        {R: 255, G: 56, B: 56, A: 255},  // #FF3838
		phases.FollowThrough: {R: 132, G: 56, B: 255, A: 255}, // #8438FF
	}

	// jointColors paints the tracked body points
	jointColors = []color.RGBA{
		{R: 255, G: 128, B: 0, A: 255},
		{R: 255, G: 153, B: 51, A: 255},
		{R: 230, G: 230, B: 0, A: 255},
		{R: 153, G: 204, B: 255, A: 255},
		{R: 102, G: 178, B: 255, A: 255},
		{R: 51, G: 153, B: 255, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
	}

	// limbColor paints the skeleton lines between joints
	limbColor = color.RGBA{R: 51, G: 153, B: 255, A: 255}
)

// PhaseColor returns the banner color for a phase
func PhaseColor(name phases.Name) color.RGBA {

	if clr, ok := phaseColors[name]; ok {
		return clr
	}

	return White
}
