package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/teeline/go-swingkit/phases"
)

// PhaseBanner draws a filled banner naming the active swing phase in the
// top left corner of the image, painted in the phase's color
func PhaseBanner(img *gocv.Mat, name phases.Name, font Font) {

	text := phaseLabel(name)
	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	banner := image.Rect(0, 0,
		textSize.X+font.LeftPad+font.RightPad,
		textSize.Y+font.TopPad+font.BottomPad)

	gocv.Rectangle(img, banner, PhaseColor(name), -1)

	gocv.PutTextWithParams(img, text,
		image.Pt(font.LeftPad, textSize.Y+font.TopPad),
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}

// ScoreLabel draws the overall score and letter grade below the given
// vertical offset in the top left corner
func ScoreLabel(img *gocv.Mat, score float64, grade string, yOffset int,
	font Font) {

	text := fmt.Sprintf("%.0f (%s)", score, grade)
	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	box := image.Rect(0, yOffset,
		textSize.X+font.LeftPad+font.RightPad,
		yOffset+textSize.Y+font.TopPad+font.BottomPad)

	gocv.Rectangle(img, box, Black, -1)

	gocv.PutTextWithParams(img, text,
		image.Pt(font.LeftPad, yOffset+textSize.Y+font.TopPad),
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}

// phaseLabel formats a phase name for display
func phaseLabel(name phases.Name) string {

	switch name {
	case phases.Address:
		return "Address"
	case phases.Approach:
		return "Approach"
	case phases.Backswing:
		return "Backswing"
	case phases.Top:
		return "Top"
	case phases.Downswing:
		return "Downswing"
	case phases.Impact:
		return "Impact"
	case phases.FollowThrough:
		return "Follow Through"
	}

	return string(name)
}
