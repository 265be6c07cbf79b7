package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the club head trail
type TrailStyle struct {
	LineColor     color.RGBA
	LineThickness int
	// CircleColor and CircleRadius style the marker drawn at the most
	// recent trail point
	CircleColor  color.RGBA
	CircleRadius int
	// MaxPoints is the maximum number of most recent trail points to draw,
	// zero draws the whole trail
	MaxPoints int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineColor:     Yellow,
		LineThickness: 1,
		CircleColor:   Pink,
		CircleRadius:  3,
		MaxPoints:     0,
	}
}

// ClubTrail draws the estimated club head path on the source image.  The
// points are the club head positions of the frames analysed so far, in
// image pixel coordinates.
func ClubTrail(img *gocv.Mat, points []image.Point, style TrailStyle) {

	if style.MaxPoints > 0 && len(points) > style.MaxPoints {
		points = points[len(points)-style.MaxPoints:]
	}

	if len(points) < 2 {
		return
	}

	for i := 1; i < len(points); i++ {
		gocv.Line(img, points[i-1], points[i],
			style.LineColor, style.LineThickness)
	}

	// mark the current club head position
	gocv.Circle(img, points[len(points)-1],
		style.CircleRadius, style.CircleColor, -1)
}
