package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/teeline/go-swingkit/pose"
)

// joints lists the tracked body points in drawing order, the index pairs
// with jointColors
var joints = []string{
	pose.Nose,
	pose.LeftShoulder,
	pose.RightShoulder,
	pose.LeftWrist,
	pose.RightWrist,
	pose.LeftHip,
	pose.RightHip,
}

// limbs defines the skeleton lines to draw between tracked points
var limbs = [][2]string{
	{pose.LeftShoulder, pose.RightShoulder},
	{pose.LeftHip, pose.RightHip},
	{pose.LeftShoulder, pose.LeftHip},
	{pose.RightShoulder, pose.RightHip},
	{pose.LeftShoulder, pose.LeftWrist},
	{pose.RightShoulder, pose.RightWrist},
}

// Skeleton draws the tracked landmarks of one frame on the source image.
// Landmark coordinates are normalized, they are scaled to the image
// dimensions.  Landmarks below minConfidence are skipped.
func Skeleton(img *gocv.Mat, frame pose.Frame, minConfidence float64,
	lineThickness int) {

	width := float64(img.Cols())
	height := float64(img.Rows())

	// draw limb lines first so joints sit on top
	for _, limb := range limbs {

		a, aOK := frame.Get(limb[0])
		b, bOK := frame.Get(limb[1])

		if !aOK || !bOK {
			continue
		}

		if a.Confidence < minConfidence || b.Confidence < minConfidence {
			continue
		}

		gocv.Line(img,
			image.Pt(int(a.X*width), int(a.Y*height)),
			image.Pt(int(b.X*width), int(b.Y*height)),
			limbColor, lineThickness)
	}

	// draw circles at the tracked joints
	for i, name := range joints {

		lm, ok := frame.Get(name)

		if !ok || lm.Confidence < minConfidence {
			continue
		}

		gocv.Circle(img, image.Pt(int(lm.X*width), int(lm.Y*height)),
			4, jointColors[i%len(jointColors)], -1)
	}
}
