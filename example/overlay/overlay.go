package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	swingkit "github.com/teeline/go-swingkit"
	"github.com/teeline/go-swingkit/kinematics"
	"github.com/teeline/go-swingkit/phases"
	"github.com/teeline/go-swingkit/pose"
	"github.com/teeline/go-swingkit/render"
)

// TTFFontSize is the point size the grade badge is rendered at
const TTFFontSize = 28

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	videoFile := flag.String("v", "../data/swing.mp4", "Video file the poses were estimated from")
	posesFile := flag.String("p", "../data/swing-poses.json", "JSON file of pose frames")
	outFile := flag.String("o", "./swing-out.mp4", "Annotated video file to write")
	fontFile := flag.String("t", "", "Optional TTF font for the grade badge")

	flag.Parse()

	frames, err := loadFrames(*posesFile)

	if err != nil {
		log.Fatal("Error loading pose frames: ", err)
	}

	params := swingkit.DefaultAnalyzerParams()
	analyzer := swingkit.NewAnalyzer(params)

	result, err := analyzer.Analyze(frames)

	if err != nil {
		log.Fatal("Analysis failed: ", err)
	}

	log.Printf("swing graded %s (%.1f) at confidence %.2f",
		result.Metrics.LetterGrade, result.Metrics.OverallScore,
		result.Metrics.Confidence)

	// extract the club head track for the trail overlay
	kin := kinematics.NewExtractor(params.Extractor).Extract(frames)

	// open input video
	video, err := gocv.VideoCaptureFile(*videoFile)

	if err != nil {
		log.Fatal("Error opening video: ", err)
	}

	defer video.Close()

	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))
	fps := video.Get(gocv.VideoCaptureFPS)

	writer, err := gocv.VideoWriterFile(*outFile, "mp4v", fps, width, height, true)

	if err != nil {
		log.Fatal("Error opening video writer: ", err)
	}

	defer writer.Close()

	var face font.Face

	if *fontFile != "" {
		face, err = loadFontFace(*fontFile)

		if err != nil {
			log.Fatal("Error loading font: ", err)
		}
	}

	img := gocv.NewMat()
	defer img.Close()

	style := render.DefaultTrailStyle()
	labelFont := render.DefaultFont()

	var trail []image.Point
	coordScale := params.Extractor.CoordScale

	for i := 0; ; i++ {

		if ok := video.Read(&img); !ok || img.Empty() {
			break
		}

		if i >= len(frames) {
			writer.Write(img)
			continue
		}

		// accumulate the club head trail in pixel coordinates
		if kin[i].ClubObserved {
			trail = append(trail, image.Pt(
				int(kin[i].ClubHead.X/coordScale*float64(width)),
				int(kin[i].ClubHead.Y/coordScale*float64(height))))
		}

		render.Skeleton(&img, frames[i], params.Extractor.MinVisibility, 2)
		render.ClubTrail(&img, trail, style)
		render.PhaseBanner(&img, phaseAt(result, i), labelFont)

		if face != nil {
			badge := fmt.Sprintf("%s  %.0f", result.Metrics.LetterGrade,
				result.Metrics.OverallScore)
			drawBadge(&img, badge, face, 10, height-20)
		} else {
			render.ScoreLabel(&img, result.Metrics.OverallScore,
				result.Metrics.LetterGrade, 30, labelFont)
		}

		writer.Write(img)
	}

	log.Println("done, wrote ", *outFile)
}

// phaseAt returns the phase a frame index falls in
func phaseAt(result *swingkit.Analysis, frame int) (name phases.Name) {

	name = result.Phases[0].Name

	for _, iv := range result.Phases {
		if frame >= iv.StartFrame {
			name = iv.Name
		}
	}

	return name
}

// loadFrames reads a JSON array of pose frames
func loadFrames(path string) ([]pose.Frame, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	var frames []pose.Frame

	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, err
	}

	return frames, nil
}

// loadFontFace loads a TTF font and creates a type face for badge rendering
func loadFontFace(path string) (font.Face, error) {

	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    TTFFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return face, nil
}

// drawBadge renders text onto the frame with the TTF face by drawing to an
// RGBA image and blending it over the video frame
func drawBadge(img *gocv.Mat, text string, face font.Face, x, y int) {

	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(),
		image.NewUniform(color.RGBA{0, 0, 0, 0}), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	dr.DrawString(text)

	imgRGBA, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(),
		rgba.Bounds().Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil || imgRGBA.Empty() {
		return
	}

	defer imgRGBA.Close()

	gocv.CvtColor(imgRGBA, &imgRGBA, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, imgRGBA, 1.0, 0, img)
}
