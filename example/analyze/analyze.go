package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	swingkit "github.com/teeline/go-swingkit"
	"github.com/teeline/go-swingkit/metrics"
	"github.com/teeline/go-swingkit/phases"
	"github.com/teeline/go-swingkit/pose"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	posesFile := flag.String("i", "../data/swing-poses.json", "JSON file of pose frames to analyse")
	paramsFile := flag.String("c", "", "Optional YAML parameter file tuning the pipeline thresholds")
	smooth := flag.Bool("s", false, "Smooth landmark tracks before analysis")

	flag.Parse()

	params := swingkit.DefaultAnalyzerParams()

	if *paramsFile != "" {
		var err error
		params, err = swingkit.LoadAnalyzerParams(*paramsFile)

		if err != nil {
			log.Fatal("Error loading parameters: ", err)
		}
	}

	params.Smoothing.Enabled = *smooth

	frames, err := loadFrames(*posesFile)

	if err != nil {
		log.Fatal("Error loading pose frames: ", err)
	}

	analyzer := swingkit.NewAnalyzer(params)

	result, err := analyzer.Analyze(frames)

	if err != nil {
		var insufficient phases.InsufficientDataError
		var lowConfidence metrics.LowConfidenceError

		switch {
		case errors.As(err, &insufficient):
			log.Fatalf("Not enough frames to analyse, got %d but need %d",
				insufficient.Frames, insufficient.Min)

		case errors.As(err, &lowConfidence):
			log.Fatal("Unable to analyse this swing, phase detection " +
				"confidence is too low")

		default:
			log.Fatal("Analysis failed: ", err)
		}
	}

	printReport(result)
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

// printReport writes the phases, metrics and grade to stdout
func printReport(result *swingkit.Analysis) {

	fmt.Printf("Phases (%0.1f fps):\n", result.FrameRate)

	for _, iv := range result.Phases {
		forced := ""

		if iv.Forced {
			forced = " (boundary repaired)"
		}

		fmt.Printf("  %-15s frames %3d-%3d  %5.2fs  confidence %.2f%s\n",
			iv.Name, iv.StartFrame, iv.EndFrame, iv.Duration,
			iv.Confidence, forced)
	}

	m := result.Metrics

	fmt.Println("\nMetrics:")
	fmt.Printf("  tempo ratio      %6.2f   (backswing %.2fs / downswing %.2fs)\n",
		m.TempoRatio, m.BackswingTime, m.DownswingTime)
	fmt.Printf("  shoulder turn    %6.1f deg\n", m.ShoulderTurn)
	fmt.Printf("  hip turn         %6.1f deg\n", m.HipTurn)
	fmt.Printf("  x-factor         %6.1f deg\n", m.XFactor)
	fmt.Printf("  spine angle      %6.1f deg\n", m.SpineAngle)
	fmt.Printf("  weight transfer  %6.1f %%   (pressure shift %+.1f)\n",
		m.WeightTransfer, m.PressureShift)
	fmt.Printf("  swing plane      %6.1f deg\n", m.SwingPlane)
	fmt.Printf("  club path        %6.1f deg\n", m.ClubPath)
	fmt.Printf("  attack angle     %6.1f deg\n", m.AttackAngle)
	fmt.Printf("  impact velocity  %6.1f units/s\n", m.ImpactVelocity)
	fmt.Printf("  consistency      %6.1f\n", m.SwingConsistency)

	fmt.Printf("\nOverall: %.1f  grade %s  confidence %.2f\n",
		m.OverallScore, m.LetterGrade, m.Confidence)

	if len(result.Corrections) > 0 {
		fmt.Printf("Repaired boundaries: %v\n", result.Corrections)
	}
}
