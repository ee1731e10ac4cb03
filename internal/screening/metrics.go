package screening

// Baseline reference values for each behavioral metric. These are fixed by the
// screening methodology, not learned or calibrated per subject.
const (
	EyeContactBaseline       = 75.0 // % of processed frames
	AttentionShiftsBaseline  = 8.0  // events per minute
	GestureFrequencyBaseline = 6.0  // events per minute
	SocialGazeBaseline       = 60.0 // % of processed frames
	ResponseLatencyBaseline  = 1.5  // seconds
)

// BehavioralMetrics holds the five normalized metrics extracted from one
// video, each paired with its baseline. Values are rounded to one decimal
// place at aggregation time; every downstream comparison uses the rounded,
// reported value.
type BehavioralMetrics struct {
	EyeContactDuration float64 // percentage of frames with eye contact
	EyeContactBase     float64

	AttentionShifts     float64 // gaze shifts per minute
	AttentionShiftsBase float64

	GestureFrequency     float64 // gestures per minute
	GestureFrequencyBase float64

	SocialGaze     float64 // percentage of frames with social gaze
	SocialGazeBase float64

	ResponseLatency     float64 // seconds to first eye contact
	ResponseLatencyBase float64
}

func newBaselineMetrics() BehavioralMetrics {
	return BehavioralMetrics{
		EyeContactBase:       EyeContactBaseline,
		AttentionShiftsBase:  AttentionShiftsBaseline,
		GestureFrequencyBase: GestureFrequencyBaseline,
		SocialGazeBase:       SocialGazeBaseline,
		ResponseLatencyBase:  ResponseLatencyBaseline,
	}
}
