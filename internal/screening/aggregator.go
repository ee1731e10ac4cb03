package screening

import (
	"errors"
	"math"
)

// ErrEmptyInput is returned when a video yields zero usable frames. Risk
// scoring must not be attempted in that case; no report is produced.
var ErrEmptyInput = errors.New("no frames could be extracted from video")

const (
	// minDurationMinutes floors the elapsed time for rate divisions so
	// degenerate inputs (zero or malformed fps) stay finite.
	minDurationMinutes = 1e-6

	// latencyWindowSeconds is how far into the video the aggregator looks
	// for the first eye contact.
	latencyWindowSeconds = 5

	// defaultLatencySeconds is the ceiling reported when no eye contact
	// occurs inside the window: "no early engagement detected", not a
	// missing value.
	defaultLatencySeconds = 3.0
)

// Aggregate folds the per-frame signal sequence into the five behavioral
// metrics. frameCount is the number of processed frames and fps the capture
// rate of the source video.
func Aggregate(signals []FrameSignals, frameCount int, fps float64) (BehavioralMetrics, error) {
	if frameCount == 0 {
		return BehavioralMetrics{}, ErrEmptyInput
	}

	var eyeContactFrames, attentionShifts, gestures, socialGazeFrames int
	for _, sig := range signals {
		if sig.EyeContact {
			eyeContactFrames++
		}
		if sig.AttentionShift {
			attentionShifts++
		}
		if sig.Gesture {
			gestures++
		}
		if sig.SocialGaze {
			socialGazeFrames++
		}
	}

	durationMinutes := 0.0
	if fps > 0 {
		durationMinutes = float64(frameCount) / (fps * 60)
	}
	if durationMinutes <= 0 {
		durationMinutes = minDurationMinutes
	}

	m := newBaselineMetrics()
	m.EyeContactDuration = round1(float64(eyeContactFrames) / float64(frameCount) * 100)
	m.AttentionShifts = round1(float64(attentionShifts) / durationMinutes)
	m.GestureFrequency = round1(float64(gestures) / durationMinutes)
	m.SocialGaze = round1(float64(socialGazeFrames) / float64(frameCount) * 100)
	m.ResponseLatency = round1(responseLatency(signals, fps))

	return m, nil
}

// responseLatency is the time of the first eye-contact frame within the
// opening window, falling back to the high-latency default. With fps <= 0 the
// window is unrepresentable, so the default applies directly.
func responseLatency(signals []FrameSignals, fps float64) float64 {
	if fps <= 0 {
		return defaultLatencySeconds
	}

	window := int(fps * latencyWindowSeconds)
	if window > len(signals) {
		window = len(signals)
	}

	for idx := 0; idx < window; idx++ {
		if signals[idx].EyeContact {
			return float64(idx) / fps
		}
	}

	return defaultLatencySeconds
}

// round1 rounds to one decimal place. Rounding happens exactly once, here, so
// risk classification and report statuses always see the reported values.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
