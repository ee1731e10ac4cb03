package screening

import "math"

// ClassifierConfig holds the gaze geometry thresholds
type ClassifierConfig struct {
	// Eye contact is gaze inside an axis-aligned "looking at camera" box.
	EyeContactMinX float64
	EyeContactMaxX float64
	EyeContactMinY float64
	EyeContactMaxY float64
	// ShiftThreshold is the normalized gaze travel that counts as an attention shift.
	ShiftThreshold float64
	// SocialGazeMaxY separates horizontal (social) gaze from downward gaze.
	SocialGazeMaxY float64
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		EyeContactMinX: 0.4,
		EyeContactMaxX: 0.6,
		EyeContactMinY: 0.3,
		EyeContactMaxY: 0.7,
		ShiftThreshold: 0.15,
		SocialGazeMaxY: 0.55,
	}
}

// Classifier turns per-frame detector output into behavioral signals. It keeps
// the only cross-frame state in the pipeline: the previously observed gaze
// point, needed for attention-shift detection. One Classifier serves exactly
// one video and frames must be fed in capture order.
type Classifier struct {
	config       ClassifierConfig
	previousGaze *GazePoint
}

// NewClassifier creates a classifier with fresh gaze state
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{config: cfg}
}

// Classify derives the frame's signals and advances the gaze state.
// Missing detections never produce a positive signal.
func (c *Classifier) Classify(res DetectorResult) FrameSignals {
	sig := FrameSignals{Gesture: res.Gesture}

	gaze := res.Gaze
	if gaze == nil {
		// No gaze this frame: state is left untouched so the next shift
		// comparison is still against the last observed gaze.
		return sig
	}

	sig.EyeContact = gaze.X > c.config.EyeContactMinX && gaze.X < c.config.EyeContactMaxX &&
		gaze.Y > c.config.EyeContactMinY && gaze.Y < c.config.EyeContactMaxY

	sig.SocialGaze = gaze.Y < c.config.SocialGazeMaxY

	if c.previousGaze != nil {
		dist := math.Hypot(gaze.X-c.previousGaze.X, gaze.Y-c.previousGaze.Y)
		sig.AttentionShift = dist > c.config.ShiftThreshold
	}

	// Update unconditionally so shifts always compare against the
	// immediately preceding observed gaze, flagged or not.
	prev := *gaze
	c.previousGaze = &prev

	return sig
}

// Reset clears the gaze state so the classifier can process another video
func (c *Classifier) Reset() {
	c.previousGaze = nil
}
