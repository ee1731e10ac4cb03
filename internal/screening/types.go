package screening

// GazePoint is a normalized 2D coordinate in frame space, the midpoint of the
// two detected eye/iris positions. (0,0) is the top-left corner, (1,1) the
// bottom-right.
type GazePoint struct {
	X float64
	Y float64
}

// DetectorResult is the fixed-shape output of the visual detector for a single
// frame. Every field may be absent: no detection is a first-class outcome, not
// an error.
type DetectorResult struct {
	// FacePresent reports whether a face bounding region was located.
	FacePresent bool
	// Gaze is the estimated gaze point, nil when fewer than two eyes were found.
	Gaze *GazePoint
	// Gesture reports whether the detector saw a communicative hand gesture.
	// The geometric rule (fingertip vs wrist) lives in the detector adapter.
	Gesture bool
}

// FrameSignals are the boolean behavioral signals derived from one frame.
// They are consumed immediately by the aggregator and never retained.
type FrameSignals struct {
	EyeContact     bool
	AttentionShift bool
	Gesture        bool
	SocialGaze     bool
}
