// Package detector integrates the external visual detector: a pluggable
// capability that locates a face, eye/iris positions and hand keypoints in a
// single frame. Input-shape normalization happens here in the adapter; the
// classifier only ever sees the fixed-shape screening.DetectorResult.
package detector

import (
	"context"
	"errors"

	"github.com/joysa21/auticareai/internal/screening"
	"github.com/joysa21/auticareai/internal/video"
)

// ErrDetectorFault marks a genuine internal detector failure (crashed worker,
// corrupt frame buffer). "Nothing found" is never an error; it is encoded in
// the optional fields of the result.
var ErrDetectorFault = errors.New("detector fault")

// Detector analyzes one frame. Implementations must be safe for concurrent
// use: the pipeline may fan frames out across goroutines.
type Detector interface {
	Detect(ctx context.Context, frame video.Frame) (screening.DetectorResult, error)
	Close() error
}

// Point is a normalized landmark coordinate in frame space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks is the raw per-frame output of a detector worker
type Landmarks struct {
	FaceFound bool    `json:"face_found"`
	Eyes      []Point `json:"eyes"`
	IndexTip  *Point  `json:"index_tip"`
	Wrist     *Point  `json:"wrist"`
	Error     string  `json:"error,omitempty"`
}

// gestureLift is how far (normalized) the index fingertip must sit above the
// wrist to count as a pointing/reaching gesture.
const gestureLift = 0.1

// resultFromLandmarks reduces raw landmarks to the classifier's fixed shape.
// The gaze point is the midpoint of the first two detected eye positions; the
// gesture rule compares fingertip and wrist height. Absent landmarks leave
// the corresponding fields empty.
func resultFromLandmarks(lm Landmarks) screening.DetectorResult {
	res := screening.DetectorResult{FacePresent: lm.FaceFound}

	if len(lm.Eyes) >= 2 {
		res.Gaze = &screening.GazePoint{
			X: (lm.Eyes[0].X + lm.Eyes[1].X) / 2,
			Y: (lm.Eyes[0].Y + lm.Eyes[1].Y) / 2,
		}
	}

	if lm.IndexTip != nil && lm.Wrist != nil {
		res.Gesture = lm.IndexTip.Y < lm.Wrist.Y-gestureLift
	}

	return res
}
