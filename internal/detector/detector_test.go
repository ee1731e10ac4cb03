package detector

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/joysa21/auticareai/internal/video"
)

func TestResultFromLandmarks(t *testing.T) {
	tests := []struct {
		name        string
		lm          Landmarks
		wantFace    bool
		wantGaze    bool
		wantGazeX   float64
		wantGazeY   float64
		wantGesture bool
	}{
		{
			name: "nothing found",
			lm:   Landmarks{},
		},
		{
			name:     "face without eyes",
			lm:       Landmarks{FaceFound: true},
			wantFace: true,
		},
		{
			name:     "single eye yields no gaze",
			lm:       Landmarks{FaceFound: true, Eyes: []Point{{X: 0.4, Y: 0.5}}},
			wantFace: true,
		},
		{
			name: "two eyes yield midpoint gaze",
			lm: Landmarks{FaceFound: true, Eyes: []Point{
				{X: 0.4, Y: 0.5},
				{X: 0.6, Y: 0.3},
			}},
			wantFace:  true,
			wantGaze:  true,
			wantGazeX: 0.5,
			wantGazeY: 0.4,
		},
		{
			name: "fingertip clearly above wrist",
			lm: Landmarks{
				IndexTip: &Point{X: 0.5, Y: 0.3},
				Wrist:    &Point{X: 0.5, Y: 0.6},
			},
			wantGesture: true,
		},
		{
			name: "fingertip exactly at threshold is not a gesture",
			lm: Landmarks{
				IndexTip: &Point{X: 0.5, Y: 0.5},
				Wrist:    &Point{X: 0.5, Y: 0.6},
			},
		},
		{
			name: "fingertip without wrist",
			lm:   Landmarks{IndexTip: &Point{X: 0.5, Y: 0.1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resultFromLandmarks(tt.lm)

			if res.FacePresent != tt.wantFace {
				t.Errorf("face present = %v, want %v", res.FacePresent, tt.wantFace)
			}
			if (res.Gaze != nil) != tt.wantGaze {
				t.Fatalf("gaze present = %v, want %v", res.Gaze != nil, tt.wantGaze)
			}
			if res.Gaze != nil {
				if res.Gaze.X != tt.wantGazeX || res.Gaze.Y != tt.wantGazeY {
					t.Errorf("gaze = (%v, %v), want (%v, %v)", res.Gaze.X, res.Gaze.Y, tt.wantGazeX, tt.wantGazeY)
				}
			}
			if res.Gesture != tt.wantGesture {
				t.Errorf("gesture = %v, want %v", res.Gesture, tt.wantGesture)
			}
		})
	}
}

// mockCloser lets an in-memory buffer stand in for an OS pipe
type mockCloser struct {
	*bytes.Buffer
}

func (m *mockCloser) Close() error { return nil }

func mockWorker(response string) (*Worker, *mockCloser) {
	stdin := &mockCloser{Buffer: new(bytes.Buffer)}
	w := &Worker{
		logger: zerolog.Nop(),
		stdin:  stdin,
		stdout: bufio.NewScanner(bytes.NewBufferString(response)),
	}
	return w, stdin
}

func testFrame() video.Frame {
	return video.Frame{Index: 0, Width: 2, Height: 2, Data: []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}}
}

func TestWorkerDetect(t *testing.T) {
	response := `{"face_found":true,"eyes":[{"x":0.45,"y":0.5},{"x":0.55,"y":0.5}]}` + "\n"
	w, stdin := mockWorker(response)

	res, err := w.Detect(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	if !res.FacePresent {
		t.Error("expected face present")
	}
	if res.Gaze == nil || res.Gaze.X != 0.5 || res.Gaze.Y != 0.5 {
		t.Errorf("gaze = %+v, want (0.5, 0.5)", res.Gaze)
	}

	// Verify the request the worker received.
	var req workerRequest
	if err := json.Unmarshal(bytes.TrimSpace(stdin.Bytes()), &req); err != nil {
		t.Fatalf("request is not valid JSON: %v", err)
	}
	if req.Width != 2 || req.Height != 2 {
		t.Errorf("request dimensions = %dx%d, want 2x2", req.Width, req.Height)
	}
	decoded, err := base64.StdEncoding.DecodeString(req.FrameData)
	if err != nil {
		t.Fatalf("frame data is not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, testFrame().Data) {
		t.Error("frame bytes were not transmitted intact")
	}
}

func TestWorkerDetectFault(t *testing.T) {
	w, _ := mockWorker(`{"error":"corrupt frame buffer"}` + "\n")

	_, err := w.Detect(context.Background(), testFrame())
	if !errors.Is(err, ErrDetectorFault) {
		t.Fatalf("expected ErrDetectorFault, got %v", err)
	}
}

func TestWorkerDetectClosedOutput(t *testing.T) {
	w, _ := mockWorker("")

	_, err := w.Detect(context.Background(), testFrame())
	if !errors.Is(err, ErrDetectorFault) {
		t.Fatalf("expected ErrDetectorFault on closed output, got %v", err)
	}
}

func TestWorkerDetectMalformedResponse(t *testing.T) {
	w, _ := mockWorker("not json\n")

	_, err := w.Detect(context.Background(), testFrame())
	if !errors.Is(err, ErrDetectorFault) {
		t.Fatalf("expected ErrDetectorFault on malformed response, got %v", err)
	}
}

func TestWorkerDetectCancelledContext(t *testing.T) {
	w, _ := mockWorker(`{"face_found":true}` + "\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Detect(ctx, testFrame())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
