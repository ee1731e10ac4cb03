package screening

import "testing"

func gazeResult(x, y float64) DetectorResult {
	return DetectorResult{FacePresent: true, Gaze: &GazePoint{X: x, Y: y}}
}

func TestClassifyNoDetection(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	sig := c.Classify(DetectorResult{})

	if sig.EyeContact || sig.AttentionShift || sig.Gesture || sig.SocialGaze {
		t.Errorf("expected all signals false for empty detection, got %+v", sig)
	}
}

func TestClassifyGestureWithoutFace(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	sig := c.Classify(DetectorResult{Gesture: true})

	if !sig.Gesture {
		t.Error("gesture signal should not depend on a gaze point")
	}
	if sig.EyeContact || sig.SocialGaze {
		t.Error("gaze-derived signals must stay false without a gaze point")
	}
}

func TestClassifyEyeContactBox(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"centered", 0.5, 0.5, true},
		{"left edge exclusive", 0.4, 0.5, false},
		{"right edge exclusive", 0.6, 0.5, false},
		{"top edge exclusive", 0.5, 0.3, false},
		{"bottom edge exclusive", 0.5, 0.7, false},
		{"inside near corner", 0.41, 0.31, true},
		{"far off center", 0.9, 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultClassifierConfig())
			sig := c.Classify(gazeResult(tt.x, tt.y))
			if sig.EyeContact != tt.want {
				t.Errorf("eye contact at (%.2f, %.2f) = %v, want %v", tt.x, tt.y, sig.EyeContact, tt.want)
			}
		})
	}
}

func TestClassifySocialGaze(t *testing.T) {
	tests := []struct {
		name string
		y    float64
		want bool
	}{
		{"horizontal gaze", 0.4, true},
		{"just above threshold", 0.54, true},
		{"at threshold", 0.55, false},
		{"downward gaze", 0.8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultClassifierConfig())
			sig := c.Classify(gazeResult(0.5, tt.y))
			if sig.SocialGaze != tt.want {
				t.Errorf("social gaze at y=%.2f = %v, want %v", tt.y, sig.SocialGaze, tt.want)
			}
		})
	}
}

func TestClassifyAttentionShift(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	if sig := c.Classify(gazeResult(0.5, 0.5)); sig.AttentionShift {
		t.Error("first observed gaze cannot register a shift")
	}
	if sig := c.Classify(gazeResult(0.9, 0.9)); !sig.AttentionShift {
		t.Error("gaze travel of ~0.566 should register a shift")
	}
	if sig := c.Classify(gazeResult(0.91, 0.9)); sig.AttentionShift {
		t.Error("gaze travel of 0.01 should not register a shift")
	}
}

func TestClassifyAttentionShiftSymmetry(t *testing.T) {
	forward := NewClassifier(DefaultClassifierConfig())
	forward.Classify(gazeResult(0.5, 0.5))
	a := forward.Classify(gazeResult(0.9, 0.9))

	reversed := NewClassifier(DefaultClassifierConfig())
	reversed.Classify(gazeResult(0.9, 0.9))
	b := reversed.Classify(gazeResult(0.5, 0.5))

	if a.AttentionShift != b.AttentionShift {
		t.Error("shift detection must be symmetric in gaze order")
	}
}

func TestClassifyNoShiftWhenGazeStatic(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	shifts := 0
	for i := 0; i < 50; i++ {
		if c.Classify(gazeResult(0.45, 0.45)).AttentionShift {
			shifts++
		}
	}

	if shifts != 0 {
		t.Errorf("identical gaze every frame produced %d shifts, want 0", shifts)
	}
}

func TestClassifyStatePreservedAcrossMissedFrames(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	c.Classify(gazeResult(0.5, 0.5))

	// A frame with no gaze must not disturb the stored gaze.
	if sig := c.Classify(DetectorResult{FacePresent: true}); sig.AttentionShift {
		t.Error("frame without gaze cannot register a shift")
	}

	if sig := c.Classify(gazeResult(0.9, 0.9)); !sig.AttentionShift {
		t.Error("shift should compare against the last observed gaze, skipping blank frames")
	}
}

func TestClassifierReset(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())
	c.Classify(gazeResult(0.1, 0.1))
	c.Reset()

	if sig := c.Classify(gazeResult(0.9, 0.9)); sig.AttentionShift {
		t.Error("reset classifier must not remember gaze from a previous video")
	}
}
