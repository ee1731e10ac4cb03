package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/joysa21/auticareai/internal/screening"
)

func sampleMetrics() screening.BehavioralMetrics {
	m, err := screening.Aggregate(make([]screening.FrameSignals, 10), 10, 30)
	if err != nil {
		panic(err)
	}
	return m
}

func TestAssembleStatusDirections(t *testing.T) {
	m := sampleMetrics()
	m.EyeContactDuration = 50.0 // below 75
	m.AttentionShifts = 12.0    // above 8
	m.GestureFrequency = 9.0    // above 6
	m.SocialGaze = 70.0         // above 60
	m.ResponseLatency = 0.5     // below 1.5

	rep := Assemble(m, screening.Score(m), "video.mp4")
	signals := rep.Metrics.ObjectiveSignals

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"eye_contact_duration", signals.EyeContactDuration.Status, StatusBelowBaseline},
		{"attention_shifts", signals.AttentionShifts.Status, StatusAboveBaseline},
		{"gesture_frequency", signals.GestureFrequency.Status, StatusAboveBaseline},
		{"social_gaze", signals.SocialGaze.Status, StatusAboveBaseline},
		{"response_latency", signals.ResponseLatency.Status, StatusBelowBaseline},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s status = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestAssembleStatusAtBaselineIsStrict(t *testing.T) {
	m := sampleMetrics()
	m.EyeContactDuration = 75.0 // exactly at baseline
	m.AttentionShifts = 8.0
	m.ResponseLatency = 1.5

	signals := Assemble(m, screening.Score(m), "video.mp4").Metrics.ObjectiveSignals

	// Equality takes the not-exceeding branch of each comparison.
	if signals.EyeContactDuration.Status != StatusAboveBaseline {
		t.Errorf("eye contact at baseline = %q, want %q", signals.EyeContactDuration.Status, StatusAboveBaseline)
	}
	if signals.AttentionShifts.Status != StatusBelowBaseline {
		t.Errorf("attention shifts at baseline = %q, want %q", signals.AttentionShifts.Status, StatusBelowBaseline)
	}
	if signals.ResponseLatency.Status != StatusBelowBaseline {
		t.Errorf("response latency at baseline = %q, want %q", signals.ResponseLatency.Status, StatusBelowBaseline)
	}
}

func TestAssembleValueFormatting(t *testing.T) {
	m := sampleMetrics()
	m.EyeContactDuration = 75.0
	m.AttentionShifts = 24.0
	m.ResponseLatency = 1.0

	signals := Assemble(m, screening.Score(m), "video.mp4").Metrics.ObjectiveSignals

	if signals.EyeContactDuration.Value != "75.0%" {
		t.Errorf("eye contact value = %q, want %q", signals.EyeContactDuration.Value, "75.0%")
	}
	if signals.AttentionShifts.Value != "24.0/min" {
		t.Errorf("attention shifts value = %q, want %q", signals.AttentionShifts.Value, "24.0/min")
	}
	if signals.ResponseLatency.Value != "1.0s" {
		t.Errorf("response latency value = %q, want %q", signals.ResponseLatency.Value, "1.0s")
	}
	if signals.SocialGaze.Baseline != "60.0%" {
		t.Errorf("social gaze baseline = %q, want %q", signals.SocialGaze.Baseline, "60.0%")
	}
}

func TestAssembleIndicatorsAlwaysTrue(t *testing.T) {
	// The indicator list documents methodology coverage and must be emitted
	// verbatim for any input, including an all-zero video.
	m := sampleMetrics()

	ind := Assemble(m, screening.Score(m), "video.mp4").Metrics.BehavioralIndicators
	if !ind.EyeGazePatterns || !ind.SocialEngagement || !ind.EnvironmentalResponse ||
		!ind.RepetitiveBehaviors || !ind.CommunicationPatterns {
		t.Errorf("indicator categories must all be true, got %+v", ind)
	}
}

func TestAssembleDescription(t *testing.T) {
	m := sampleMetrics()
	rep := Assemble(m, screening.RiskAssessment{Level: screening.HighRisk, Confidence: 0.80}, "video.mp4")

	want := "The screening indicates a high risk likelihood of autism spectrum disorder."
	if rep.RiskAssessment.Description != want {
		t.Errorf("description = %q, want %q", rep.RiskAssessment.Description, want)
	}
	if rep.RiskAssessment.Level != "High Risk" {
		t.Errorf("level = %q, want %q", rep.RiskAssessment.Level, "High Risk")
	}
}

func TestFileSinkWritesNamedFields(t *testing.T) {
	m := sampleMetrics()
	rep := Assemble(m, screening.Score(m), "video.mp4")

	path := filepath.Join(t.TempDir(), "reports", "out.json")
	if err := (FileSink{Path: path}).Write(context.Background(), rep); err != nil {
		t.Fatalf("file sink write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report back: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	for _, key := range []string{"id", "source", "generated_at", "risk_assessment", "metrics"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report JSON missing %q field", key)
		}
	}

	var metrics struct {
		ObjectiveSignals map[string]Signal `json:"objective_signals"`
	}
	if err := json.Unmarshal(decoded["metrics"], &metrics); err != nil {
		t.Fatalf("metrics section: %v", err)
	}

	for _, key := range []string{
		"eye_contact_duration", "attention_shifts", "gesture_frequency",
		"social_gaze", "response_latency",
	} {
		sig, ok := metrics.ObjectiveSignals[key]
		if !ok {
			t.Errorf("objective_signals missing %q", key)
			continue
		}
		if sig.Value == "" || sig.Baseline == "" || sig.Status == "" {
			t.Errorf("%s has empty fields: %+v", key, sig)
		}
	}
}
