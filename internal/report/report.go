// Package report assembles screening results into the serializable record
// consumed by sinks, the store and the HTTP API. Assembly itself is
// side-effect free; writing happens through a Sink.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joysa21/auticareai/internal/screening"
)

const (
	StatusAboveBaseline = "above_baseline"
	StatusBelowBaseline = "below_baseline"
)

// Signal is one behavioral metric rendered for the report, with its status
// derived from comparing the rounded value against the baseline.
type Signal struct {
	Value    string `json:"value"`
	Baseline string `json:"baseline"`
	Status   string `json:"status"`
}

// ObjectiveSignals lists the five metrics in their report form
type ObjectiveSignals struct {
	EyeContactDuration Signal `json:"eye_contact_duration"`
	AttentionShifts    Signal `json:"attention_shifts"`
	GestureFrequency   Signal `json:"gesture_frequency"`
	SocialGaze         Signal `json:"social_gaze"`
	ResponseLatency    Signal `json:"response_latency"`
}

// BehavioralIndicators documents the indicator categories the methodology
// covers. All flags are always true regardless of input: they assert coverage,
// not per-video findings.
type BehavioralIndicators struct {
	EyeGazePatterns       bool `json:"eye_gaze_patterns"`
	SocialEngagement      bool `json:"social_engagement"`
	EnvironmentalResponse bool `json:"environmental_response"`
	RepetitiveBehaviors   bool `json:"repetitive_behaviors"`
	CommunicationPatterns bool `json:"communication_patterns"`
}

// RiskAssessment is the classification section of the report
type RiskAssessment struct {
	Level       string  `json:"level"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// Metrics groups the signal and indicator sections
type Metrics struct {
	ObjectiveSignals     ObjectiveSignals     `json:"objective_signals"`
	BehavioralIndicators BehavioralIndicators `json:"behavioral_indicators"`
}

// Report is the immutable screening record for one processed video
type Report struct {
	ID             string         `json:"id"`
	Source         string         `json:"source"`
	GeneratedAt    time.Time      `json:"generated_at"`
	RiskAssessment RiskAssessment `json:"risk_assessment"`
	Metrics        Metrics        `json:"metrics"`
}

// Assemble packages metrics and risk assessment into a report for the given
// source video.
func Assemble(m screening.BehavioralMetrics, risk screening.RiskAssessment, source string) *Report {
	level := risk.Level.String()

	return &Report{
		ID:          uuid.NewString(),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		RiskAssessment: RiskAssessment{
			Level:      level,
			Confidence: risk.Confidence,
			Description: fmt.Sprintf(
				"The screening indicates a %s likelihood of autism spectrum disorder.",
				strings.ToLower(level)),
		},
		Metrics: Metrics{
			ObjectiveSignals:     renderSignals(m),
			BehavioralIndicators: allIndicators(),
		},
	}
}

// RenderMetrics produces just the metrics section, for callers that want
// signals without a risk assessment.
func RenderMetrics(m screening.BehavioralMetrics) Metrics {
	return Metrics{
		ObjectiveSignals:     renderSignals(m),
		BehavioralIndicators: allIndicators(),
	}
}

func renderSignals(m screening.BehavioralMetrics) ObjectiveSignals {
	return ObjectiveSignals{
		EyeContactDuration: Signal{
			Value:    fmt.Sprintf("%.1f%%", m.EyeContactDuration),
			Baseline: fmt.Sprintf("%.1f%%", m.EyeContactBase),
			Status:   statusWhenLowerIsRisky(m.EyeContactDuration, m.EyeContactBase),
		},
		AttentionShifts: Signal{
			Value:    fmt.Sprintf("%.1f/min", m.AttentionShifts),
			Baseline: fmt.Sprintf("%.1f/min", m.AttentionShiftsBase),
			Status:   statusWhenHigherIsRisky(m.AttentionShifts, m.AttentionShiftsBase),
		},
		GestureFrequency: Signal{
			Value:    fmt.Sprintf("%.1f/min", m.GestureFrequency),
			Baseline: fmt.Sprintf("%.1f/min", m.GestureFrequencyBase),
			Status:   statusWhenLowerIsRisky(m.GestureFrequency, m.GestureFrequencyBase),
		},
		SocialGaze: Signal{
			Value:    fmt.Sprintf("%.1f%%", m.SocialGaze),
			Baseline: fmt.Sprintf("%.1f%%", m.SocialGazeBase),
			Status:   statusWhenLowerIsRisky(m.SocialGaze, m.SocialGazeBase),
		},
		ResponseLatency: Signal{
			Value:    fmt.Sprintf("%.1fs", m.ResponseLatency),
			Baseline: fmt.Sprintf("%.1fs", m.ResponseLatencyBase),
			Status:   statusWhenHigherIsRisky(m.ResponseLatency, m.ResponseLatencyBase),
		},
	}
}

// statusWhenLowerIsRisky tags metrics where falling short of the baseline is
// the risk direction. Equality counts as above: the comparison is strict.
func statusWhenLowerIsRisky(value, baseline float64) string {
	if value < baseline {
		return StatusBelowBaseline
	}
	return StatusAboveBaseline
}

// statusWhenHigherIsRisky tags metrics where exceeding the baseline is the
// risk direction. Equality counts as below.
func statusWhenHigherIsRisky(value, baseline float64) string {
	if value > baseline {
		return StatusAboveBaseline
	}
	return StatusBelowBaseline
}

func allIndicators() BehavioralIndicators {
	return BehavioralIndicators{
		EyeGazePatterns:       true,
		SocialEngagement:      true,
		EnvironmentalResponse: true,
		RepetitiveBehaviors:   true,
		CommunicationPatterns: true,
	}
}
