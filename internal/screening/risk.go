package screening

// RiskLevel is the three-tier screening classification
type RiskLevel int

const (
	LowRisk RiskLevel = iota
	MediumRisk
	HighRisk
)

func (l RiskLevel) String() string {
	switch l {
	case LowRisk:
		return "Low Risk"
	case MediumRisk:
		return "Medium Risk"
	case HighRisk:
		return "High Risk"
	default:
		return "Unknown"
	}
}

// RiskAssessment pairs the classification with a per-tier confidence. The
// confidence is a fixed constant per tier expressing confidence in the
// category boundary, not a sample-level statistic, which is why Medium sits
// below both Low and High.
type RiskAssessment struct {
	Level      RiskLevel
	Confidence float64
}

// Tolerance multipliers for the three factors that are not bare baseline
// comparisons.
const (
	attentionShiftTolerance  = 1.3
	gestureTolerance         = 0.7
	responseLatencyTolerance = 1.5
)

// Score maps the metrics to a risk assessment. Five independent boolean
// factors are checked against their baselines; the share of true factors
// picks the tier. Pure function of its input: scoring the same metrics twice
// yields identical output.
func Score(m BehavioralMetrics) RiskAssessment {
	riskFactors := 0
	totalFactors := 5

	if m.EyeContactDuration < m.EyeContactBase {
		riskFactors++
	}
	if m.AttentionShifts > m.AttentionShiftsBase*attentionShiftTolerance {
		riskFactors++
	}
	if m.GestureFrequency < m.GestureFrequencyBase*gestureTolerance {
		riskFactors++
	}
	if m.SocialGaze < m.SocialGazeBase {
		riskFactors++
	}
	if m.ResponseLatency > m.ResponseLatencyBase*responseLatencyTolerance {
		riskFactors++
	}

	riskPercentage := float64(riskFactors) / float64(totalFactors) * 100

	switch {
	case riskPercentage < 30:
		return RiskAssessment{Level: LowRisk, Confidence: 0.85}
	case riskPercentage < 60:
		return RiskAssessment{Level: MediumRisk, Confidence: 0.75}
	default:
		return RiskAssessment{Level: HighRisk, Confidence: 0.80}
	}
}
