package inspection

import "math"

// Band is the condition band a score falls into.
type Band string

const (
	BandExcellent Band = "Excellent"
	BandGood      Band = "Good"
	BandFair      Band = "Fair"
	BandPoor      Band = "Poor"
)

// wearPerYear is the score lost per year of element age.
const wearPerYear = 2.5

// policy is one row of the condition table.
type policy struct {
	band           Band
	min            uint8
	observation    string
	recommendation string
	cost           uint32
}

// policies is ordered from the highest band down; the first row whose
// minimum the score reaches applies.
var policies = []policy{
	{BandExcellent, 90, "Excellent condition. No visible wear.", "Monitor.", 0},
	{BandGood, 70, "Good condition. Minor cosmetic weathering.", "Routine maintenance.", 500},
	{BandFair, 40, "Fair condition. Signs of aging present.", "Plan for repairs in 3-5 years.", 5000},
	{BandPoor, 0, "Poor condition. Immediate attention required.", "Replace within 12 months.", 25000},
}

// ConditionScore computes 100 - age*2.5 - noise, clamped to [0, 100] and
// truncated toward zero.
func ConditionScore(ageYears uint32, noise float64) uint8 {
	raw := 100 - float64(ageYears)*wearPerYear - noise
	switch {
	case math.IsNaN(raw) || raw <= 0:
		return 0
	case raw >= 100:
		return 100
	}
	return uint8(raw)
}

// Classify builds the finding for a condition score.
func Classify(score uint8) SimulatedFinding {
	if score > 100 {
		score = 100
	}
	for _, p := range policies {
		if score >= p.min {
			return SimulatedFinding{
				ConditionScore: score,
				Band:           p.band,
				Observation:    p.observation,
				Recommendation: p.recommendation,
				EstimatedCost:  p.cost,
			}
		}
	}
	// Unreachable: the last row has minimum 0.
	return SimulatedFinding{ConditionScore: score, Band: BandPoor}
}
