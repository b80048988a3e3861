// Package score rates health plans against a client's providers,
// medications, and finances across six weighted metrics on a 0-10
// scale.
package score

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// Weights holds the relative importance of each scoring metric. They
// must sum to 1 within a small tolerance.
type Weights struct {
	ProviderNetwork    float64 `json:"provider_network"`
	MedicationCoverage float64 `json:"medication_coverage"`
	TotalCost          float64 `json:"total_cost"`
	FinancialProtect   float64 `json:"financial_protection"`
	AdminSimplicity    float64 `json:"administrative_simplicity"`
	PlanQuality        float64 `json:"plan_quality"`
}

// DefaultWeights returns the standard metric weighting.
func DefaultWeights() Weights {
	return Weights{
		ProviderNetwork:    0.30,
		MedicationCoverage: 0.25,
		TotalCost:          0.20,
		FinancialProtect:   0.10,
		AdminSimplicity:    0.10,
		PlanQuality:        0.05,
	}
}

// Validate checks that the weights form a proper distribution.
func (w Weights) Validate() error {
	for _, v := range []float64{
		w.ProviderNetwork, w.MedicationCoverage, w.TotalCost,
		w.FinancialProtect, w.AdminSimplicity, w.PlanQuality,
	} {
		if v < 0 {
			return eris.New("score: weights must be non-negative")
		}
	}
	if math.Abs(w.sum()-1.0) > 1e-6 {
		return eris.Errorf("score: weights sum to %.4f, want 1.0", w.sum())
	}
	return nil
}

func (w Weights) sum() float64 {
	return w.ProviderNetwork + w.MedicationCoverage + w.TotalCost +
		w.FinancialProtect + w.AdminSimplicity + w.PlanQuality
}

// WeightsFromPriorities scales the default weights by the client's
// stated priorities and renormalizes so they sum to 1. A priority of 3
// is neutral; higher values pull weight toward that metric. Plan
// quality has no matching priority and keeps its default base weight
// before normalization.
func WeightsFromPriorities(p model.Priorities) Weights {
	base := DefaultWeights()
	w := Weights{
		ProviderNetwork:    base.ProviderNetwork * scalePriority(p.KeepProviders),
		MedicationCoverage: base.MedicationCoverage * scalePriority(p.AvoidPriorAuth),
		TotalCost:          base.TotalCost * scalePriority(p.MinimizeTotalCost),
		FinancialProtect:   base.FinancialProtect * scalePriority(p.PredictableCosts),
		AdminSimplicity:    base.AdminSimplicity * scalePriority(p.SimpleAdmin),
		PlanQuality:        base.PlanQuality,
	}
	total := w.sum()
	if total == 0 {
		return base
	}
	w.ProviderNetwork /= total
	w.MedicationCoverage /= total
	w.TotalCost /= total
	w.FinancialProtect /= total
	w.AdminSimplicity /= total
	w.PlanQuality /= total
	return w
}

// scalePriority maps a 1-5 priority onto a multiplier with 3 neutral.
func scalePriority(p int) float64 {
	if p < 1 {
		p = 3
	}
	if p > 5 {
		p = 5
	}
	return float64(p) / 3.0
}
