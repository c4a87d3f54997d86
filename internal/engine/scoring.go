package engine

import (
	"math"

	"github.com/Roderick111/auror/internal/models"
)

// Scoring reads a finished investigation and grades it 0-100 per axis.
// Every formula degrades gracefully on empty input; nothing here divides by
// zero or returns an error.

// InvestigationEfficiency blends quality of collection (share of collected
// evidence that was critical, 70%) with evidence yield per point spent
// (capped at 1, 30%). No evidence collected scores 0.
func InvestigationEfficiency(c *models.Case, s *models.InvestigationState) int {
	collected := len(s.Evidence)
	if collected == 0 {
		return 0
	}

	critical := 0
	for id := range s.Evidence {
		if ev, ok := c.EvidenceByID(id); ok && ev.Critical {
			critical++
		}
	}
	qualityShare := float64(critical) / float64(collected)

	yield := 1.0
	if s.PointsSpent > 0 {
		yield = math.Min(1, float64(collected)/float64(s.PointsSpent))
	}

	return clampScore(math.Round(70*qualityShare + 30*yield))
}

// ThoroughnessScore penalizes premature closure: up to 50 points for budget
// left unspent and up to 50 for critical evidence never collected. A fully
// spent budget and no missed criticals score 100.
func ThoroughnessScore(c *models.Case, s *models.InvestigationState) int {
	remainingPenalty := 0.0
	if s.Budget > 0 {
		remainingPenalty = 50 * float64(s.RemainingPoints()) / float64(s.Budget)
	}

	missedPenalty := 0.0
	totalCritical := c.CriticalEvidenceCount()
	if totalCritical > 0 {
		missed := 0
		for _, ev := range c.Evidence {
			if ev.Critical && !s.HasEvidence(ev.ID) {
				missed++
			}
		}
		missedPenalty = 50 * float64(missed) / float64(totalCritical)
	}

	return clampScore(math.Round(100 - remainingPenalty - missedPenalty))
}

// ContradictionMastery rewards finding contradictions (60%) and resolving
// the found ones (40%). A case defining zero contradictions scores 100 by
// convention.
func ContradictionMastery(c *models.Case, s *models.InvestigationState) int {
	total := len(c.Contradictions)
	if total == 0 {
		return 100
	}

	discovered := len(s.Contradictions)
	discoveredShare := float64(discovered) / float64(total)

	resolvedShare := 0.0
	if discovered > 0 {
		resolvedShare = float64(s.ResolvedContradictions()) / float64(discovered)
	}

	return clampScore(math.Round(60*discoveredShare + 40*resolvedShare))
}

// TierDiscoveryScore is the share of tier-2 hypotheses the player unlocked.
// A case defining none scores 100 by convention.
func TierDiscoveryScore(c *models.Case, s *models.InvestigationState) int {
	defined := c.Tier2Count()
	if defined == 0 {
		return 100
	}

	unlocked := 0
	for _, h := range c.Hypotheses {
		if h.Tier == models.TierTwo && s.HypothesisUnlocked(h.ID) {
			unlocked++
		}
	}
	return clampScore(math.Round(100 * float64(unlocked) / float64(defined)))
}

// ScoreState computes the full report card for a state against its case.
func ScoreState(c *models.Case, s *models.InvestigationState) models.Score {
	return models.Score{
		Efficiency:           InvestigationEfficiency(c, s),
		Thoroughness:         ThoroughnessScore(c, s),
		ContradictionMastery: ContradictionMastery(c, s),
		TierDiscovery:        TierDiscoveryScore(c, s),
	}
}

// Score grades the given state against the engine's case.
func (e *Engine) Score(s *models.InvestigationState) models.Score {
	return ScoreState(e.c, s)
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
