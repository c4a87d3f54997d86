package engine

import (
	"github.com/Roderick111/auror/internal/models"
)

// EvaluateRequirement reports whether a requirement tree is satisfied by the
// current state. all_of and any_of recurse with short-circuiting; threshold
// leaves compare a named state metric with >=. An unknown metric never
// satisfies; load-time validation rejects it before play.
func EvaluateRequirement(req *models.UnlockRequirement, s *models.InvestigationState) bool {
	switch req.Kind {
	case models.RequirementEvidence:
		return s.HasEvidence(req.EvidenceID)
	case models.RequirementAllOf:
		for i := range req.Children {
			if !EvaluateRequirement(&req.Children[i], s) {
				return false
			}
		}
		return true
	case models.RequirementAnyOf:
		for i := range req.Children {
			if EvaluateRequirement(&req.Children[i], s) {
				return true
			}
		}
		return false
	case models.RequirementThreshold:
		value, ok := s.Metric(req.Metric)
		return ok && value >= req.Threshold
	}
	return false
}

// IsHypothesisUnlocked reports whether the hypothesis is available: tier-1
// always, tier-2 when any of its requirement trees holds. A tier-2 hypothesis
// without requirements is permanently locked.
func IsHypothesisUnlocked(h models.Hypothesis, s *models.InvestigationState) bool {
	if h.Tier == models.TierOne {
		return true
	}
	req := h.Unlock.Requirement()
	if req == nil {
		return false
	}
	return EvaluateRequirement(req, s)
}

// FindNewlyUnlocked returns, in case-definition order, every hypothesis that
// is unlocked under the current state but not yet in the state's unlocked
// set. It is a pure diff: merging the result into the set is the caller's
// job.
func FindNewlyUnlocked(hypotheses []models.Hypothesis, s *models.InvestigationState) []models.Hypothesis {
	var newly []models.Hypothesis
	for _, h := range hypotheses {
		if s.HypothesisUnlocked(h.ID) {
			continue
		}
		if IsHypothesisUnlocked(h, s) {
			newly = append(newly, h)
		}
	}
	return newly
}

// sweepUnlocks diffs and merges until nothing new unlocks. Every mutating
// operation ends with a sweep so that threshold metrics fed by secrets,
// contradictions and spent points unlock hypotheses the moment they move, not
// only on the next evidence event. The loop handles thresholds over
// hypotheses_unlocked itself; it terminates because the unlocked set only
// grows and is bounded by the case definition.
func (e *Engine) sweepUnlocks(s *models.InvestigationState) []models.Hypothesis {
	var unlocked []models.Hypothesis
	for {
		newly := FindNewlyUnlocked(e.c.Hypotheses, s)
		if len(newly) == 0 {
			return unlocked
		}
		for _, h := range newly {
			s.UnlockHypothesis(h.ID)
		}
		unlocked = append(unlocked, newly...)
	}
}
