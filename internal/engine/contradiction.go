package engine

import (
	"github.com/Roderick111/auror/internal/models"
)

// IsContradictionDiscovered reports whether both evidence items of the
// contradiction are in the collected set.
func IsContradictionDiscovered(c models.Contradiction, evidence map[string]bool) bool {
	for _, id := range c.Between {
		if !evidence[id] {
			return false
		}
	}
	return true
}

// FindNewlyDiscovered returns, in case-definition order, every contradiction
// whose evidence pair is now fully collected but which the state has not yet
// discovered. Pure diff; the caller merges.
func FindNewlyDiscovered(contradictions []models.Contradiction, s *models.InvestigationState) []models.Contradiction {
	var newly []models.Contradiction
	for _, c := range contradictions {
		if s.ContradictionDiscovered(c.ID) {
			continue
		}
		if IsContradictionDiscovered(c, s.Evidence) {
			newly = append(newly, c)
		}
	}
	return newly
}

// AllContradictionsDiscovered reports whether every defined contradiction has
// been discovered. Vacuously true for a case without contradictions.
func AllContradictionsDiscovered(contradictions []models.Contradiction, s *models.InvestigationState) bool {
	for _, c := range contradictions {
		if !s.ContradictionDiscovered(c.ID) {
			return false
		}
	}
	return true
}

// ResolutionRate returns resolved/total as a 0-100 percentage, 0 when total
// is 0. The scoring layer owns the zero-defined-means-100 convention.
func ResolutionRate(total, resolved int) int {
	if total == 0 {
		return 0
	}
	return 100 * resolved / total
}

// sweepContradictions diffs and merges, stamping each new discovery once.
func (e *Engine) sweepContradictions(s *models.InvestigationState) []models.Contradiction {
	newly := FindNewlyDiscovered(e.c.Contradictions, s)
	for _, c := range newly {
		s.DiscoverContradiction(c.ID, e.now())
	}
	return newly
}
