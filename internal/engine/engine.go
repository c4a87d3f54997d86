// Package engine is the decision core of the investigation game: it gates
// tiered hypotheses behind requirement trees, discovers contradictions
// between collected evidence, runs the per-witness trust and secret state
// machine, resolves Legilimency casts, and scores finished cases.
//
// Every operation is synchronous and works on an explicitly passed
// InvestigationState. The engine holds no global state, performs no I/O and
// draws randomness only from its injected source; callers own per-session
// serialization of mutations.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/models"
)

// Runtime failures are wrapped sentinels, fatal to the single calling
// operation only. Configuration problems never surface here: they are
// handled at case load, where a broken secret is disabled and a broken case
// is rejected.
var (
	ErrEvidenceNotFound           = errors.NewSentinel("evidence not found")
	ErrWitnessNotFound            = errors.NewSentinel("witness not found")
	ErrContradictionNotFound      = errors.NewSentinel("contradiction not found")
	ErrContradictionNotDiscovered = errors.NewSentinel("contradiction not discovered")
	ErrHypothesisNotFound         = errors.NewSentinel("hypothesis not found")
	ErrHypothesisLocked           = errors.NewSentinel("hypothesis locked")
	ErrInsufficientPoints         = errors.NewSentinel("insufficient investigation points")
	ErrCaseClosed                 = errors.NewSentinel("case closed")
)

// RNG is the engine's injected randomness source, satisfied by
// *math/rand/v2.Rand and by deterministic doubles in tests.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

// Engine binds one validated case definition to the operations that mutate
// player state for it. Construction parses every secret trigger once;
// conditions that fail to parse disable their secret for the lifetime of the
// engine.
type Engine struct {
	c        *models.Case
	logger   *slog.Logger
	rng      RNG
	triggers map[string]*TriggerCondition
	now      func() time.Time
}

// New builds an engine for a loaded case. Malformed trigger conditions are
// logged and their secrets disabled; they never fail construction.
func New(c *models.Case, logger *slog.Logger, rng RNG) *Engine {
	e := &Engine{
		c:        c,
		logger:   logger,
		rng:      rng,
		triggers: make(map[string]*TriggerCondition),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, witness := range c.Witnesses {
		for _, secret := range witness.Secrets {
			cond, err := ParseTrigger(secret.Condition)
			if err != nil {
				e.logger.LogAttrs(context.Background(), slog.LevelWarn,
					"disabling secret with malformed trigger",
					slog.String("caseID", c.ID),
					slog.String("witnessID", witness.ID),
					slog.String("secretID", secret.ID),
					errors.SlogError(err),
				)
				continue
			}
			e.triggers[secret.ID] = cond
		}
	}
	return e
}

// Case returns the immutable case definition the engine runs.
func (e *Engine) Case() *models.Case {
	return e.c
}

// NewState starts a fresh attempt at the engine's case.
func (e *Engine) NewState() *models.InvestigationState {
	return models.NewInvestigationState(e.c)
}

// Reset restores the state to its initial form in place. It is all or
// nothing: there is no partial undo.
func (e *Engine) Reset(s *models.InvestigationState) {
	*s = *models.NewInvestigationState(e.c)
}

// CollectResult is the outcome fact set of one evidence collection.
type CollectResult struct {
	Evidence          models.Evidence
	AlreadyCollected  bool
	PointsSpent       int
	PointsRemaining   int
	RevealedSecrets   []RevealedSecret
	NewContradictions []models.Contradiction
	NewlyUnlocked     []models.Hypothesis
}

// CollectEvidence spends the item's point cost and adds it to the collected
// set, then reports everything that follows from it: secrets whose triggers
// now fire on any witness, contradictions whose pair is now complete, and
// hypotheses that unlock. Re-collecting is a spend-free no-op. Insufficient
// budget is an error and leaves the state untouched.
func (e *Engine) CollectEvidence(s *models.InvestigationState, evidenceID string) (CollectResult, error) {
	if s.Completed() {
		return CollectResult{}, errors.Wrap(ErrCaseClosed, "collect evidence", slog.String("evidenceID", evidenceID))
	}
	ev, ok := e.c.EvidenceByID(evidenceID)
	if !ok {
		return CollectResult{}, errors.Wrap(ErrEvidenceNotFound, "collect evidence", slog.String("evidenceID", evidenceID))
	}
	if s.HasEvidence(evidenceID) {
		return CollectResult{
			Evidence:         ev,
			AlreadyCollected: true,
			PointsRemaining:  s.RemainingPoints(),
		}, nil
	}
	if ev.Cost > s.RemainingPoints() {
		return CollectResult{}, errors.Wrap(ErrInsufficientPoints, "collect evidence",
			slog.String("evidenceID", evidenceID),
			slog.Int("cost", ev.Cost),
			slog.Int("remaining", s.RemainingPoints()),
		)
	}

	s.AddEvidence(evidenceID)
	s.PointsSpent += ev.Cost

	// Sweep order matters: secrets and contradictions move the metrics the
	// unlock thresholds read, so the unlock sweep runs last.
	result := CollectResult{
		Evidence:        ev,
		PointsSpent:     ev.Cost,
		PointsRemaining: s.RemainingPoints(),
	}
	result.RevealedSecrets = e.sweepAllSecrets(s)
	result.NewContradictions = e.sweepContradictions(s)
	result.NewlyUnlocked = e.sweepUnlocks(s)
	return result, nil
}

// ResolveResult is the outcome fact set of acknowledging a contradiction.
type ResolveResult struct {
	Contradiction   models.Contradiction
	AlreadyResolved bool
	NewlyUnlocked   []models.Hypothesis
}

// ResolveContradiction marks a discovered contradiction as resolved by the
// player. Resolution is always explicit, never automatic, and one-way:
// resolving twice is a no-op. Resolving an undiscovered contradiction is an
// error.
func (e *Engine) ResolveContradiction(s *models.InvestigationState, contradictionID string) (ResolveResult, error) {
	if s.Completed() {
		return ResolveResult{}, errors.Wrap(ErrCaseClosed, "resolve contradiction", slog.String("contradictionID", contradictionID))
	}
	con, ok := e.c.ContradictionByID(contradictionID)
	if !ok {
		return ResolveResult{}, errors.Wrap(ErrContradictionNotFound, "resolve contradiction", slog.String("contradictionID", contradictionID))
	}
	cs, ok := s.Contradictions[contradictionID]
	if !ok {
		return ResolveResult{}, errors.Wrap(ErrContradictionNotDiscovered, "resolve contradiction", slog.String("contradictionID", contradictionID))
	}
	if cs.Resolved {
		return ResolveResult{Contradiction: con, AlreadyResolved: true}, nil
	}

	cs.Resolved = true
	return ResolveResult{
		Contradiction: con,
		NewlyUnlocked: e.sweepUnlocks(s),
	}, nil
}

// VerdictResult reports a submitted accusation: whether it named the correct
// hypothesis, and the score report for the attempt.
type VerdictResult struct {
	Hypothesis models.Hypothesis
	Correct    bool
	Score      models.Score
}

// SubmitVerdict closes the investigation by accusing via a hypothesis. The
// hypothesis must exist and be unlocked. After a verdict the state only
// accepts Reset; repeated attempts in fresh state are allowed.
func (e *Engine) SubmitVerdict(s *models.InvestigationState, hypothesisID string) (VerdictResult, error) {
	if s.Completed() {
		return VerdictResult{}, errors.Wrap(ErrCaseClosed, "submit verdict", slog.String("hypothesisID", hypothesisID))
	}
	h, ok := e.c.HypothesisByID(hypothesisID)
	if !ok {
		return VerdictResult{}, errors.Wrap(ErrHypothesisNotFound, "submit verdict", slog.String("hypothesisID", hypothesisID))
	}
	if !s.HypothesisUnlocked(h.ID) {
		return VerdictResult{}, errors.Wrap(ErrHypothesisLocked, "submit verdict", slog.String("hypothesisID", hypothesisID))
	}

	score := ScoreState(e.c, s)
	s.Verdict = &models.Verdict{
		HypothesisID: h.ID,
		Correct:      h.Correct,
		Score:        score,
		SubmittedAt:  e.now(),
	}
	return VerdictResult{Hypothesis: h, Correct: h.Correct, Score: score}, nil
}
