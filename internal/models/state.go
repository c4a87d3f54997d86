package models

import "time"

// Trust bounds for witnesses. Every trust mutation clamps into this range.
const (
	TrustMin = 0
	TrustMax = 100
)

// Metric names usable in threshold_met requirements and trigger conditions.
const (
	MetricPointsSpent              = "points_spent"
	MetricEvidenceCollected        = "evidence_collected"
	MetricContradictionsDiscovered = "contradictions_discovered"
	MetricContradictionsResolved   = "contradictions_resolved"
	MetricSecretsRevealed          = "secrets_revealed"
	MetricHypothesesUnlocked       = "hypotheses_unlocked"
)

// KnownMetrics lists every metric name the state can report, in a stable order.
func KnownMetrics() []string {
	return []string{
		MetricPointsSpent,
		MetricEvidenceCollected,
		MetricContradictionsDiscovered,
		MetricContradictionsResolved,
		MetricSecretsRevealed,
		MetricHypothesesUnlocked,
	}
}

// InvestigationState is one player's complete progress through a case. It is
// a plain serializable value; all invariant-preserving mutation goes through
// the engine. Collected evidence, discovered contradictions, unlocked
// hypotheses and revealed secrets only ever grow.
type InvestigationState struct {
	CaseID         string                         `json:"caseId"`
	StartedAt      time.Time                      `json:"startedAt"`
	Budget         int                            `json:"budget"`
	PointsSpent    int                            `json:"pointsSpent"`
	Evidence       map[string]bool                `json:"evidence"`
	Contradictions map[string]*ContradictionState `json:"contradictions"`
	Hypotheses     map[string]bool                `json:"hypotheses"`
	Witnesses      map[string]*WitnessState       `json:"witnesses"`
	Verdict        *Verdict                       `json:"verdict,omitempty"`
}

// ContradictionState tracks one discovered contradiction.
type ContradictionState struct {
	DiscoveredAt time.Time `json:"discoveredAt"`
	Resolved     bool      `json:"resolved"`
}

// WitnessState tracks the player's relationship with one witness.
type WitnessState struct {
	WitnessID string          `json:"witnessId"`
	Trust     int             `json:"trust"`
	Secrets   map[string]bool `json:"secrets"`
	History   []Exchange      `json:"history,omitempty"`
}

// Exchange is one question/answer turn of a witness interview.
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer,omitempty"`
	Asked    time.Time `json:"asked"`
}

// Verdict records the final accusation once submitted. A non-nil Verdict
// means the investigation is over.
type Verdict struct {
	HypothesisID string    `json:"hypothesisId"`
	Correct      bool      `json:"correct"`
	Score        Score     `json:"score"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Score is the 0-100 component breakdown of a finished investigation.
type Score struct {
	Efficiency           int `json:"efficiency"`
	Thoroughness         int `json:"thoroughness"`
	ContradictionMastery int `json:"contradictionMastery"`
	TierDiscovery        int `json:"tierDiscovery"`
}

// NewInvestigationState builds the starting state for a case: full budget,
// no evidence, tier-1 hypotheses already on the board, and every witness at
// their base trust with no secrets revealed.
func NewInvestigationState(c *Case) *InvestigationState {
	s := &InvestigationState{
		CaseID:         c.ID,
		StartedAt:      time.Now().UTC(),
		Budget:         c.Budget,
		Evidence:       make(map[string]bool),
		Contradictions: make(map[string]*ContradictionState),
		Hypotheses:     make(map[string]bool),
		Witnesses:      make(map[string]*WitnessState, len(c.Witnesses)),
	}
	for _, h := range c.Hypotheses {
		if h.Tier == TierOne {
			s.Hypotheses[h.ID] = true
		}
	}
	for _, w := range c.Witnesses {
		s.Witnesses[w.ID] = &WitnessState{
			WitnessID: w.ID,
			Trust:     clampTrust(w.BaseTrust),
			Secrets:   make(map[string]bool),
		}
	}
	return s
}

// RemainingPoints returns the unspent part of the investigation budget.
func (s *InvestigationState) RemainingPoints() int {
	return s.Budget - s.PointsSpent
}

// Completed reports whether a verdict has been submitted.
func (s *InvestigationState) Completed() bool {
	return s.Verdict != nil
}

// HasEvidence reports whether the evidence item has been collected.
func (s *InvestigationState) HasEvidence(id string) bool {
	return s.Evidence[id]
}

// AddEvidence records a collected evidence item. It returns false if the item
// was already in the set, making repeat collection a no-op.
func (s *InvestigationState) AddEvidence(id string) bool {
	if s.Evidence[id] {
		return false
	}
	s.Evidence[id] = true
	return true
}

// DiscoverContradiction stamps a contradiction as discovered at the given
// time. Returns false if it was already discovered; the original timestamp is
// never overwritten.
func (s *InvestigationState) DiscoverContradiction(id string, at time.Time) bool {
	if _, ok := s.Contradictions[id]; ok {
		return false
	}
	s.Contradictions[id] = &ContradictionState{DiscoveredAt: at}
	return true
}

// ContradictionDiscovered reports whether the contradiction has been found.
func (s *InvestigationState) ContradictionDiscovered(id string) bool {
	_, ok := s.Contradictions[id]
	return ok
}

// ResolvedContradictions counts discovered contradictions marked resolved.
func (s *InvestigationState) ResolvedContradictions() int {
	n := 0
	for _, c := range s.Contradictions {
		if c.Resolved {
			n++
		}
	}
	return n
}

// HypothesisUnlocked reports whether the hypothesis is on the board.
func (s *InvestigationState) HypothesisUnlocked(id string) bool {
	return s.Hypotheses[id]
}

// UnlockHypothesis adds a hypothesis to the board. Returns false if it was
// already unlocked. Hypotheses never re-lock.
func (s *InvestigationState) UnlockHypothesis(id string) bool {
	if s.Hypotheses[id] {
		return false
	}
	s.Hypotheses[id] = true
	return true
}

// Witness returns the state for the given witness id.
func (s *InvestigationState) Witness(id string) (*WitnessState, bool) {
	w, ok := s.Witnesses[id]
	return w, ok
}

// SecretsRevealed counts revealed secrets across all witnesses.
func (s *InvestigationState) SecretsRevealed() int {
	n := 0
	for _, w := range s.Witnesses {
		n += len(w.Secrets)
	}
	return n
}

// Metric reports the current value of a named progress metric. The second
// return is false for names outside [KnownMetrics].
func (s *InvestigationState) Metric(name string) (int, bool) {
	switch name {
	case MetricPointsSpent:
		return s.PointsSpent, true
	case MetricEvidenceCollected:
		return len(s.Evidence), true
	case MetricContradictionsDiscovered:
		return len(s.Contradictions), true
	case MetricContradictionsResolved:
		return s.ResolvedContradictions(), true
	case MetricSecretsRevealed:
		return s.SecretsRevealed(), true
	case MetricHypothesesUnlocked:
		return len(s.Hypotheses), true
	}
	return 0, false
}

// AdjustTrust applies delta to the witness's trust, clamping the result into
// [TrustMin, TrustMax], and returns the new value.
func (w *WitnessState) AdjustTrust(delta int) int {
	w.Trust = clampTrust(w.Trust + delta)
	return w.Trust
}

// SecretRevealed reports whether the given secret has been revealed.
func (w *WitnessState) SecretRevealed(id string) bool {
	return w.Secrets[id]
}

// RevealSecret marks a secret as revealed. Returns false if it already was;
// revealed secrets never hide again.
func (w *WitnessState) RevealSecret(id string) bool {
	if w.Secrets[id] {
		return false
	}
	w.Secrets[id] = true
	return true
}

// Record appends one interview exchange to the witness history.
func (w *WitnessState) Record(question, answer string, at time.Time) {
	w.History = append(w.History, Exchange{Question: question, Answer: answer, Asked: at})
}

func clampTrust(v int) int {
	if v < TrustMin {
		return TrustMin
	}
	if v > TrustMax {
		return TrustMax
	}
	return v
}
