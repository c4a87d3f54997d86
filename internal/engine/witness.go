package engine

import (
	"log/slog"

	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/models"
)

// RevealedSecret pairs a newly revealed secret with its owning witness so the
// caller can route the text to narration.
type RevealedSecret struct {
	WitnessID string
	Secret    models.Secret
}

// TrustResult is the outcome fact set of a tone-driven trust adjustment.
type TrustResult struct {
	WitnessID       string
	Delta           int
	NewTrust        int
	RevealedSecrets []RevealedSecret
	NewlyUnlocked   []models.Hypothesis
}

// AdjustTrust applies a signed tone delta to the witness, clamped into
// [0,100], then sweeps that witness's secret triggers and the unlock board.
// The delta comes from an external tone classification; the engine never
// inspects dialogue text here.
func (e *Engine) AdjustTrust(s *models.InvestigationState, witnessID string, delta int) (TrustResult, error) {
	if s.Completed() {
		return TrustResult{}, errors.Wrap(ErrCaseClosed, "adjust trust", slog.String("witnessID", witnessID))
	}
	witness, ok := e.c.WitnessByID(witnessID)
	if !ok {
		return TrustResult{}, errors.Wrap(ErrWitnessNotFound, "adjust trust", slog.String("witnessID", witnessID))
	}
	ws, ok := s.Witness(witnessID)
	if !ok {
		return TrustResult{}, errors.Wrap(ErrWitnessNotFound, "adjust trust", slog.String("witnessID", witnessID))
	}

	newTrust := ws.AdjustTrust(delta)
	revealed := e.sweepWitnessSecrets(s, witness)

	return TrustResult{
		WitnessID:       witnessID,
		Delta:           delta,
		NewTrust:        newTrust,
		RevealedSecrets: revealed,
		NewlyUnlocked:   e.sweepUnlocks(s),
	}, nil
}

// RecordExchange appends one interview turn to the witness history. The
// engine stores the text for scoring context only and never interprets it.
func (e *Engine) RecordExchange(s *models.InvestigationState, witnessID, question, answer string) error {
	ws, ok := s.Witness(witnessID)
	if !ok {
		return errors.Wrap(ErrWitnessNotFound, "record exchange", slog.String("witnessID", witnessID))
	}
	ws.Record(question, answer, e.now())
	return nil
}

// sweepWitnessSecrets evaluates every unrevealed, enabled secret trigger of
// one witness against (collected evidence, current trust) and reveals the
// ones that fire. Reveals are one-way; re-evaluating a revealed secret is a
// no-op. Secrets whose triggers failed to parse at load stay silent forever.
func (e *Engine) sweepWitnessSecrets(s *models.InvestigationState, witness models.Witness) []RevealedSecret {
	ws, ok := s.Witness(witness.ID)
	if !ok {
		return nil
	}

	var revealed []RevealedSecret
	for _, secret := range witness.Secrets {
		if ws.SecretRevealed(secret.ID) {
			continue
		}
		cond := e.triggers[secret.ID]
		if cond == nil {
			continue
		}
		if cond.Eval(s.Evidence, ws.Trust) {
			ws.RevealSecret(secret.ID)
			revealed = append(revealed, RevealedSecret{WitnessID: witness.ID, Secret: secret})
		}
	}
	return revealed
}

// sweepAllSecrets runs the secret sweep across every witness in
// case-definition order. Used after evidence mutations, which can satisfy
// triggers on any witness.
func (e *Engine) sweepAllSecrets(s *models.InvestigationState) []RevealedSecret {
	var revealed []RevealedSecret
	for _, witness := range e.c.Witnesses {
		revealed = append(revealed, e.sweepWitnessSecrets(s, witness)...)
	}
	return revealed
}
