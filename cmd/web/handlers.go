package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/narrator"
)

var errUnknownCase = errors.NewSentinel("unknown case")

// listCases returns the case roster with the player's progress flags.
func (app *application) listCases(w http.ResponseWriter, r *http.Request) {
	started, err := app.investigations.List(r.Context(), app.playerID(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	progress := make(map[string]bool, len(started))
	for _, sc := range started {
		progress[sc.CaseID] = sc.Completed
	}

	resp := rosterResponse{Cases: make([]caseSummary, 0, app.catalog.Len())}
	for _, c := range app.catalog.All() {
		completed, isStarted := progress[c.ID]
		resp.Cases = append(resp.Cases, caseSummary{
			ID:        c.ID,
			Title:     c.Title,
			Synopsis:  c.Synopsis,
			Budget:    c.Budget,
			Started:   isStarted,
			Completed: completed,
		})
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

// showCase returns the player's view of one case. Browsing a case the player
// has not started shows the initial board without saving anything.
func (app *application) showCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	eng, ok := app.engines[caseID]
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, errUnknownCase)
		return
	}

	state, started, err := app.investigation(r.Context(), eng, app.playerID(r), caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, investigationViewOf(eng.Case(), state, started))
}

type collectRequest struct {
	EvidenceID string `json:"evidenceId"`
}

type collectResponse struct {
	Evidence          evidenceView        `json:"evidence"`
	AlreadyCollected  bool                `json:"alreadyCollected,omitempty"`
	PointsSpent       int                 `json:"pointsSpent"`
	PointsRemaining   int                 `json:"pointsRemaining"`
	RevealedSecrets   []secretReveal      `json:"revealedSecrets,omitempty"`
	NewContradictions []contradictionView `json:"newContradictions,omitempty"`
	NewlyUnlocked     []hypothesisView    `json:"newlyUnlocked,omitempty"`
}

func (app *application) collectEvidence(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	eng, ok := app.engines[caseID]
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, errUnknownCase)
		return
	}

	var req collectRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	playerID := app.playerID(r)
	release, err := app.locks.Acquire(r.Context(), playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer release()

	state, _, err := app.investigation(r.Context(), eng, playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	result, err := eng.CollectEvidence(state, req.EvidenceID)
	if err != nil {
		app.engineError(w, r, err)
		return
	}

	if err = app.investigations.Put(r.Context(), playerID, state); err != nil {
		app.serverError(w, r, err)
		return
	}

	resp := collectResponse{
		Evidence: evidenceView{
			ID:          result.Evidence.ID,
			Name:        result.Evidence.Name,
			Description: result.Evidence.Description,
			Cost:        result.Evidence.Cost,
			Collected:   true,
		},
		AlreadyCollected: result.AlreadyCollected,
		PointsSpent:      result.PointsSpent,
		PointsRemaining:  result.PointsRemaining,
		RevealedSecrets:  secretReveals(result.RevealedSecrets),
		NewlyUnlocked:    hypothesisViews(result.NewlyUnlocked),
	}
	for _, con := range result.NewContradictions {
		resp.NewContradictions = append(resp.NewContradictions, contradictionViewOf(con, false))
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

type statementRequest struct {
	Question string `json:"question"`
}

type statementResponse struct {
	Answer          string           `json:"answer"`
	Trust           int              `json:"trust"`
	SpellDetected   bool             `json:"spellDetected,omitempty"`
	RevealedSecrets []secretReveal   `json:"revealedSecrets,omitempty"`
	NewlyUnlocked   []hypothesisView `json:"newlyUnlocked,omitempty"`
}

// recordStatement runs one interview turn. A Legilimency cast resolves
// through the spell mechanics; anything else is classified for tone and
// moves witness trust. Either way the witness answers in character and the
// exchange lands in the interview history.
func (app *application) recordStatement(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	witnessID := r.PathValue("witnessID")
	eng, ok := app.engines[caseID]
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, errUnknownCase)
		return
	}
	witness, ok := eng.Case().WitnessByID(witnessID)
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, errors.New("unknown witness", slog.String("witnessID", witnessID)))
		return
	}

	var req statementRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		app.errorJSON(w, r, http.StatusBadRequest, errors.New("question must not be empty"))
		return
	}

	playerID := app.playerID(r)
	release, err := app.locks.Acquire(r.Context(), playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer release()

	state, _, err := app.investigation(r.Context(), eng, playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	spell, err := eng.CastLegilimens(state, witnessID, req.Question)
	if err != nil {
		app.engineError(w, r, err)
		return
	}

	scene := narrator.Scene{
		CaseTitle:   eng.Case().Title,
		WitnessName: witness.Name,
		Question:    req.Question,
	}
	var resp statementResponse

	if spell.Cast {
		scene.SpellDetected = spell.Detected
		if spell.Detected {
			scene.TrustShift = spell.TrustDelta
		}
		if spell.RevealedSecret != nil {
			scene.RevealedSecrets = []string{spell.RevealedSecret.Text}
			resp.RevealedSecrets = []secretReveal{{WitnessID: witnessID, Text: spell.RevealedSecret.Text}}
		}
		resp.Trust = spell.NewTrust
		resp.SpellDetected = spell.Detected
		resp.NewlyUnlocked = hypothesisViews(spell.NewlyUnlocked)
	} else {
		delta, classifyErr := app.classifier.Classify(r.Context(), req.Question)
		if classifyErr != nil {
			app.logger.LogAttrs(r.Context(), slog.LevelWarn, "tone classification failed, treating as neutral",
				errors.SlogError(classifyErr))
			delta = 0
		}
		trust, trustErr := eng.AdjustTrust(state, witnessID, delta)
		if trustErr != nil {
			app.engineError(w, r, trustErr)
			return
		}
		scene.TrustShift = delta
		for _, rs := range trust.RevealedSecrets {
			scene.RevealedSecrets = append(scene.RevealedSecrets, rs.Secret.Text)
		}
		resp.Trust = trust.NewTrust
		resp.RevealedSecrets = secretReveals(trust.RevealedSecrets)
		resp.NewlyUnlocked = hypothesisViews(trust.NewlyUnlocked)
	}

	answer, err := app.narrator.Answer(r.Context(), scene)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "narration failed, using offline fallback",
			errors.SlogError(err))
		if answer, err = (narrator.Fallback{}).Answer(r.Context(), scene); err != nil {
			app.serverError(w, r, err)
			return
		}
	}
	resp.Answer = answer

	if err = eng.RecordExchange(state, witnessID, req.Question, answer); err != nil {
		app.serverError(w, r, err)
		return
	}
	if err = app.investigations.Put(r.Context(), playerID, state); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

type resolveResponse struct {
	Contradiction   contradictionView `json:"contradiction"`
	AlreadyResolved bool              `json:"alreadyResolved,omitempty"`
	NewlyUnlocked   []hypothesisView  `json:"newlyUnlocked,omitempty"`
}

func (app *application) resolveContradiction(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	contradictionID := r.PathValue("contradictionID")
	eng, ok := app.engines[caseID]
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, errUnknownCase)
		return
	}

	playerID := app.playerID(r)
	release, err := app.locks.Acquire(r.Context(), playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer release()

	state, _, err := app.investigation(r.Context(), eng, playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	result, err := eng.ResolveContradiction(state, contradictionID)
	if err != nil {
		app.engineError(w, r, err)
		return
	}

	if err = app.investigations.Put(r.Context(), playerID, state); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, resolveResponse{
		Contradiction:   contradictionViewOf(result.Contradiction, true),
		AlreadyResolved: result.AlreadyResolved,
		NewlyUnlocked:   hypothesisViews(result.NewlyUnlocked),
	})
}

type verdictRequest struct {
	HypothesisID string `json:"hypothesisId"`
}

func (app *application) submitVerdict(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	eng, ok := app.engines[caseID]
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, errUnknownCase)
		return
	}

	var req verdictRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	playerID := app.playerID(r)
	release, err := app.locks.Acquire(r.Context(), playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer release()

	state, _, err := app.investigation(r.Context(), eng, playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	result, err := eng.SubmitVerdict(state, req.HypothesisID)
	if err != nil {
		app.engineError(w, r, err)
		return
	}

	if err = app.investigations.Put(r.Context(), playerID, state); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, verdictView{
		HypothesisID: result.Hypothesis.ID,
		Correct:      result.Correct,
		Score:        result.Score,
		SubmittedAt:  state.Verdict.SubmittedAt,
	})
}

// resetInvestigation throws away all progress and restarts the case with a
// fresh budget. This is the only way forward after a verdict.
func (app *application) resetInvestigation(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	eng, ok := app.engines[caseID]
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, errUnknownCase)
		return
	}

	playerID := app.playerID(r)
	release, err := app.locks.Acquire(r.Context(), playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer release()

	state, _, err := app.investigation(r.Context(), eng, playerID, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	eng.Reset(state)
	if err = app.investigations.Put(r.Context(), playerID, state); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, investigationViewOf(eng.Case(), state, true))
}
