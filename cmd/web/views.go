package main

import (
	"time"

	"github.com/Roderick111/auror/internal/engine"
	"github.com/Roderick111/auror/internal/models"
)

// Player-facing projections of cases and investigation state. They are
// deliberately spoiler-free: contradictions appear only once discovered,
// tier-2 hypotheses only once unlocked, secret texts only once revealed, and
// whether a hypothesis is correct never leaves the server before a verdict.

type caseSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Synopsis  string `json:"synopsis,omitempty"`
	Budget    int    `json:"budget"`
	Started   bool   `json:"started"`
	Completed bool   `json:"completed"`
}

type rosterResponse struct {
	Cases []caseSummary `json:"cases"`
}

type evidenceView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cost        int    `json:"cost"`
	Collected   bool   `json:"collected"`
}

type witnessView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Trust   int      `json:"trust"`
	Secrets []string `json:"secrets,omitempty"`
}

type contradictionView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Resolved    bool   `json:"resolved"`
	Resolution  string `json:"resolution,omitempty"`
}

type hypothesisView struct {
	ID        string      `json:"id"`
	Tier      models.Tier `json:"tier"`
	Statement string      `json:"statement"`
}

type verdictView struct {
	HypothesisID string       `json:"hypothesisId"`
	Correct      bool         `json:"correct"`
	Score        models.Score `json:"score"`
	SubmittedAt  time.Time    `json:"submittedAt"`
}

type investigationView struct {
	Case            caseSummary         `json:"case"`
	PointsRemaining int                 `json:"pointsRemaining"`
	Evidence        []evidenceView      `json:"evidence"`
	Witnesses       []witnessView       `json:"witnesses"`
	Contradictions  []contradictionView `json:"contradictions"`
	Hypotheses      []hypothesisView    `json:"hypotheses"`
	Verdict         *verdictView        `json:"verdict,omitempty"`
}

type secretReveal struct {
	WitnessID string `json:"witnessId"`
	Text      string `json:"text"`
}

// investigationViewOf projects the case definition through the player's
// state. Everything lists in case-definition order so the client renders
// stably.
func investigationViewOf(c *models.Case, s *models.InvestigationState, started bool) investigationView {
	view := investigationView{
		Case: caseSummary{
			ID:        c.ID,
			Title:     c.Title,
			Synopsis:  c.Synopsis,
			Budget:    c.Budget,
			Started:   started,
			Completed: s.Completed(),
		},
		PointsRemaining: s.RemainingPoints(),
		Evidence:        make([]evidenceView, 0, len(c.Evidence)),
		Witnesses:       make([]witnessView, 0, len(c.Witnesses)),
		Contradictions:  []contradictionView{},
		Hypotheses:      []hypothesisView{},
	}

	for _, ev := range c.Evidence {
		view.Evidence = append(view.Evidence, evidenceView{
			ID:          ev.ID,
			Name:        ev.Name,
			Description: ev.Description,
			Cost:        ev.Cost,
			Collected:   s.HasEvidence(ev.ID),
		})
	}

	for _, w := range c.Witnesses {
		wv := witnessView{ID: w.ID, Name: w.Name, Trust: w.BaseTrust}
		if ws, ok := s.Witness(w.ID); ok {
			wv.Trust = ws.Trust
			for _, secret := range w.Secrets {
				if ws.SecretRevealed(secret.ID) {
					wv.Secrets = append(wv.Secrets, secret.Text)
				}
			}
		}
		view.Witnesses = append(view.Witnesses, wv)
	}

	for _, con := range c.Contradictions {
		cs, ok := s.Contradictions[con.ID]
		if !ok {
			continue
		}
		view.Contradictions = append(view.Contradictions, contradictionViewOf(con, cs.Resolved))
	}

	for _, h := range c.Hypotheses {
		if s.HypothesisUnlocked(h.ID) {
			view.Hypotheses = append(view.Hypotheses, hypothesisViewOf(h))
		}
	}

	if s.Verdict != nil {
		v := verdictViewOf(*s.Verdict)
		view.Verdict = &v
	}
	return view
}

// contradictionViewOf hides the resolution text until the player has resolved
// the contradiction, since the text explains the answer.
func contradictionViewOf(con models.Contradiction, resolved bool) contradictionView {
	view := contradictionView{
		ID:          con.ID,
		Description: con.Description,
		Resolved:    resolved,
	}
	if resolved {
		view.Resolution = con.Resolution
	}
	return view
}

func hypothesisViewOf(h models.Hypothesis) hypothesisView {
	return hypothesisView{ID: h.ID, Tier: h.Tier, Statement: h.Statement}
}

func hypothesisViews(hs []models.Hypothesis) []hypothesisView {
	views := make([]hypothesisView, 0, len(hs))
	for _, h := range hs {
		views = append(views, hypothesisViewOf(h))
	}
	return views
}

func secretReveals(revealed []engine.RevealedSecret) []secretReveal {
	reveals := make([]secretReveal, 0, len(revealed))
	for _, rs := range revealed {
		reveals = append(reveals, secretReveal{WitnessID: rs.WitnessID, Text: rs.Secret.Text})
	}
	return reveals
}

func verdictViewOf(v models.Verdict) verdictView {
	return verdictView{
		HypothesisID: v.HypothesisID,
		Correct:      v.Correct,
		Score:        v.Score,
		SubmittedAt:  v.SubmittedAt,
	}
}
