package engine

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/models"
)

// SpellIncantation is the canonical cast phrase matched tolerantly against
// player input.
const SpellIncantation = "legilimens"

// Fixed spell mechanics. These are engine constants, not case-tunable.
const (
	detectionRate         = 0.8
	focusedEvidenceRate   = 0.6
	unfocusedEvidenceRate = 0.3
	castSimilarity        = 0.8
)

// trustPenalties is the discrete uniform penalty pool applied when the
// witness detects the intrusion.
var trustPenalties = []int{5, 10, 15, 20}

// Outcome is one of the four mutually exclusive spell results.
type Outcome string

const (
	OutcomeDetectedWithEvidence   Outcome = "detected_with_evidence"
	OutcomeDetectedNoEvidence     Outcome = "detected_no_evidence"
	OutcomeUndetectedWithEvidence Outcome = "undetected_with_evidence"
	OutcomeUndetectedNoEvidence   Outcome = "undetected_no_evidence"
)

// SpellOutcome is the fully determined fact set of one Legilimency
// resolution. Cast=false means the input was not a cast attempt at all and
// nothing else is populated.
type SpellOutcome struct {
	Cast          bool
	Outcome       Outcome
	Focused       bool
	Target        string
	Detected      bool
	EvidenceFound bool
	TrustDelta    int
	SecretID      string
}

// SpellResult is SpellOutcome as applied to a state: the clamped trust it
// left behind, the secret it surfaced and any hypotheses the reveal unlocked.
type SpellResult struct {
	SpellOutcome
	WitnessID      string
	NewTrust       int
	RevealedSecret *models.Secret
	NewlyUnlocked  []models.Hypothesis
}

// castKeywords gates the tolerant matching: an input containing none of
// these is ordinary dialogue and must short-circuit before any similarity
// work.
var castKeywords = []string{"legil", "mind", "thought", "memor", "peek", "search"}

var castParaphrases = []*regexp.Regexp{
	regexp.MustCompile(`read\s+(?:his|her|their|your)\s+mind`),
	regexp.MustCompile(`peek\s+(?:at\s+|into\s+)?(?:(?:his|her|their|your)\s+)?thoughts`),
	regexp.MustCompile(`search\s+(?:(?:his|her|their|your)\s+)?memories`),
}

// focusPatterns extract an explicit spell target. Ordered most to least
// specific; the bare "about X" form must come last.
var focusPatterns = []*regexp.Regexp{
	regexp.MustCompile(`to\s+find\s+out\s+about\s+(.+)`),
	regexp.MustCompile(`looking\s+for\s+(.+)`),
	regexp.MustCompile(`to\s+(?:learn|discover|see)\s+(.+)`),
	regexp.MustCompile(`about\s+(.+)`),
}

// DetectCast reports whether the input is a Legilimency cast attempt. The
// keyword gate runs first so the similarity pass never touches the great
// majority of ordinary dialogue.
func DetectCast(input string) bool {
	lowered := strings.ToLower(input)

	gate := false
	for _, keyword := range castKeywords {
		if strings.Contains(lowered, keyword) {
			gate = true
			break
		}
	}
	if !gate {
		return false
	}

	for _, word := range strings.Fields(lowered) {
		word = strings.Trim(word, `!.,?;:'"()`)
		if similarity(word, SpellIncantation) >= castSimilarity {
			return true
		}
	}
	for _, p := range castParaphrases {
		if p.MatchString(lowered) {
			return true
		}
	}
	return false
}

// ExtractFocus pulls an explicit target phrase out of the input. A focused
// cast doubles the evidence-success rate, so the patterns stay deliberately
// strict.
func ExtractFocus(input string) (string, bool) {
	lowered := strings.ToLower(input)
	for _, p := range focusPatterns {
		m := p.FindStringSubmatch(lowered)
		if m == nil {
			continue
		}
		target := strings.Trim(strings.TrimSpace(m[1]), `!.,?;:'"`)
		if target != "" {
			return target, true
		}
	}
	return "", false
}

// ResolveLegilimens computes one spell resolution without touching any
// state. The revealed predicate tells it which of the witness's secrets are
// already out so it can pick the first unrevealed one, in case-definition
// order, when the probe finds something. Rolls draw in a fixed order:
// detection, evidence, then penalty only when detected.
func ResolveLegilimens(input string, witness models.Witness, revealed func(secretID string) bool, rng RNG) SpellOutcome {
	if !DetectCast(input) {
		return SpellOutcome{}
	}

	target, focused := ExtractFocus(input)

	detected := rng.Float64() < detectionRate

	successRate := unfocusedEvidenceRate
	if focused {
		successRate = focusedEvidenceRate
	}
	evidenceFound := rng.Float64() < successRate

	outcome := SpellOutcome{
		Cast:          true,
		Outcome:       classifyOutcome(detected, evidenceFound),
		Focused:       focused,
		Target:        target,
		Detected:      detected,
		EvidenceFound: evidenceFound,
	}

	if detected {
		outcome.TrustDelta = -trustPenalties[rng.IntN(len(trustPenalties))]
	}
	if evidenceFound {
		for _, secret := range witness.Secrets {
			if !revealed(secret.ID) {
				outcome.SecretID = secret.ID
				break
			}
		}
	}
	return outcome
}

func classifyOutcome(detected, evidenceFound bool) Outcome {
	switch {
	case detected && evidenceFound:
		return OutcomeDetectedWithEvidence
	case detected:
		return OutcomeDetectedNoEvidence
	case evidenceFound:
		return OutcomeUndetectedWithEvidence
	default:
		return OutcomeUndetectedNoEvidence
	}
}

// CastLegilimens resolves a possible cast attempt against a witness and
// applies the outcome: the detection penalty lands as a clamped trust delta,
// and a found secret is revealed directly, bypassing its trigger condition.
// At most one secret comes out per cast. A non-cast input returns
// Cast=false with the state untouched so the caller can route the utterance
// to normal dialogue.
func (e *Engine) CastLegilimens(s *models.InvestigationState, witnessID, input string) (SpellResult, error) {
	if s.Completed() {
		return SpellResult{}, errors.Wrap(ErrCaseClosed, "cast legilimens", slog.String("witnessID", witnessID))
	}
	witness, ok := e.c.WitnessByID(witnessID)
	if !ok {
		return SpellResult{}, errors.Wrap(ErrWitnessNotFound, "cast legilimens", slog.String("witnessID", witnessID))
	}
	ws, ok := s.Witness(witnessID)
	if !ok {
		return SpellResult{}, errors.Wrap(ErrWitnessNotFound, "cast legilimens", slog.String("witnessID", witnessID))
	}

	outcome := ResolveLegilimens(input, witness, ws.SecretRevealed, e.rng)
	if !outcome.Cast {
		return SpellResult{WitnessID: witnessID, NewTrust: ws.Trust}, nil
	}

	if outcome.TrustDelta != 0 {
		ws.AdjustTrust(outcome.TrustDelta)
	}

	result := SpellResult{
		SpellOutcome: outcome,
		WitnessID:    witnessID,
		NewTrust:     ws.Trust,
	}
	if outcome.SecretID != "" {
		ws.RevealSecret(outcome.SecretID)
		for _, secret := range witness.Secrets {
			if secret.ID == outcome.SecretID {
				revealedSecret := secret
				result.RevealedSecret = &revealedSecret
				break
			}
		}
	}
	result.NewlyUnlocked = e.sweepUnlocks(s)
	return result, nil
}

// similarity is a normalized Levenshtein ratio in [0,1]; 1 means equal.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein is the classic two-row edit distance over runes.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
