package engine_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roderick111/auror/internal/engine"
	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/models"
)

func TestDetectCast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "bare incantation", input: "Legilimens!", want: true},
		{name: "lowercase incantation", input: "legilimens", want: true},
		{name: "shouted incantation", input: "LEGILIMENS", want: true},
		{name: "close misspelling", input: "Legilimins!", want: true},
		{name: "incantation mid-sentence", input: "I cast legilimens on the guard", want: true},
		{name: "read-mind paraphrase", input: "I will read your mind now", want: true},
		{name: "peek-thoughts paraphrase", input: "Let me peek into your thoughts", want: true},
		{name: "search-memories paraphrase", input: "I'll search her memories", want: true},
		{name: "ordinary question", input: "Where were you on Thursday?", want: false},
		{name: "think is not thought", input: "What do you think?", want: false},
		{name: "keyword without intent", input: "Never mind, tell me about the ledger", want: false},
		{name: "memory talk is not a cast", input: "That memory charm was sloppy", want: false},
		{name: "reading own mind is not a cast", input: "You can read my mind", want: false},
		{name: "distant word", input: "legolas", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, engine.DetectCast(tt.input))
		})
	}
}

func TestExtractFocus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantTarget string
		wantOK     bool
	}{
		{name: "find out about", input: "Legilimens! I want to find out about the wand", wantTarget: "the wand", wantOK: true},
		{name: "to learn", input: "legilimens to learn the password", wantTarget: "the password", wantOK: true},
		{name: "to see with punctuation", input: "legilimens to see the letter?", wantTarget: "the letter", wantOK: true},
		{name: "looking for", input: "legilimens, looking for the ledger page", wantTarget: "the ledger page", wantOK: true},
		{name: "bare about", input: "legilimens about the stolen book.", wantTarget: "the stolen book", wantOK: true},
		{
			name:       "looking-for wins over bare about",
			input:      "legilimens looking for clues about the vault",
			wantTarget: "clues about the vault",
			wantOK:     true,
		},
		{name: "no target", input: "Legilimens!", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target, ok := engine.ExtractFocus(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestEngine_CastLegilimens_ForcedRolls(t *testing.T) {
	t.Parallel()

	t.Run("undetected without evidence leaves no trace", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{floats: []float64{0.92, 0.85}})
		s := e.NewState()

		got, err := e.CastLegilimens(s, "madam-pince", "Legilimens!")
		require.NoError(t, err)
		assert.True(t, got.Cast)
		assert.False(t, got.Focused)
		assert.Equal(t, engine.OutcomeUndetectedNoEvidence, got.Outcome)
		assert.Zero(t, got.TrustDelta)
		assert.Equal(t, 50, got.NewTrust)
		assert.Nil(t, got.RevealedSecret)

		pince, _ := s.Witness("madam-pince")
		assert.Equal(t, 50, pince.Trust)
		assert.Empty(t, pince.Secrets)
	})

	t.Run("detected with evidence costs trust and surfaces one secret", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{floats: []float64{0.5, 0.4}, ints: []int{2}})
		s := e.NewState()

		got, err := e.CastLegilimens(s, "madam-pince", "Legilimens! I want to find out about the wand")
		require.NoError(t, err)
		assert.Equal(t, engine.OutcomeDetectedWithEvidence, got.Outcome)
		assert.True(t, got.Focused)
		assert.Equal(t, "the wand", got.Target)
		assert.Equal(t, -15, got.TrustDelta)
		assert.Equal(t, 35, got.NewTrust)

		// The direct reveal bypasses the trigger and takes the first
		// unrevealed secret in definition order; exactly one comes out.
		require.NotNil(t, got.RevealedSecret)
		assert.Equal(t, "pince-ledger", got.RevealedSecret.ID)
		pince, _ := s.Witness("madam-pince")
		assert.Len(t, pince.Secrets, 1)

		require.Len(t, got.NewlyUnlocked, 1)
		assert.Equal(t, "smuggling-ring", got.NewlyUnlocked[0].ID)
	})

	t.Run("undetected with evidence is a free secret", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{floats: []float64{0.9, 0.1}})
		s := e.NewState()

		got, err := e.CastLegilimens(s, "madam-pince", "legilimens")
		require.NoError(t, err)
		assert.Equal(t, engine.OutcomeUndetectedWithEvidence, got.Outcome)
		assert.Zero(t, got.TrustDelta)
		assert.Equal(t, 50, got.NewTrust)
		require.NotNil(t, got.RevealedSecret)
		assert.Equal(t, "pince-ledger", got.RevealedSecret.ID)
	})

	t.Run("detected without evidence only hurts", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{floats: []float64{0.1, 0.95}, ints: []int{0}})
		s := e.NewState()

		got, err := e.CastLegilimens(s, "madam-pince", "legilimens")
		require.NoError(t, err)
		assert.Equal(t, engine.OutcomeDetectedNoEvidence, got.Outcome)
		assert.Equal(t, -5, got.TrustDelta)
		assert.Equal(t, 45, got.NewTrust)
		assert.Nil(t, got.RevealedSecret)
	})

	t.Run("penalty clamps at the trust floor", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{floats: []float64{0.5, 0.95}, ints: []int{3}})
		s := e.NewState()

		_, err := e.AdjustTrust(s, "madam-pince", -45)
		require.NoError(t, err)

		got, err := e.CastLegilimens(s, "madam-pince", "legilimens")
		require.NoError(t, err)
		assert.Equal(t, -20, got.TrustDelta)
		assert.Equal(t, models.TrustMin, got.NewTrust)
	})

	t.Run("probe runs dry when every secret is out", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{floats: []float64{0.9, 0.1, 0.9, 0.1}})
		s := e.NewState()

		first, err := e.CastLegilimens(s, "night-guard", "legilimens")
		require.NoError(t, err)
		require.NotNil(t, first.RevealedSecret)
		assert.Equal(t, "guard-bribe", first.RevealedSecret.ID)

		second, err := e.CastLegilimens(s, "night-guard", "legilimens")
		require.NoError(t, err)
		assert.Equal(t, engine.OutcomeUndetectedWithEvidence, second.Outcome)
		assert.Nil(t, second.RevealedSecret, "nothing left to surface")
	})

	t.Run("ordinary dialogue is not a cast and draws no rolls", func(t *testing.T) {
		t.Parallel()
		// The empty script panics on any draw, so passing means the
		// calculator never touched the RNG.
		e := newTestEngine(t, &scriptedRNG{})
		s := e.NewState()

		got, err := e.CastLegilimens(s, "madam-pince", "Where were you on Thursday?")
		require.NoError(t, err)
		assert.False(t, got.Cast)
		assert.Equal(t, 50, got.NewTrust)

		pince, _ := s.Witness("madam-pince")
		assert.Equal(t, 50, pince.Trust)
		assert.Empty(t, pince.Secrets)
	})

	t.Run("unknown witness", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{})
		s := e.NewState()

		_, err := e.CastLegilimens(s, "peeves", "legilimens")
		require.Error(t, err)
		assert.True(t, errors.Is(err, engine.ErrWitnessNotFound))
	})

	t.Run("closed case rejects casts", func(t *testing.T) {
		t.Parallel()
		e := newTestEngine(t, &scriptedRNG{})
		s := e.NewState()

		_, err := e.SubmitVerdict(s, "outsider-theft")
		require.NoError(t, err)

		_, err = e.CastLegilimens(s, "madam-pince", "legilimens")
		require.Error(t, err)
		assert.True(t, errors.Is(err, engine.ErrCaseClosed))
	})
}

// Over many casts with a uniform RNG the observed rates converge on the
// design constants: 0.8 detection, 0.6 evidence success when focused, 0.3
// when not.
func TestResolveLegilimens_Convergence(t *testing.T) {
	t.Parallel()

	const casts = 10_000
	witness := models.Witness{ID: "w"}
	noneRevealed := func(string) bool { return false }

	run := func(input string, wantEvidenceRate float64) {
		rng := rand.New(rand.NewPCG(42, 1))
		detected, evidenceFound := 0, 0
		outcomes := map[engine.Outcome]int{}

		for range casts {
			outcome := engine.ResolveLegilimens(input, witness, noneRevealed, rng)
			require.True(t, outcome.Cast)
			if outcome.Detected {
				detected++
			}
			if outcome.EvidenceFound {
				evidenceFound++
			}
			outcomes[outcome.Outcome]++
		}

		assert.InDelta(t, 0.8, float64(detected)/casts, 0.02)
		assert.InDelta(t, wantEvidenceRate, float64(evidenceFound)/casts, 0.02)

		total := 0
		for _, n := range outcomes {
			total += n
		}
		assert.Equal(t, casts, total, "the four outcomes partition every cast")
		assert.Len(t, outcomes, 4)
	}

	run("legilimens", 0.3)
	run("legilimens to find out about the vault", 0.6)
}
