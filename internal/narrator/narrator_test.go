package narrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_Answer(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		scene Scene
		want  string
	}{
		{
			name: "neutral exchange",
			scene: Scene{
				WitnessName: "Madam Pince",
				Question:    "Where were you at midnight?",
			},
			want: "Madam Pince considers the question.",
		},
		{
			name: "warming exchange",
			scene: Scene{
				WitnessName: "Madam Pince",
				TrustShift:  3,
			},
			want: "Madam Pince softens a little before answering.",
		},
		{
			name: "cooling exchange",
			scene: Scene{
				WitnessName: "Madam Pince",
				TrustShift:  -4,
			},
			want: "Madam Pince stiffens and looks away.",
		},
		{
			name: "secret revealed verbatim",
			scene: Scene{
				WitnessName:     "Madam Pince",
				TrustShift:      5,
				RevealedSecrets: []string{"I saw a student in the stacks after closing."},
			},
			want: `Madam Pince softens a little before answering. "I saw a student in the stacks after closing."`,
		},
		{
			name: "detected spell overrides the mood line",
			scene: Scene{
				WitnessName:   "Madam Pince",
				TrustShift:    -15,
				SpellDetected: true,
			},
			want: `Madam Pince narrows their eyes. "Keep out of my head, Auror."`,
		},
		{
			name: "detected spell that still surfaced a memory",
			scene: Scene{
				WitnessName:     "Office Boy",
				SpellDetected:   true,
				RevealedSecrets: []string{"The ledger page for Tuesday is missing."},
			},
			want: `Office Boy narrows their eyes. "Keep out of my head, Auror." "The ledger page for Tuesday is missing."`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Fallback{}.Answer(context.Background(), tt.scene)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSceneDirectives(t *testing.T) {
	t.Parallel()

	directives := sceneDirectives(Scene{
		CaseTitle:       "Theft from the Restricted Section",
		WitnessName:     "Madam Pince",
		Question:        "Who had keys to the cage?",
		TrustShift:      4,
		RevealedSecrets: []string{"The spare key went missing last week."},
	})
	assert.Contains(t, directives, `"Who had keys to the cage?"`)
	assert.Contains(t, directives, "warmer toward the investigator")
	assert.Contains(t, directives, "The spare key went missing last week.")
	assert.NotContains(t, directives, "Do not reveal anything")

	quiet := sceneDirectives(Scene{WitnessName: "Madam Pince", Question: "Anything else?"})
	assert.Contains(t, quiet, "Do not reveal anything")

	probed := sceneDirectives(Scene{WitnessName: "Madam Pince", SpellDetected: true, TrustShift: -10})
	assert.Contains(t, probed, "probing your mind")
	assert.NotContains(t, probed, "colder and more defensive",
		"the intrusion line replaces the tone line")
}
