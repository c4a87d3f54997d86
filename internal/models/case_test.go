package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Roderick111/auror/internal/models"
)

func TestUnlockRequirement_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    models.UnlockRequirement
		wantErr error
	}{
		{
			name:  "evidence leaf",
			input: "evidence: torn-sleeve",
			want: models.UnlockRequirement{
				Kind:       models.RequirementEvidence,
				EvidenceID: "torn-sleeve",
			},
		},
		{
			name:  "threshold leaf",
			input: "threshold: { metric: points_spent, value: 30 }",
			want: models.UnlockRequirement{
				Kind:      models.RequirementThreshold,
				Metric:    "points_spent",
				Threshold: 30,
			},
		},
		{
			name: "all_of with nested any_of",
			input: `all_of:
  - evidence: registry-ledger
  - any_of:
      - evidence: floo-records
      - threshold: { metric: secrets_revealed, value: 1 }`,
			want: models.UnlockRequirement{
				Kind: models.RequirementAllOf,
				Children: []models.UnlockRequirement{
					{Kind: models.RequirementEvidence, EvidenceID: "registry-ledger"},
					{
						Kind: models.RequirementAnyOf,
						Children: []models.UnlockRequirement{
							{Kind: models.RequirementEvidence, EvidenceID: "floo-records"},
							{Kind: models.RequirementThreshold, Metric: "secrets_revealed", Threshold: 1},
						},
					},
				},
			},
		},
		{
			name:    "two variants on one node",
			input:   "evidence: torn-sleeve\nthreshold: { metric: points_spent, value: 1 }",
			wantErr: models.ErrUnknownRequirement,
		},
		{
			name:    "unknown variant",
			input:   "wand: elder",
			wantErr: models.ErrUnknownRequirement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got models.UnlockRequirement
			err := yaml.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnlockList_Requirement(t *testing.T) {
	t.Parallel()

	evidence := func(id string) models.UnlockRequirement {
		return models.UnlockRequirement{Kind: models.RequirementEvidence, EvidenceID: id}
	}

	t.Run("empty list means permanently locked", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, models.UnlockList{}.Requirement())
	})

	t.Run("single tree passes through", func(t *testing.T) {
		t.Parallel()
		l := models.UnlockList{evidence("a")}
		req := l.Requirement()
		require.NotNil(t, req)
		assert.Equal(t, evidence("a"), *req)
	})

	t.Run("multiple trees wrap into any_of", func(t *testing.T) {
		t.Parallel()
		l := models.UnlockList{evidence("a"), evidence("b")}
		req := l.Requirement()
		require.NotNil(t, req)
		assert.Equal(t, models.RequirementAnyOf, req.Kind)
		assert.Equal(t, []models.UnlockRequirement(l), req.Children)
	})
}

func TestCase_Lookups(t *testing.T) {
	t.Parallel()

	c := &models.Case{
		ID: "missing-portrait",
		Evidence: []models.Evidence{
			{ID: "torn-sleeve", Name: "Torn sleeve", Critical: true, Cost: 5},
			{ID: "floo-records", Name: "Floo records", Cost: 10},
		},
		Witnesses: []models.Witness{
			{ID: "curator", Name: "The curator", BaseTrust: 40},
		},
		Contradictions: []models.Contradiction{
			{ID: "timeline-clash", Between: []string{"torn-sleeve", "floo-records"}},
		},
		Hypotheses: []models.Hypothesis{
			{ID: "inside-job", Tier: models.TierOne},
			{ID: "smuggling-ring", Tier: models.TierTwo, Correct: true},
		},
	}

	ev, ok := c.EvidenceByID("torn-sleeve")
	require.True(t, ok)
	assert.Equal(t, "Torn sleeve", ev.Name)
	_, ok = c.EvidenceByID("nope")
	assert.False(t, ok)

	w, ok := c.WitnessByID("curator")
	require.True(t, ok)
	assert.Equal(t, 40, w.BaseTrust)

	con, ok := c.ContradictionByID("timeline-clash")
	require.True(t, ok)
	assert.True(t, con.Involves("floo-records"))
	assert.False(t, con.Involves("wand"))

	h, ok := c.CorrectHypothesis()
	require.True(t, ok)
	assert.Equal(t, "smuggling-ring", h.ID)

	assert.Equal(t, 1, c.Tier2Count())
	assert.Equal(t, 1, c.CriticalEvidenceCount())
}
