package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Roderick111/auror/internal/models"
	"github.com/Roderick111/auror/internal/repositories"
	"github.com/Roderick111/auror/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// sampleState builds a state with every kind of progress so that the JSON
// round trip covers witness states, interview history, and discovery
// timestamps.
func sampleState(caseID string) *models.InvestigationState {
	now := time.Now().UTC()
	return &models.InvestigationState{
		CaseID:      caseID,
		StartedAt:   now.Add(-time.Hour),
		Budget:      60,
		PointsSpent: 25,
		Evidence:    map[string]bool{"torn-sleeve": true, "floo-records": true},
		Contradictions: map[string]*models.ContradictionState{
			"timeline-clash": {DiscoveredAt: now.Add(-30 * time.Minute), Resolved: true},
		},
		Hypotheses: map[string]bool{"outsider-theft": true, "inside-job": true},
		Witnesses: map[string]*models.WitnessState{
			"madam-pince": {
				WitnessID: "madam-pince",
				Trust:     65,
				Secrets:   map[string]bool{"pince-ledger": true},
				History: []models.Exchange{
					{
						Question: "Who had access to the ledger?",
						Answer:   "Only staff, of course.",
						Asked:    now.Add(-45 * time.Minute),
					},
				},
			},
			"night-guard": {
				WitnessID: "night-guard",
				Trust:     40,
				Secrets:   map[string]bool{},
			},
		},
	}
}

func TestInvestigationRepository_GetPut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewInvestigationRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	_, err := repo.Get(ctx, "player-1", "restricted-section")
	require.ErrorIs(t, err, repositories.ErrNotFound, "unknown state should report not found")

	want := sampleState("restricted-section")
	require.NoError(t, repo.Put(ctx, "player-1", want))

	got, err := repo.Get(ctx, "player-1", "restricted-section")
	require.NoError(t, err)
	require.Equal(t, want, got, "state should round-trip unchanged")

	// Same case under a different player is a separate document.
	_, err = repo.Get(ctx, "player-2", "restricted-section")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestInvestigationRepository_PutOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewInvestigationRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	state := sampleState("restricted-section")
	require.NoError(t, repo.Put(ctx, "player-1", state))

	state.Evidence["dust-outline"] = true
	state.PointsSpent += 5
	state.Verdict = &models.Verdict{
		HypothesisID: "inside-job",
		Correct:      true,
		Score: models.Score{
			Efficiency:           72,
			Thoroughness:         75,
			ContradictionMastery: 70,
			TierDiscovery:        33,
		},
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Put(ctx, "player-1", state))

	got, err := repo.Get(ctx, "player-1", "restricted-section")
	require.NoError(t, err)
	require.Equal(t, state, got, "second put should overwrite the first")
	require.NotNil(t, got.Verdict)
	require.True(t, got.Verdict.Correct)
}

func TestInvestigationRepository_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewInvestigationRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	require.NoError(t, repo.Put(ctx, "player-1", sampleState("restricted-section")))
	require.NoError(t, repo.Delete(ctx, "player-1", "restricted-section"))

	_, err := repo.Get(ctx, "player-1", "restricted-section")
	require.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "player-1", "restricted-section"),
		"deleting an absent state is a no-op")
}

func TestInvestigationRepository_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repositories.NewInvestigationRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	started, err := repo.List(ctx, "player-1")
	require.NoError(t, err)
	require.Empty(t, started)

	require.NoError(t, repo.Put(ctx, "player-1", sampleState("restricted-section")))
	require.NoError(t, repo.Put(ctx, "player-1", sampleState("vanishing-cauldron")))
	require.NoError(t, repo.Put(ctx, "player-2", sampleState("restricted-section")))

	started, err = repo.List(ctx, "player-1")
	require.NoError(t, err)
	require.Len(t, started, 2)
	caseIDs := []string{started[0].CaseID, started[1].CaseID}
	require.ElementsMatch(t, []string{"restricted-section", "vanishing-cauldron"}, caseIDs)
	for _, s := range started {
		require.WithinDuration(t, time.Now(), s.UpdatedAt, time.Minute)
		require.False(t, s.Completed)
	}

	closed := sampleState("restricted-section")
	closed.Verdict = &models.Verdict{
		HypothesisID: "inside-job",
		Correct:      true,
		SubmittedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Put(ctx, "player-1", closed))

	started, err = repo.List(ctx, "player-1")
	require.NoError(t, err)
	require.Len(t, started, 2)
	require.Equal(t, "restricted-section", started[0].CaseID, "latest update sorts first")
	require.True(t, started[0].Completed)
	require.False(t, started[1].Completed)
}
