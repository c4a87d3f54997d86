// Package sim has CLI commands that play out spell mechanics in bulk, for
// checking the tuning without a running server.
package sim

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/Roderick111/auror/internal/engine"
	"github.com/Roderick111/auror/internal/models"
)

var Group = &cobra.Group{
	ID:    "sim",
	Title: "Simulation operations",
}

func init() {
	Legilimens.Flags().Int("casts", 10000, "number of casts to simulate")
	Legilimens.Flags().Bool("focused", false, "cast with an explicit target, doubling the evidence rate")
	Legilimens.Flags().Uint64("seed", 0, "random seed, 0 picks one")
}

var Legilimens = &cobra.Command{
	Use:     "legilimens",
	GroupID: "sim",
	Short:   "Simulate Legilimency outcomes",
	Long: `Resolves a batch of Legilimency casts against a synthetic witness and
prints the observed outcome distribution, the secret yield, and the average
trust penalty per detection.`,
	Run: func(cmd *cobra.Command, _ []string) {
		casts, err := cmd.Flags().GetInt("casts")
		if err != nil || casts < 1 {
			_, _ = fmt.Fprintf(os.Stderr, "invalid casts flag: %v\n", err)
			return
		}
		focused, err := cmd.Flags().GetBool("focused")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid focused flag: %v\n", err)
			return
		}
		seed, err := cmd.Flags().GetUint64("seed")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid seed flag: %v\n", err)
			return
		}
		if seed == 0 {
			seed = rand.Uint64()
		}
		rng := rand.New(rand.NewPCG(seed, 0))

		input := "Legilimens!"
		if focused {
			input = "Legilimens! I want to find out about the missing ledger."
		}
		witness := models.Witness{
			ID:        "simulated-witness",
			Name:      "Simulated Witness",
			BaseTrust: 50,
			Secrets: []models.Secret{
				// Unreachable by trigger, so only the spell can surface it.
				{ID: "sim-secret", Condition: "trust > 100", Text: "A secret only the spell can reach."},
			},
		}
		nothingRevealed := func(string) bool { return false }

		counts := make(map[engine.Outcome]int, 4)
		detections := 0
		penaltyTotal := 0
		secrets := 0
		for range casts {
			outcome := engine.ResolveLegilimens(input, witness, nothingRevealed, rng)
			counts[outcome.Outcome]++
			if outcome.Detected {
				detections++
				penaltyTotal += -outcome.TrustDelta
			}
			if outcome.SecretID != "" {
				secrets++
			}
		}

		fmt.Printf("casts: %d (focused=%t, seed=%d)\n", casts, focused, seed)
		for _, outcome := range []engine.Outcome{
			engine.OutcomeDetectedWithEvidence,
			engine.OutcomeDetectedNoEvidence,
			engine.OutcomeUndetectedWithEvidence,
			engine.OutcomeUndetectedNoEvidence,
		} {
			fmt.Printf("  %-26s %6.2f%%\n", outcome, 100*float64(counts[outcome])/float64(casts))
		}
		fmt.Printf("secrets reached: %.2f%%\n", 100*float64(secrets)/float64(casts))
		if detections > 0 {
			fmt.Printf("average detection penalty: %.2f trust\n", float64(penaltyTotal)/float64(detections))
		}
	},
}
