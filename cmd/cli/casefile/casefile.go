// Package casefile has CLI commands for inspecting case definition files
// before they ship to a server.
package casefile

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Roderick111/auror/internal/caseload"
)

var Group = &cobra.Group{
	ID:    "case",
	Title: "Case file operations",
}

func init() {
	List.Flags().String("dir", "./cases", "case directory")
}

var List = &cobra.Command{
	Use:     "list",
	GroupID: "case",
	Short:   "List playable cases",
	Long: `Loads every case in the case directory exactly the way the server does
and prints a one-line summary per playable case. Skipped files are reported
on stderr.`,
	Run: func(cmd *cobra.Command, _ []string) {
		dir, err := cmd.Flags().GetString("dir")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid dir flag: %v\n", err)
			return
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		catalog, err := caseload.LoadDir(context.Background(), logger, dir)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load cases: %v\n", err)
			os.Exit(1)
		}
		for _, c := range catalog.All() {
			fmt.Println(caseload.Describe(c))
		}
	},
}

var Validate = &cobra.Command{
	Use:     "validate [files]",
	GroupID: "case",
	Short:   "Validate case files",
	Long: `Validates case definition files and prints every problem found. Exits
non-zero when any file is invalid, so it can gate case changes in CI.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		invalid := 0
		for _, path := range args {
			c, warnings, err := caseload.Load(path)
			if err != nil {
				invalid++
				_, _ = fmt.Fprintf(os.Stderr, "%s: INVALID\n  %v\n", path, err)
				continue
			}
			fmt.Printf("%s: ok (%s)\n", path, caseload.Describe(c))
			for _, warning := range warnings {
				fmt.Printf("  warning: %s\n", warning)
			}
		}
		if invalid > 0 {
			os.Exit(1)
		}
	},
}
