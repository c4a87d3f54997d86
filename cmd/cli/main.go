package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Roderick111/auror/cmd/cli/casefile"
	"github.com/Roderick111/auror/cmd/cli/sim"
)

func init() {
	// A .env is optional here; the CLI only reads defaults from it.
	_ = godotenv.Load()
	rootCmd.AddGroup(casefile.Group)
	rootCmd.AddCommand(casefile.List, casefile.Validate)
	rootCmd.AddGroup(sim.Group)
	rootCmd.AddCommand(sim.Legilimens)
}

var rootCmd = &cobra.Command{
	Use:  "auror-cli",
	Long: `Command line utilities for the Auror investigation server https://github.com/Roderick111/auror`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
