package cmd

import (
	"github.com/abhisek/lexmatch/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexmatch",
	Short: "Adaptive vocabulary match trainer",
	Long:  "Lexmatch — terminal vocabulary match game with spaced-repetition scheduling and adaptive difficulty.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LEXMATCH_DB env var)")
	rootCmd.PersistentFlags().String("learner", "default", "Learner identity to play and report as")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then LEXMATCH_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func learnerID(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("learner")
	if id == "" {
		id = "default"
	}
	return id
}
