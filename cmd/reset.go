package cmd

import (
	"fmt"

	"github.com/abhisek/lexmatch/internal/store"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase a learner's history and memory snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		learner := learnerID(cmd)
		if !yes {
			return fmt.Errorf("refusing to erase learner %q without --yes", learner)
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.HistoryRepo().Prune(ctx, learner, 0); err != nil {
			return fmt.Errorf("erase history: %w", err)
		}
		if err := st.SnapshotRepo().Prune(ctx, learner, 0); err != nil {
			return fmt.Errorf("erase snapshots: %w", err)
		}
		fmt.Printf("erased all data for learner %q\n", learner)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm erasure")
}
