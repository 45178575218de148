package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/lexmatch/internal/engine"
	"github.com/abhisek/lexmatch/internal/spacedrep"
	"github.com/abhisek/lexmatch/internal/store"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate today's review plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		eng := engine.New(engine.Options{Snapshots: st.SnapshotRepo()})
		learner := learnerID(cmd)
		if err := eng.LoadMemorySnapshot(cmd.Context(), learner); err != nil {
			fmt.Fprintln(os.Stderr, "memory snapshot unavailable:", err)
		}

		minutes, _ := cmd.Flags().GetInt("minutes")
		maxNew, _ := cmd.Flags().GetInt("max-new")
		maxReview, _ := cmd.Flags().GetInt("max-review")
		plan := eng.GenerateLearningPlan(learner, spacedrep.Preferences{
			DailyStudyTime: minutes,
			MaxNewItems:    maxNew,
			MaxReviewItems: maxReview,
		})

		printPlan(plan)
		return nil
	},
}

func init() {
	planCmd.Flags().Int("minutes", 20, "Daily study time in minutes")
	planCmd.Flags().Int("max-new", 5, "Maximum new items per day")
	planCmd.Flags().Int("max-review", 20, "Maximum review items per day")
}

func printPlan(plan *spacedrep.LearningPlan) {
	if len(plan.Schedule) == 0 {
		fmt.Println("nothing due for review")
		return
	}
	fmt.Printf("review plan: %d items, ~%d min\n\n", len(plan.Schedule), plan.EstimatedTime)
	for _, item := range plan.Schedule {
		fmt.Printf("  %-8s %-12s %s  (strength %.2f, %d min)\n",
			item.Priority, item.ReviewType, item.ContentID, item.MemoryStrength, item.EstimatedDuration)
	}
	if len(plan.PriorityItems) > 0 {
		ids := make([]string, len(plan.PriorityItems))
		for i, item := range plan.PriorityItems {
			ids[i] = item.ContentID
		}
		fmt.Printf("\nstart with: %s\n", strings.Join(ids, ", "))
	}
	flags := plan.Flags
	if flags.ReduceDifficulty {
		fmt.Println("suggestion: reduce difficulty, retention is low")
	}
	if flags.ExtendIntervals {
		fmt.Println("suggestion: shorter sessions, memory strength is low")
	}
	if flags.ReduceLoad {
		fmt.Println("suggestion: backlog is heavy, review in smaller batches")
	}
}
