package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/lexmatch/internal/engine"
	"github.com/abhisek/lexmatch/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
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

		eng := engine.New(engine.Options{
			History:   st.HistoryRepo(),
			Snapshots: st.SnapshotRepo(),
		})
		learner := learnerID(cmd)
		if err := eng.LoadMemorySnapshot(cmd.Context(), learner); err != nil {
			fmt.Fprintln(os.Stderr, "memory snapshot unavailable:", err)
		}

		a, err := eng.Analytics(cmd.Context(), learner)
		if err != nil {
			return err
		}
		printAnalytics(a)

		report := eng.MemoryReport(learner)
		if report.TotalItems > 0 {
			fmt.Printf("\nmemory: %d items, avg strength %.2f, retention %.0f%%, trend %s\n",
				report.TotalItems, report.AverageStrength, report.OverallRetention*100, report.Trend)
			fmt.Printf("due now: %d  overdue: %d\n", report.DueCount, report.OverdueCount)
			for _, rec := range report.Recommendations {
				fmt.Println("  -", rec)
			}
		}

		gept := eng.GEPTReport(learner)
		if len(gept.Levels) > 0 {
			fmt.Println("\nby level:")
			for _, lvl := range gept.Levels {
				fmt.Printf("  %-18s %3d items  %d mastered  strength %.2f\n",
					lvl.Level, lvl.ItemCount, lvl.MasteredCount, lvl.AverageStrength)
			}
			fmt.Println("  " + gept.Readiness)
		}
		return nil
	},
}

func printAnalytics(a *engine.Analytics) {
	if a.TotalSessions == 0 {
		fmt.Println("no sessions played yet")
		return
	}
	fmt.Printf("sessions: %d\n", a.TotalSessions)
	fmt.Printf("average score:    %.0f\n", a.AverageScore)
	fmt.Printf("average accuracy: %.0f%%\n", a.AverageAccuracy*100)
	fmt.Printf("average time:     %.0fs\n", a.AverageCompletionTime)
	if a.ImprovementRate != 0 {
		fmt.Printf("improvement:      %+.0f%%\n", a.ImprovementRate)
	}
}
