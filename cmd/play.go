package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/lexmatch/internal/content"
	"github.com/abhisek/lexmatch/internal/engine"
	"github.com/abhisek/lexmatch/internal/game"
	"github.com/abhisek/lexmatch/internal/scoring"
	"github.com/abhisek/lexmatch/internal/store"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a match session",
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

		packPath, _ := cmd.Flags().GetString("pack")
		supplier, err := content.LoadFile(packPath)
		if err != nil {
			return err
		}

		eng := engine.New(engine.Options{
			History:   st.HistoryRepo(),
			Snapshots: st.SnapshotRepo(),
			Logger:    slog.New(slog.NewTextHandler(os.Stderr, nil)),
		})
		learner := learnerID(cmd)
		if err := eng.LoadMemorySnapshot(cmd.Context(), learner); err != nil {
			fmt.Fprintln(os.Stderr, "memory snapshot unavailable:", err)
		}

		cfg, err := playConfig(cmd)
		if err != nil {
			return err
		}
		if err := playSession(eng, learner, cfg, supplier); err != nil {
			return err
		}

		if err := eng.SaveMemorySnapshot(cmd.Context(), learner); err != nil {
			fmt.Fprintln(os.Stderr, "save memory snapshot:", err)
		}
		return nil
	},
}

func init() {
	playCmd.Flags().String("pack", "", "Path to a JSON content pack (required)")
	playCmd.Flags().Int("pairs", 6, "Number of pairs per round")
	playCmd.Flags().String("mode", "text-text", "Match mode")
	playCmd.Flags().String("difficulty", "medium", "Difficulty level")
	playCmd.Flags().String("level", "", "GEPT proficiency level of this round")
	playCmd.Flags().Int("time", 0, "Time limit in seconds (0 = untimed)")
	playCmd.Flags().String("scoring", "standard", "Scoring mode")
	playCmd.Flags().Bool("no-hints", false, "Disable hints")
	playCmd.MarkFlagRequired("pack")
}

func playConfig(cmd *cobra.Command) (game.Config, error) {
	pairs, _ := cmd.Flags().GetInt("pairs")
	mode, _ := cmd.Flags().GetString("mode")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	level, _ := cmd.Flags().GetString("level")
	timeLimit, _ := cmd.Flags().GetInt("time")
	scoringMode, _ := cmd.Flags().GetString("scoring")
	noHints, _ := cmd.Flags().GetBool("no-hints")

	cfg := game.Config{
		Mode:          game.Mode(mode),
		Difficulty:    difficulty,
		GEPTLevel:     content.GEPTLevel(level),
		PairCount:     pairs,
		TimeLimitSec:  timeLimit,
		AllowHints:    !noHints,
		ShuffleItems:  true,
		MaxExtensions: 2,
		Scoring: scoring.Config{
			Mode:             scoring.Mode(scoringMode),
			BaseScore:        100,
			StreakMultiplier: 1.1,
			TimeBonus:        timeLimit > 0,
			EndBonuses:       true,
		},
	}
	if err := cfg.Validate(); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}

// playSession runs the interactive terminal loop over one session.
func playSession(eng *engine.Engine, learner string, cfg game.Config, supplier content.Supplier) error {
	mgr := eng.Manager(learner)
	mgr.SetResolveDelay(0)
	mgr.OnMatchResolved(func(pair content.Pair, correct bool) {
		if correct {
			fmt.Printf("  ✓ %s — %s\n", itemLabel(pair.Left), itemLabel(pair.Right))
		} else {
			fmt.Printf("  ✗ %s / %s do not match\n", itemLabel(pair.Left), itemLabel(pair.Right))
		}
	})
	mgr.OnSessionComplete(func(res game.Result) {
		printResult(&res)
	})

	if _, err := eng.StartSession(learner, cfg, supplier); err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		state := eng.SessionState(learner)
		if state == nil || state.Status == game.StatusCompleted {
			return nil
		}
		printBoard(state)
		fmt.Print("> ")
		if !in.Scan() {
			eng.EndSession(learner)
			return in.Err()
		}

		switch line := strings.TrimSpace(in.Text()); line {
		case "":
		case "hint":
			if h := eng.RequestHint(learner); h != nil {
				fmt.Printf("  hint (%s): %s\n", h.Level, h.Message)
			} else {
				fmt.Println("  no hint available")
			}
		case "pause":
			eng.PauseSession(learner)
			fmt.Println("  paused")
		case "resume":
			eng.ResumeSession(learner)
		case "quit":
			eng.EndSession(learner)
			return nil
		default:
			selectPair(eng, learner, state, line)
		}
	}
}

// selectPair parses "<left#> <right#>" against the current board.
func selectPair(eng *engine.Engine, learner string, state *game.State, line string) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		fmt.Println("  enter two numbers, or hint / pause / resume / quit")
		return
	}
	li, errL := strconv.Atoi(fields[0])
	ri, errR := strconv.Atoi(fields[1])
	lefts, rights := boardItems(state)
	if errL != nil || errR != nil || li < 1 || li > len(lefts) || ri < 1 || ri > len(rights) {
		fmt.Println("  enter two numbers, or hint / pause / resume / quit")
		return
	}
	if !eng.SelectItem(learner, lefts[li-1].ID) {
		fmt.Println("  selection rejected")
		return
	}
	if !eng.SelectItem(learner, rights[ri-1].ID) {
		fmt.Println("  selection rejected")
	}
}

// boardItems returns the unmatched items: lefts in board order, rights
// re-sorted so the columns don't line up as answers.
func boardItems(state *game.State) (lefts, rights []content.Item) {
	matched := make(map[string]bool, len(state.MatchedPairs))
	for _, id := range state.MatchedPairs {
		matched[id] = true
	}
	for _, p := range state.Pairs {
		if !matched[p.ID] {
			lefts = append(lefts, p.Left)
			rights = append(rights, p.Right)
		}
	}
	sort.Slice(rights, func(i, j int) bool {
		return itemLabel(rights[i]) < itemLabel(rights[j])
	})
	return lefts, rights
}

func printBoard(state *game.State) {
	fmt.Printf("\nscore %d  streak %d", state.Score, state.CurrentStreak)
	if state.TimeRemaining > 0 {
		fmt.Printf("  time %ds", state.TimeRemaining)
	}
	fmt.Println()
	lefts, rights := boardItems(state)
	for i := range lefts {
		fmt.Printf("  %d) %-20s %d) %s\n", i+1, itemLabel(lefts[i]), i+1, itemLabel(rights[i]))
	}
}

func itemLabel(it content.Item) string {
	if it.DisplayText != "" {
		return it.DisplayText
	}
	return it.Content
}

func printResult(res *game.Result) {
	fmt.Println("\nsession complete")
	fmt.Printf("  score       %d\n", res.Score)
	fmt.Printf("  accuracy    %.0f%%\n", res.Accuracy*100)
	fmt.Printf("  matches     %d/%d attempts\n", res.CorrectMatches, res.TotalAttempts)
	fmt.Printf("  best streak %d\n", res.BestStreak)
	if res.HintsUsed > 0 {
		fmt.Printf("  hints used  %d\n", res.HintsUsed)
	}
	fmt.Printf("  retention   %.0f/100\n", res.MemoryRetention)
	for _, rec := range res.Recommendations {
		fmt.Println("  -", rec)
	}
}
