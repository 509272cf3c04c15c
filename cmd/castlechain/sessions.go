package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/castlechain/internal/storage"
)

var (
	flagSessionsTop   bool
	flagSessionsClear bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show local session history",
	Long: `Display recent sessions recorded in the local database, with
aggregate stats. Sessions submitted to the leaderboard show their
transaction reference.

Examples:
  castlechain sessions
  castlechain sessions --top
  castlechain sessions --clear`,
	Args: cobra.NoArgs,
	Run:  runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&flagSessionsTop, "top", false, "Order by score instead of recency")
	sessionsCmd.Flags().BoolVar(&flagSessionsClear, "clear", false, "Delete all recorded sessions")
}

func runSessions(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagSessionsClear {
		if err := store.ClearSessions(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing sessions: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Session history cleared.")
		return
	}

	var records []storage.SessionRecord
	if flagSessionsTop {
		records, err = store.TopSessions(10)
	} else {
		records, err = store.RecentSessions(10)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Castle Defense - Session History")
	fmt.Println()

	if len(records) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'castlechain play' to defend the castle!")
		return
	}

	fmt.Printf("  %-8s  %-7s  %-4s  %-16s  %s\n", "Score", "Outcome", "Aug", "Date", "Tx")
	fmt.Printf("  %-8s  %-7s  %-4s  %-16s  %s\n", "-----", "-------", "---", "----", "--")

	for _, rec := range records {
		aug := ""
		if rec.Augmented {
			aug = "*"
		}
		tx := rec.TxRef
		if len(tx) > 12 {
			tx = tx[:12] + "..."
		}
		fmt.Printf("  %-8d  %-7s  %-4s  %-16s  %s\n",
			rec.Score, rec.Outcome, aug,
			rec.CreatedAt.Format("2006-01-02 15:04"), tx)
	}

	stats, err := store.Stats()
	if err == nil && stats.Sessions > 0 {
		fmt.Println()
		fmt.Printf("Sessions: %d  Wins: %d  Augmented: %d  Best: %d  Avg: %.1f\n",
			stats.Sessions, stats.Wins, stats.Augmented, stats.BestScore, stats.AvgScore)
	}
}
