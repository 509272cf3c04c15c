// castlechain is a terminal castle-defense game settled against an
// external ledger: health refills are bought mid-session with native or
// stable currency and finished sessions rank on an on-chain leaderboard.
//
// Usage:
//
//	castlechain play              - Defend the castle
//	castlechain leaderboard       - Show the ranked leaderboard
//	castlechain sessions          - Show local session history
//	castlechain serve             - Start SSH server for remote play
//	castlechain list              - List available game modes
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible sessions
//	--db <path>     - Set database path (default: ~/.castlechain/castlechain.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/castlechain/internal/games/castle"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "castlechain",
	Short: "Castle defense in your terminal, scored on chain",
	Long: `castlechain is a timed castle-defense game played in the terminal.
Hostiles march on the west wall for ninety seconds; hold the line and
your score goes on a shared on-chain leaderboard. Running low mid-fight,
you can buy a health refill with ETH or USDC without pausing the siege.

Available commands:
  play         - Defend the castle
  leaderboard  - View the ranked leaderboard
  sessions     - View local session history and stats
  serve        - Start SSH server for remote play
  list         - Show available game modes

Examples:
  castlechain play
  castlechain play --difficulty hard
  castlechain leaderboard --scope daily
  castlechain serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.castlechain/castlechain.db", "Path to local database")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(serveCmd)
}
