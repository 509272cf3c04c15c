package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/castlechain/internal/chain"
	"github.com/vovakirdan/castlechain/internal/chain/abi"
	"github.com/vovakirdan/castlechain/internal/config"
	"github.com/vovakirdan/castlechain/internal/ledger"
	"github.com/vovakirdan/castlechain/internal/storage"
)

var (
	flagBoardScope  string
	flagBoardLimit  int
	flagBoardPlayer string
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the ranked leaderboard",
	Long: `Display the on-chain leaderboard. When the chain is unreachable the
last cached standings are shown instead.

Scopes:
  all-time - All submissions (default)
  daily    - Submissions from the current day

Examples:
  castlechain leaderboard
  castlechain leaderboard --scope daily
  castlechain leaderboard --limit 25`,
	Args: cobra.NoArgs,
	Run:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().StringVar(&flagBoardScope, "scope", "all-time", "Board scope: all-time or daily")
	leaderboardCmd.Flags().IntVar(&flagBoardLimit, "limit", 10, "Number of entries to show")
	leaderboardCmd.Flags().StringVar(&flagBoardPlayer, "player", "", "Show submission stats for a player address instead")
	leaderboardCmd.Flags().StringVar(&flagChainConfig, "chain-config", "", "Path to custom chain config YAML")
}

func runLeaderboard(cmd *cobra.Command, args []string) {
	scope := ledger.ParseScope(flagBoardScope)

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "castlechain"})

	if flagBoardPlayer != "" {
		runPlayerStats(logger)
		return
	}

	store, storeErr := storage.Open(flagDBPath)
	if storeErr != nil {
		store = nil
	} else {
		defer store.Close()
	}

	entries, fromCache, cachedAt := fetchBoard(scope, logger, store)

	fmt.Printf("Leaderboard - %s\n", scope)
	if fromCache {
		fmt.Printf("(cached %s, chain unreachable)\n", cachedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No entries yet.")
		fmt.Println()
		fmt.Println("Run 'castlechain play' and submit a result to claim the top spot!")
		return
	}

	fmt.Printf("  %-4s  %-24s  %-14s  %-8s  %s\n", "Rank", "Name", "Player", "Score", "Aug")
	fmt.Printf("  %-4s  %-24s  %-14s  %-8s  %s\n", "----", "----", "------", "-----", "---")

	for _, e := range entries {
		aug := ""
		if e.Augmented {
			aug = "*"
		}
		player := ""
		if !e.Player.IsZero() {
			player = e.Player.Short()
		}
		fmt.Printf("  %-4d  %-24s  %-14s  %-8d  %s\n", e.Rank, e.Name, player, e.Score, aug)
	}
}

// runPlayerStats prints one player's submission history from the chain.
func runPlayerStats(logger *log.Logger) {
	player, err := abi.ParseAddress(flagBoardPlayer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid player address: %v\n", err)
		os.Exit(1)
	}

	chainCfg, err := config.LoadChain(flagChainConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading chain config: %v\n", err)
		os.Exit(1)
	}
	bridge, err := chain.NewBridge(chainCfg, nil, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := ledger.NewClient(bridge, logger).PlayerStats(ctx, player)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading player stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Player %s\n\n", player.Hex())
	fmt.Printf("  Submissions: %d\n", stats.Submissions)
	fmt.Printf("  Best score:  %d\n", stats.BestScore)
	if stats.Submissions > 0 {
		fmt.Printf("  Last played: %s\n", stats.LastPlayed.Format("2006-01-02 15:04 MST"))
	}
}

// fetchBoard queries the chain and falls back to the local cache.
func fetchBoard(scope ledger.Scope, logger *log.Logger, store *storage.Store) ([]ledger.Entry, bool, time.Time) {
	chainCfg, err := config.LoadChain(flagChainConfig)
	if err == nil {
		bridge, bridgeErr := chain.NewBridge(chainCfg, nil, logger)
		if bridgeErr == nil {
			board := ledger.NewClient(bridge, logger)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			entries := board.QueryLeaderboard(ctx, scope, flagBoardLimit)
			if len(entries) > 0 {
				return entries, false, time.Time{}
			}
		}
	}

	if store == nil {
		return nil, false, time.Time{}
	}
	cached, cachedAt, cacheErr := store.CachedBoard(scope.String())
	if cacheErr != nil || len(cached) == 0 {
		return nil, false, time.Time{}
	}

	entries := make([]ledger.Entry, len(cached))
	for i, c := range cached {
		entries[i] = ledger.Entry{
			Rank:      c.Rank,
			Name:      c.Name,
			Score:     c.Score,
			Augmented: c.Augmented,
		}
	}
	return entries, true, cachedAt
}
