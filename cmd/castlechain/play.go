package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/castlechain/internal/chain"
	"github.com/vovakirdan/castlechain/internal/config"
	"github.com/vovakirdan/castlechain/internal/core"
	"github.com/vovakirdan/castlechain/internal/games/castle"
	"github.com/vovakirdan/castlechain/internal/ledger"
	"github.com/vovakirdan/castlechain/internal/platform/tui"
	"github.com/vovakirdan/castlechain/internal/registry"
	"github.com/vovakirdan/castlechain/internal/storage"
)

var (
	flagConfig      string
	flagChainConfig string
	flagDifficulty  string
	flagOffline     bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Defend the castle",
	Long: `Start a ninety-second defense of the castle wall.

Controls:
  WASD/Arrows  - Move
  Mouse        - Aim (click or Space fires)
  C            - Connect wallet
  H / U        - Buy health refill (native / stable currency)
  G            - Grant stable-token allowance
  L            - Leaderboard
  P            - Pause
  R            - Restart (after the session ends)
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - Slow spawns, gentle acceleration
  normal - Default pacing
  hard   - Fast spawns, aggressive acceleration
  fixed  - No spawn acceleration at all

Examples:
  castlechain play
  castlechain play --difficulty hard
  castlechain play --config ./my-castle.yaml
  castlechain play --offline`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagChainConfig, "chain-config", "", "Path to custom chain config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().BoolVar(&flagOffline, "offline", false, "Play without wallet and leaderboard")
}

func runPlay(cmd *cobra.Command, args []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "castlechain",
	})

	// Get terminal size early
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	// Set config path and difficulty before game creation
	castle.SetConfigPath(flagConfig)
	castle.SetDifficultyPreset(flagDifficulty)

	game, err := registry.Create("castle")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	// Open session storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	// Wire the chain bridge unless playing offline. A broken chain
	// config degrades to offline play rather than blocking the game.
	var bridge *chain.Bridge
	var board *ledger.Client
	if !flagOffline {
		chainCfg, chainErr := config.LoadChain(flagChainConfig)
		if chainErr != nil {
			logger.Warn("chain config unavailable, playing offline", "error", chainErr)
		} else {
			var provider chain.Provider
			if chainCfg.WalletRPCURL != "" {
				provider = chain.NewRPCProvider(chainCfg.WalletRPCURL)
			}
			bridge, chainErr = chain.NewBridge(chainCfg, provider, logger)
			if chainErr != nil {
				logger.Warn("chain bridge unavailable, playing offline", "error", chainErr)
				bridge = nil
			} else {
				board = ledger.NewClient(bridge, logger)
			}
		}
	}

	runErr := tui.Run(game, store, bridge, board, cfg, logger)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
