package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/castlechain/internal/chain"
	"github.com/vovakirdan/castlechain/internal/config"
	"github.com/vovakirdan/castlechain/internal/core"
	"github.com/vovakirdan/castlechain/internal/ledger"
	"github.com/vovakirdan/castlechain/internal/registry"
	"github.com/vovakirdan/castlechain/internal/storage"
)

// chainCallTimeout bounds every wallet and node round trip started from
// the UI. Purchases get the bridge's own confirmation window on top.
const chainCallTimeout = 30 * time.Second

// phase is the current UI mode.
type phase int

const (
	phasePlaying phase = iota
	phaseNameEntry
	phaseBoard
)

// Model is the Bubble Tea model orchestrating the simulation and the
// asynchronous chain flows. The simulation only ever advances on
// TickMsg; chain results arrive as typed messages between ticks and are
// folded into the next tick's input frame.
type Model struct {
	game   registry.Game
	screen *core.Screen
	store  *storage.Store
	bridge *chain.Bridge  // nil in offline mode
	board  *ledger.Client // nil in offline mode
	logger *log.Logger

	config core.RuntimeConfig
	world  config.WorldConfig
	keys   KeyMap
	mapper *KeyMapper
	help   help.Model

	inputFrame core.InputFrame
	gameState  core.GameState

	// sessionGen guards against results from a replaced session: every
	// restart bumps it, and async messages carrying an older generation
	// are dropped.
	sessionGen     int
	pendingRestore bool
	purchaseBusy   bool

	wallet *chain.WalletSession
	quote  *chain.Quote
	status string

	savedSessionID int64
	sessionSaved   bool
	submitted      bool

	phase      phase
	nameInput  textinput.Model
	boardTable table.Model
	boardScope ledger.Scope
	boardNote  string

	quitting bool
}

// NewModel creates the orchestration model. bridge and board may be nil
// for offline play; everything chain-side then degrades to status
// notices while the simulation runs untouched.
func NewModel(game registry.Game, store *storage.Store, bridge *chain.Bridge,
	board *ledger.Client, cfg core.RuntimeConfig, logger *log.Logger) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.Default()
	}

	// The world dimensions drive the pointer-to-world mapping
	castleCfg, err := config.LoadCastle("")
	if err != nil {
		castleCfg = config.DefaultCastleConfig()
	}

	name := textinput.New()
	name.Placeholder = "display name"
	name.CharLimit = 32
	name.Width = 24

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH-1),
		store:      store,
		bridge:     bridge,
		board:      board,
		logger:     logger,
		config:     cfg,
		world:      castleCfg.World,
		keys:       DefaultKeyMap(),
		mapper:     NewKeyMapper(),
		help:       help.New(),
		inputFrame: core.NewInputFrame(),
		nameInput:  name,
		status:     "Defend the castle! c connects a wallet.",
	}
}

// Init initializes the model and starts the tick loop.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tea.Batch(tickCmd(m.config.TickRate), m.listenNotices())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case walletMsg:
		return m.handleWallet(msg)

	case quoteMsg:
		if msg.err == nil {
			quote := msg.quote
			m.quote = &quote
		}
		return m, nil

	case purchaseMsg:
		return m.handlePurchase(msg)

	case approveMsg:
		if msg.err != nil {
			m.status = chainErrorStatus("Approval", msg.err)
		} else {
			m.status = "Allowance granted. Health purchases with u are ready."
		}
		return m, nil

	case submitMsg:
		return m.handleSubmit(msg)

	case boardMsg:
		return m.handleBoard(msg)

	case noticeMsg:
		m.status = msg.Message
		return m, m.listenNotices()
	}

	return m, nil
}

// handleKey processes keyboard input per phase.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseNameEntry:
		return m.handleNameEntryKey(msg)
	case phaseBoard:
		return m.handleBoardKey(msg)
	}

	// Chain and view bindings take precedence over game actions
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.bridge != nil {
			m.bridge.Disconnect()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Connect):
		return m.startConnect()
	case key.Matches(msg, m.keys.BuyNative):
		return m.startPurchase(chain.CurrencyNative)
	case key.Matches(msg, m.keys.BuyStable):
		return m.startPurchase(chain.CurrencyStable)
	case key.Matches(msg, m.keys.Approve):
		return m.startApprove()
	case key.Matches(msg, m.keys.Leaderboard):
		return m.openBoard(m.boardScope)
	}

	if msg.String() == "r" && m.gameState.GameOver {
		m.restartSession()
		return m, nil
	}

	m.mapper.MapKeyToFrame(msg, &m.inputFrame)
	return m, nil
}

// handleMouse maps pointer motion to the aim point and clicks to fire.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.phase != phasePlaying {
		return m, nil
	}

	wx, wy := m.screenToWorld(msg.X, msg.Y)
	m.inputFrame.SetAim(wx, wy)

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.inputFrame.Set(core.ActionFire)
	}
	return m, nil
}

// screenToWorld inverts the game's world-to-screen projection.
// Rows 0-1 are the HUD; the last row is the status bar.
func (m Model) screenToWorld(x, y int) (float64, float64) {
	gameH := m.screen.Height() - 2
	if gameH < 1 {
		gameH = 1
	}
	wx := float64(x) / float64(m.screen.Width()) * m.world.Width
	wy := float64(y-2) / float64(gameH) * m.world.Height
	return core.ClampF(wx, 0, m.world.Width), core.ClampF(wy, 0, m.world.Height)
}

// handleResize adjusts the render buffer. The simulation runs in world
// coordinates and is projected at render time, so a resize never
// disturbs a running session.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height-1)
	m.help.Width = msg.Width
	return m, nil
}

// handleTick advances the simulation by one tick. A confirmed purchase
// waiting since the last tick is folded into this tick's input frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.pendingRestore {
		m.inputFrame.Set(core.ActionRestore)
		m.pendingRestore = false
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	var cmds []tea.Cmd
	for _, ev := range result.Events {
		if over, ok := ev.(core.GameOverEvent); ok {
			if cmd := m.settleSession(over); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	m.inputFrame.Clear()

	cmds = append(cmds, tickCmd(m.config.TickRate))
	return m, tea.Batch(cmds...)
}

// settleSession persists a finished session and opens the submission
// flow when a wallet session exists.
func (m *Model) settleSession(over core.GameOverEvent) tea.Cmd {
	if m.sessionSaved {
		return nil
	}
	m.sessionSaved = true

	if m.store != nil {
		id, err := m.store.SaveSession(storage.SessionRecord{
			Score:     over.Score,
			Outcome:   over.Outcome.String(),
			Resource:  over.Resource,
			Augmented: over.Augmented,
			ElapsedMs: over.ElapsedMs,
		})
		if err != nil {
			m.logger.Warn("could not save session", "error", err)
		} else {
			m.savedSessionID = id
		}
	}

	if m.board != nil && m.wallet != nil && over.Score > 0 {
		m.phase = phaseNameEntry
		m.nameInput.SetValue("")
		return m.nameInput.Focus()
	}

	if over.Outcome == core.OutcomeWin {
		m.status = fmt.Sprintf("Castle defended! Score %d. r restarts.", over.Score)
	} else {
		m.status = fmt.Sprintf("Castle fell. Score %d. r restarts.", over.Score)
	}
	return nil
}

// restartSession starts a fresh session with a fresh seed and drops all
// state belonging to the old one. Async results still in flight carry
// the old generation and will be discarded on arrival.
func (m *Model) restartSession() {
	m.sessionGen++
	m.config.Seed = time.Now().UnixNano()
	m.game.Reset(m.config)
	m.gameState = m.game.State()
	m.inputFrame.Clear()
	m.pendingRestore = false
	m.purchaseBusy = false
	m.sessionSaved = false
	m.submitted = false
	m.savedSessionID = 0
	m.phase = phasePlaying
	m.status = "New session."
}

// startConnect launches the wallet connect flow.
func (m Model) startConnect() (tea.Model, tea.Cmd) {
	if m.bridge == nil {
		m.status = "Offline mode: no chain configured."
		return m, nil
	}
	bridge := m.bridge
	m.status = "Connecting wallet..."
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chainCallTimeout)
		defer cancel()
		session, err := bridge.Connect(ctx)
		return walletMsg{session: session, err: err}
	}
}

func (m Model) handleWallet(msg walletMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = chainErrorStatus("Connect", msg.err)
		return m, nil
	}
	session := msg.session
	m.wallet = &session
	m.status = fmt.Sprintf("Wallet %s connected.", session.Account.Short())
	return m, m.refreshQuote()
}

// refreshQuote fetches current purchase prices in the background.
func (m Model) refreshQuote() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	bridge := m.bridge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chainCallTimeout)
		defer cancel()
		quote, err := bridge.QuotePrices(ctx)
		return quoteMsg{quote: quote, err: err}
	}
}

// startPurchase launches an asynchronous health purchase. The tick loop
// keeps running; the confirmed restore lands on a later tick.
func (m Model) startPurchase(currency chain.Currency) (tea.Model, tea.Cmd) {
	switch {
	case m.bridge == nil:
		m.status = "Offline mode: purchases unavailable."
		return m, nil
	case m.wallet == nil:
		m.status = "Connect a wallet first (c)."
		return m, nil
	case m.gameState.GameOver:
		m.status = "Session is over."
		return m, nil
	case m.purchaseBusy:
		m.status = "A purchase is already pending."
		return m, nil
	}

	m.purchaseBusy = true
	m.status = fmt.Sprintf("Buying health (%s)... the castle fights on.", currency)

	bridge := m.bridge
	gen := m.sessionGen
	return m, func() tea.Msg {
		// The confirmation wait dominates; give it the bridge's window
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		result, err := bridge.Purchase(ctx, currency)
		return purchaseMsg{gen: gen, result: result, err: err}
	}
}

func (m Model) handlePurchase(msg purchaseMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.sessionGen {
		// The session this purchase was meant for is gone
		m.logger.Info("discarding purchase result from replaced session")
		return m, nil
	}
	m.purchaseBusy = false

	if msg.err != nil {
		m.status = chainErrorStatus("Purchase", msg.err)
		return m, nil
	}

	if m.gameState.GameOver {
		m.status = "Purchase confirmed, but the session already ended."
		return m, nil
	}

	m.pendingRestore = true
	m.status = fmt.Sprintf("Health restored! tx %s", msg.result.TxHash.Hex()[:10]+"…")
	return m, nil
}

// startApprove launches the token allowance grant.
func (m Model) startApprove() (tea.Model, tea.Cmd) {
	switch {
	case m.bridge == nil:
		m.status = "Offline mode: no chain configured."
		return m, nil
	case m.wallet == nil:
		m.status = "Connect a wallet first (c)."
		return m, nil
	}

	m.status = "Granting allowance..."
	bridge := m.bridge
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		hash, err := bridge.ApproveAllowance(ctx, nil)
		return approveMsg{hash: hash, err: err}
	}
}

// handleNameEntryKey drives the display-name prompt after a session.
func (m Model) handleNameEntryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := m.nameInput.Value()
		if name == "" {
			name = "anonymous"
		}
		m.phase = phasePlaying
		if m.board == nil || m.submitted {
			return m, nil
		}
		m.submitted = true
		m.status = "Submitting result..."
		return m, m.submitResult(name)
	case "esc":
		m.phase = phasePlaying
		m.status = "Result kept local. r restarts."
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// submitResult sends the finished session to the leaderboard. The
// caller owns the exactly-once guard.
func (m Model) submitResult(name string) tea.Cmd {
	board := m.board
	gen := m.sessionGen
	score := int64(m.gameState.Score)
	augmented := m.gameState.Augmented
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		hash, err := board.SubmitResult(ctx, name, score, augmented)
		return submitMsg{gen: gen, hash: hash, err: err}
	}
}

func (m Model) handleSubmit(msg submitMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.sessionGen {
		return m, nil
	}
	if msg.err != nil {
		m.submitted = false // allow retrying through the board view
		m.status = chainErrorStatus("Submit", msg.err)
		return m, nil
	}

	if m.store != nil && m.savedSessionID != 0 {
		if err := m.store.SetSessionTxRef(m.savedSessionID, msg.hash.Hex()); err != nil {
			m.logger.Warn("could not record tx ref", "error", err)
		}
	}
	if m.bridge != nil {
		m.logger.Info("result submitted", "explorer", m.bridge.ExplorerTxURL(msg.hash))
	}

	m.status = "Result on the board! l shows standings."
	return m.openBoard(m.boardScope)
}

// openBoard loads the leaderboard for a scope and switches to the
// board view. Chain failures fall back to the local cache.
func (m Model) openBoard(scope ledger.Scope) (tea.Model, tea.Cmd) {
	if m.board == nil && m.store == nil {
		m.status = "No leaderboard source available."
		return m, nil
	}

	m.phase = phaseBoard
	m.boardScope = scope
	m.boardNote = "Loading..."

	board := m.board
	store := m.store
	return m, func() tea.Msg {
		var entries []ledger.Entry
		if board != nil {
			ctx, cancel := context.WithTimeout(context.Background(), chainCallTimeout)
			defer cancel()
			entries = board.QueryLeaderboard(ctx, scope, 10)
		}

		if len(entries) > 0 {
			if store != nil {
				cacheEntries := make([]storage.CachedEntry, len(entries))
				for i, e := range entries {
					cacheEntries[i] = storage.CachedEntry{
						Rank:      e.Rank,
						Player:    e.Player.Hex(),
						Name:      e.Name,
						Score:     e.Score,
						Augmented: e.Augmented,
					}
				}
				// Best-effort cache refresh for the next offline run
				_ = store.CacheBoard(scope.String(), cacheEntries) //nolint:errcheck
			}
			return boardMsg{scope: scope, entries: entries}
		}

		// Chain empty or unreachable: serve the cached board
		if store != nil {
			cached, cachedAt, err := store.CachedBoard(scope.String())
			if err == nil && len(cached) > 0 {
				entries = make([]ledger.Entry, len(cached))
				for i, c := range cached {
					entries[i] = ledger.Entry{
						Rank:      c.Rank,
						Name:      c.Name,
						Score:     c.Score,
						Augmented: c.Augmented,
					}
				}
				return boardMsg{scope: scope, entries: entries, fromCache: true, cachedAt: cachedAt}
			}
		}
		return boardMsg{scope: scope, entries: []ledger.Entry{}}
	}
}

func (m Model) handleBoard(msg boardMsg) (tea.Model, tea.Cmd) {
	if msg.scope != m.boardScope {
		return m, nil
	}
	m.boardTable = newBoardTable(msg.entries, m.screen.Width())
	switch {
	case msg.fromCache:
		m.boardNote = fmt.Sprintf("Cached %s (chain unreachable)", msg.cachedAt.Format("2006-01-02 15:04"))
	case len(msg.entries) == 0:
		m.boardNote = "No entries yet."
	default:
		m.boardNote = ""
	}
	return m, nil
}

// handleBoardKey drives the leaderboard view.
func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b", "l":
		m.phase = phasePlaying
		return m, nil
	case "tab":
		next := ledger.ScopeDaily
		if m.boardScope == ledger.ScopeDaily {
			next = ledger.ScopeAllTime
		}
		return m.openBoard(next)
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.boardTable, cmd = m.boardTable.Update(msg)
	return m, cmd
}

// listenNotices waits for the next ledger notice.
func (m Model) listenNotices() tea.Cmd {
	if m.board == nil {
		return nil
	}
	ch := m.board.Notices()
	return func() tea.Msg {
		notice, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(notice)
	}
}

// chainErrorStatus maps bridge sentinels onto short user guidance.
func chainErrorStatus(what string, err error) string {
	switch {
	case errors.Is(err, chain.ErrNoProvider):
		return "No wallet provider available."
	case errors.Is(err, chain.ErrNotConnected):
		return "Connect a wallet first (c)."
	case errors.Is(err, chain.ErrUserRejected):
		return what + " rejected in wallet."
	case errors.Is(err, chain.ErrInsufficientBalance):
		return "Insufficient funds for this purchase."
	case errors.Is(err, chain.ErrAllowanceRequired):
		return "Token allowance needed: press g to grant it."
	case errors.Is(err, chain.ErrConfirmationTimeout):
		return what + " not confirmed in time; check the explorer."
	case errors.Is(err, chain.ErrSubmissionFailed):
		return what + " failed on chain."
	default:
		return fmt.Sprintf("%s failed: %v", what, err)
	}
}

// Run starts the Bubble Tea program with the given model.
func Run(game registry.Game, store *storage.Store, bridge *chain.Bridge,
	board *ledger.Client, cfg core.RuntimeConfig, logger *log.Logger) error {
	model := NewModel(game, store, bridge, board, cfg, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Pointer aiming
	)

	_, err := p.Run()
	return err
}
