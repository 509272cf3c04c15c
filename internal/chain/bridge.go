package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/castlechain/internal/chain/abi"
	"github.com/vovakirdan/castlechain/internal/chain/jsonrpc"
	"github.com/vovakirdan/castlechain/internal/config"
)

// Currency selects which of the two configured currencies pays for a
// health purchase.
type Currency int

const (
	CurrencyNative Currency = iota // Chain-native coin, paid as tx value
	CurrencyStable                 // ERC-20 stable token, needs allowance
)

// String returns the currency name for logs.
func (c Currency) String() string {
	if c == CurrencyStable {
		return "stable"
	}
	return "native"
}

// WalletSession is the singleton connected-wallet state. Reconnecting
// replaces it wholesale; there is never more than one live session.
type WalletSession struct {
	Account     abi.Address
	ChainID     uint64
	ConnectedAt time.Time
}

// Quote is a point-in-time price for one health refill in both
// currencies, in each currency's base units.
type Quote struct {
	NativeUnits    *big.Int
	StableUnits    *big.Int
	NativeDecimals int
	StableDecimals int
	NativeSymbol   string
	StableSymbol   string
}

// NativeDisplay returns the native price as a human-scale amount.
func (q Quote) NativeDisplay() float64 {
	return displayUnits(q.NativeUnits, q.NativeDecimals)
}

// StableDisplay returns the stable price as a human-scale amount.
func (q Quote) StableDisplay() float64 {
	return displayUnits(q.StableUnits, q.StableDecimals)
}

func displayUnits(units *big.Int, decimals int) float64 {
	if units == nil {
		return 0
	}
	f := new(big.Float).SetInt(units)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	out, _ := new(big.Float).Quo(f, scale).Float64()
	return out
}

// PurchaseResult reports a confirmed health purchase.
type PurchaseResult struct {
	TxHash   abi.Hash
	Currency Currency
	Paid     *big.Int // Base units of the chosen currency
}

// Balances holds an account's funds in both currencies, in base units.
type Balances struct {
	Native *big.Int
	Stable *big.Int
}

// Bridge connects the platform to the ledger: wallet sessions, price
// quotes, purchases, and confirmation tracking. Safe for concurrent use.
type Bridge struct {
	cfg      config.ChainConfig
	provider Provider
	node     *jsonrpc.Client
	logger   *log.Logger

	economy     abi.Address
	leaderboard abi.Address
	stableToken abi.Address

	mu      sync.Mutex
	session *WalletSession
}

// NewBridge creates a bridge from config. Contract addresses come from
// the config directly or from the network's deployment record; a nil
// provider is allowed and reported as ErrNoProvider on first use.
func NewBridge(cfg config.ChainConfig, provider Provider, logger *log.Logger) (*Bridge, error) {
	if logger == nil {
		logger = log.Default()
	}

	b := &Bridge{
		cfg:      cfg,
		provider: provider,
		node:     jsonrpc.New(cfg.RPCURL),
		logger:   logger,
	}

	var err error
	b.economy, b.leaderboard, b.stableToken, err = resolveContracts(cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// resolveContracts fills contract addresses from the YAML config first,
// then from the deployment record for anything left empty.
func resolveContracts(cfg config.ChainConfig) (economy, leaderboard, stable abi.Address, err error) {
	var rec *DeploymentRecord
	fromRecord := func(name string) (abi.Address, error) {
		if rec == nil {
			loaded, loadErr := LoadDeployment(cfg.DeploymentsDir, cfg.Network)
			if loadErr != nil {
				return abi.Address{}, fmt.Errorf("%w: %v", ErrContractUnavailable, loadErr)
			}
			rec = &loaded
		}
		return rec.Address(name)
	}
	resolve := func(configured, name string) (abi.Address, error) {
		if configured != "" {
			return abi.ParseAddress(configured)
		}
		return fromRecord(name)
	}

	if economy, err = resolve(cfg.Contracts.Economy, ContractEconomy); err != nil {
		return
	}
	if leaderboard, err = resolve(cfg.Contracts.Leaderboard, ContractLeaderboard); err != nil {
		return
	}
	stable, err = resolve(cfg.Contracts.StableToken, ContractStableToken)
	return
}

// LeaderboardAddress returns the resolved leaderboard contract address.
func (b *Bridge) LeaderboardAddress() abi.Address {
	return b.leaderboard
}

// ExplorerTxURL returns a block explorer link for a transaction.
func (b *Bridge) ExplorerTxURL(hash abi.Hash) string {
	if b.cfg.ExplorerURL == "" {
		return hash.Hex()
	}
	return strings.TrimSuffix(b.cfg.ExplorerURL, "/") + "/tx/" + hash.Hex()
}

// Connect establishes the wallet session: request accounts, then make
// sure the wallet is on the configured chain, adding it first if the
// wallet does not know it. Replaces any previous session.
func (b *Bridge) Connect(ctx context.Context) (WalletSession, error) {
	if b.provider == nil {
		return WalletSession{}, ErrNoProvider
	}

	accounts, err := b.provider.RequestAccounts(ctx)
	if err != nil {
		return WalletSession{}, err
	}
	if len(accounts) == 0 {
		return WalletSession{}, fmt.Errorf("%w: no accounts exposed", ErrProvider)
	}

	if err := b.ensureChain(ctx); err != nil {
		return WalletSession{}, err
	}

	session := WalletSession{
		Account:     accounts[0],
		ChainID:     b.cfg.ChainID,
		ConnectedAt: time.Now(),
	}

	b.mu.Lock()
	b.session = &session
	b.mu.Unlock()

	b.logger.Info("wallet connected",
		"account", session.Account.Short(), "chain", b.cfg.ChainName)
	return session, nil
}

// ensureChain switches the wallet to the configured chain. An unknown
// chain is added first, then switched to.
func (b *Bridge) ensureChain(ctx context.Context) error {
	current, err := b.provider.ChainID(ctx)
	if err == nil && current == b.cfg.ChainID {
		return nil
	}

	err = b.provider.SwitchChain(ctx, b.cfg.ChainID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errUnknownChain) {
		return err
	}

	b.logger.Info("adding chain to wallet", "chain", b.cfg.ChainName)
	if err := b.provider.AddChain(ctx, ChainParams{
		ChainID:  b.cfg.ChainID,
		Name:     b.cfg.ChainName,
		RPCURL:   b.cfg.RPCURL,
		Symbol:   b.cfg.Native.Symbol,
		Decimals: b.cfg.Native.Decimals,
		Explorer: b.cfg.ExplorerURL,
	}); err != nil {
		return err
	}
	return b.provider.SwitchChain(ctx, b.cfg.ChainID)
}

// Session returns the current wallet session, if any.
func (b *Bridge) Session() (WalletSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return WalletSession{}, false
	}
	return *b.session, true
}

// Disconnect drops the wallet session.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = nil
}

// QuotePrices reads the current refill price in both currencies from
// the economy contract.
func (b *Bridge) QuotePrices(ctx context.Context) (Quote, error) {
	native, err := b.callUint(ctx, b.economy, "priceInNative()")
	if err != nil {
		return Quote{}, fmt.Errorf("native price: %w", err)
	}
	stable, err := b.callUint(ctx, b.economy, "priceInStable()")
	if err != nil {
		return Quote{}, fmt.Errorf("stable price: %w", err)
	}
	return Quote{
		NativeUnits:    native,
		StableUnits:    stable,
		NativeDecimals: b.cfg.Native.Decimals,
		StableDecimals: b.cfg.Stable.Decimals,
		NativeSymbol:   b.cfg.Native.Symbol,
		StableSymbol:   b.cfg.Stable.Symbol,
	}, nil
}

// AccountBalances reads the session account's funds in both currencies.
func (b *Bridge) AccountBalances(ctx context.Context) (Balances, error) {
	session, ok := b.Session()
	if !ok {
		return Balances{}, ErrNotConnected
	}

	var rawNative string
	err := b.node.Call(ctx, "eth_getBalance", []any{session.Account.Hex(), "latest"}, &rawNative)
	if err != nil {
		return Balances{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	native, ok2 := new(big.Int).SetString(strings.TrimPrefix(rawNative, "0x"), 16)
	if !ok2 {
		return Balances{}, fmt.Errorf("%w: bad balance %q", ErrProvider, rawNative)
	}

	stable, err := b.callUint(ctx, b.stableToken, "balanceOf(address)", session.Account)
	if err != nil {
		return Balances{}, fmt.Errorf("stable balance: %w", err)
	}

	return Balances{Native: native, Stable: stable}, nil
}

// Purchase buys one health refill in the chosen currency and waits for
// confirmation. The price is re-quoted immediately before submission;
// funds and, for token purchases, the allowance are checked against
// that fresh quote so the wallet prompt is not wasted on a doomed
// transaction.
func (b *Bridge) Purchase(ctx context.Context, currency Currency) (PurchaseResult, error) {
	if b.provider == nil {
		return PurchaseResult{}, ErrNoProvider
	}
	session, ok := b.Session()
	if !ok {
		return PurchaseResult{}, ErrNotConnected
	}

	quote, err := b.QuotePrices(ctx)
	if err != nil {
		return PurchaseResult{}, err
	}

	balances, err := b.AccountBalances(ctx)
	if err != nil {
		return PurchaseResult{}, err
	}

	var tx TxRequest
	var price *big.Int

	switch currency {
	case CurrencyNative:
		price = quote.NativeUnits
		if balances.Native.Cmp(price) < 0 {
			return PurchaseResult{}, fmt.Errorf("%w: need %s %s units",
				ErrInsufficientBalance, price, b.cfg.Native.Symbol)
		}
		data, packErr := abi.Pack("buyHealthNative()")
		if packErr != nil {
			return PurchaseResult{}, packErr
		}
		tx = TxRequest{From: session.Account, To: b.economy, Value: price, Data: data}

	case CurrencyStable:
		price = quote.StableUnits
		if balances.Stable.Cmp(price) < 0 {
			return PurchaseResult{}, fmt.Errorf("%w: need %s %s units",
				ErrInsufficientBalance, price, b.cfg.Stable.Symbol)
		}
		allowance, allowErr := b.callUint(ctx, b.stableToken,
			"allowance(address,address)", session.Account, b.economy)
		if allowErr != nil {
			return PurchaseResult{}, fmt.Errorf("allowance: %w", allowErr)
		}
		if allowance.Cmp(price) < 0 {
			return PurchaseResult{}, fmt.Errorf("%w: allowance %s below price %s",
				ErrAllowanceRequired, allowance, price)
		}
		data, packErr := abi.Pack("buyHealthStable()")
		if packErr != nil {
			return PurchaseResult{}, packErr
		}
		tx = TxRequest{From: session.Account, To: b.economy, Data: data}

	default:
		return PurchaseResult{}, fmt.Errorf("unknown currency %d", currency)
	}

	hash, err := b.provider.SendTransaction(ctx, tx)
	if err != nil {
		return PurchaseResult{}, err
	}
	b.logger.Info("purchase submitted", "currency", currency, "tx", hash.Hex())

	if err := b.WaitConfirmed(ctx, hash); err != nil {
		return PurchaseResult{}, err
	}

	b.logger.Info("purchase confirmed", "currency", currency, "tx", hash.Hex())
	return PurchaseResult{TxHash: hash, Currency: currency, Paid: price}, nil
}

// ApproveAllowance grants the economy contract a token allowance and
// waits for confirmation. A nil amount grants the conventional
// unlimited allowance.
func (b *Bridge) ApproveAllowance(ctx context.Context, amount *big.Int) (abi.Hash, error) {
	if b.provider == nil {
		return abi.Hash{}, ErrNoProvider
	}
	session, ok := b.Session()
	if !ok {
		return abi.Hash{}, ErrNotConnected
	}
	if amount == nil {
		amount = abi.MaxUint256()
	}

	data, err := abi.Pack("approve(address,uint256)", b.economy, amount)
	if err != nil {
		return abi.Hash{}, err
	}

	hash, err := b.provider.SendTransaction(ctx, TxRequest{
		From: session.Account,
		To:   b.stableToken,
		Data: data,
	})
	if err != nil {
		return abi.Hash{}, err
	}
	b.logger.Info("approval submitted", "tx", hash.Hex())

	if err := b.WaitConfirmed(ctx, hash); err != nil {
		return abi.Hash{}, err
	}
	return hash, nil
}

// receipt is the slice of eth_getTransactionReceipt we care about.
type receipt struct {
	Status      string `json:"status"`
	BlockNumber string `json:"blockNumber"`
}

// WaitConfirmed polls for a transaction receipt until it lands, the
// confirmation window closes, or the context is cancelled. A mined but
// reverted transaction is reported as ErrSubmissionFailed.
func (b *Bridge) WaitConfirmed(ctx context.Context, hash abi.Hash) error {
	poll := time.Duration(b.cfg.Confirm.PollMs) * time.Millisecond
	if poll <= 0 {
		poll = 1500 * time.Millisecond
	}
	window := time.Duration(b.cfg.Confirm.TimeoutMs) * time.Millisecond
	if window <= 0 {
		window = 2 * time.Minute
	}
	deadline := time.NewTimer(window)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		var r receipt
		err := b.node.Call(ctx, "eth_getTransactionReceipt", []any{hash.Hex()}, &r)
		switch {
		case err == nil:
			if r.Status == "0x0" {
				return fmt.Errorf("%w: tx %s reverted", ErrSubmissionFailed, hash.Hex())
			}
			return nil
		case errors.Is(err, jsonrpc.ErrNullResult):
			// Not mined yet, keep polling
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			b.logger.Debug("receipt poll failed", "tx", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: tx %s", ErrConfirmationTimeout, hash.Hex())
		case <-ticker.C:
		}
	}
}

// Call performs a read-only contract call and returns the raw return
// data. Used by the leaderboard client for its queries.
func (b *Bridge) Call(ctx context.Context, to abi.Address, data []byte) ([]byte, error) {
	params := []any{
		map[string]string{"to": to.Hex(), "data": "0x" + hex.EncodeToString(data)},
		"latest",
	}
	var raw string
	if err := b.node.Call(ctx, "eth_call", params, &raw); err != nil {
		return nil, err
	}
	return decodeHexData(raw)
}

// Transact signs and sends a state-changing contract call through the
// wallet and waits for confirmation.
func (b *Bridge) Transact(ctx context.Context, to abi.Address, data []byte) (abi.Hash, error) {
	if b.provider == nil {
		return abi.Hash{}, ErrNoProvider
	}
	session, ok := b.Session()
	if !ok {
		return abi.Hash{}, ErrNotConnected
	}

	hash, err := b.provider.SendTransaction(ctx, TxRequest{
		From: session.Account,
		To:   to,
		Data: data,
	})
	if err != nil {
		return abi.Hash{}, err
	}
	if err := b.WaitConfirmed(ctx, hash); err != nil {
		return abi.Hash{}, err
	}
	return hash, nil
}

// callUint performs an eth_call returning a single uint256.
func (b *Bridge) callUint(ctx context.Context, to abi.Address, signature string, args ...any) (*big.Int, error) {
	if to.IsZero() {
		return nil, ErrContractUnavailable
	}
	data, err := abi.Pack(signature, args...)
	if err != nil {
		return nil, err
	}
	out, err := b.Call(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return abi.NewReader(out).Uint(0)
}

// decodeHexData parses 0x-prefixed hex byte data.
func decodeHexData(s string) ([]byte, error) {
	raw := strings.TrimPrefix(s, "0x")
	out, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("bad hex data %q: %w", s, err)
	}
	return out, nil
}
