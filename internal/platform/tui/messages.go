package tui

import (
	"time"

	"github.com/vovakirdan/castlechain/internal/chain"
	"github.com/vovakirdan/castlechain/internal/chain/abi"
	"github.com/vovakirdan/castlechain/internal/ledger"
)

// Messages produced by asynchronous chain commands. Every message that
// can change the simulation carries the session generation it was
// started for, so results from a replaced session are discarded instead
// of leaking into the new one.

// walletMsg reports the outcome of a wallet connect.
type walletMsg struct {
	session chain.WalletSession
	err     error
}

// quoteMsg reports a price quote refresh.
type quoteMsg struct {
	quote chain.Quote
	err   error
}

// purchaseMsg reports a finished (confirmed or failed) health purchase.
type purchaseMsg struct {
	gen    int
	result chain.PurchaseResult
	err    error
}

// approveMsg reports a finished allowance grant.
type approveMsg struct {
	hash abi.Hash
	err  error
}

// submitMsg reports a finished result submission.
type submitMsg struct {
	gen  int
	hash abi.Hash
	err  error
}

// boardMsg delivers leaderboard entries, either fresh from the chain or
// from the local cache when the chain is unreachable.
type boardMsg struct {
	scope     ledger.Scope
	entries   []ledger.Entry
	fromCache bool
	cachedAt  time.Time
}

// noticeMsg surfaces a non-fatal ledger condition.
type noticeMsg ledger.Notice
