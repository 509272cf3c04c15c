// Package ledger is the client for the on-chain leaderboard: result
// submission and ranked queries. Query failures never break gameplay;
// they degrade to an empty board plus a notice the platform can show.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/castlechain/internal/chain/abi"
)

// Scope selects which ranking window a query covers.
type Scope uint8

const (
	ScopeAllTime Scope = iota
	ScopeDaily
)

// String returns the scope name used in the CLI and views.
func (s Scope) String() string {
	if s == ScopeDaily {
		return "daily"
	}
	return "all-time"
}

// ParseScope maps a CLI string to a scope. Unknown values mean all-time.
func ParseScope(s string) Scope {
	if s == "daily" {
		return ScopeDaily
	}
	return ScopeAllTime
}

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank        int
	Player      abi.Address
	Name        string
	Score       int64
	Augmented   bool
	SubmittedAt time.Time
}

// Stats summarizes one player's submission history.
type Stats struct {
	Submissions int64
	BestScore   int64
	LastPlayed  time.Time
}

// Notice is a non-fatal condition surfaced to the user, such as an
// unreachable leaderboard.
type Notice struct {
	Time    time.Time
	Message string
}

// contractCaller is the slice of the chain bridge the client needs.
type contractCaller interface {
	Call(ctx context.Context, to abi.Address, data []byte) ([]byte, error)
	Transact(ctx context.Context, to abi.Address, data []byte) (abi.Hash, error)
	LeaderboardAddress() abi.Address
}

// Client talks to the leaderboard contract. Safe for concurrent use.
type Client struct {
	caller  contractCaller
	logger  *log.Logger
	notices chan Notice
}

// NewClient creates a leaderboard client on top of the chain bridge.
func NewClient(caller contractCaller, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		caller:  caller,
		logger:  logger,
		notices: make(chan Notice, 16),
	}
}

// Notices delivers non-fatal conditions as they occur. The channel is
// buffered; when nobody listens, notices are dropped rather than
// blocking a query.
func (c *Client) Notices() <-chan Notice {
	return c.notices
}

// SubmitResult records a finished session on the leaderboard. The name
// is truncated to the contract's 32-byte display limit.
func (c *Client) SubmitResult(ctx context.Context, name string, score int64, augmented bool) (abi.Hash, error) {
	if len(name) > abi.WordSize {
		name = name[:abi.WordSize]
	}
	nameWord, err := abi.StringToBytes32(name)
	if err != nil {
		return abi.Hash{}, err
	}
	if score < 0 {
		return abi.Hash{}, fmt.Errorf("negative score %d", score)
	}

	data, err := abi.Pack("submitResult(bytes32,uint256,bool)",
		nameWord, big.NewInt(score), augmented)
	if err != nil {
		return abi.Hash{}, err
	}

	hash, err := c.caller.Transact(ctx, c.caller.LeaderboardAddress(), data)
	if err != nil {
		return abi.Hash{}, fmt.Errorf("failed to submit result: %w", err)
	}

	c.logger.Info("result submitted",
		"name", name, "score", score, "augmented", augmented, "tx", hash.Hex())
	return hash, nil
}

// QueryLeaderboard returns the top entries for a scope, best first.
// It never fails: any error yields an empty board, a warning in the
// log, and a notice on the channel.
func (c *Client) QueryLeaderboard(ctx context.Context, scope Scope, limit int) []Entry {
	if limit <= 0 {
		limit = 10
	}

	entries, err := c.queryTop(ctx, scope, limit)
	if err != nil {
		c.logger.Warn("leaderboard unavailable", "scope", scope, "error", err)
		c.notify(fmt.Sprintf("Leaderboard unavailable (%s)", scope))
		return []Entry{}
	}
	return entries
}

func (c *Client) queryTop(ctx context.Context, scope Scope, limit int) ([]Entry, error) {
	data, err := abi.Pack("topEntries(uint8,uint256)", uint64(scope), big.NewInt(int64(limit)))
	if err != nil {
		return nil, err
	}

	out, err := c.caller.Call(ctx, c.caller.LeaderboardAddress(), data)
	if err != nil {
		return nil, err
	}

	// Each row is a static 5-word tuple:
	// (address player, bytes32 name, uint256 score, bool augmented, uint256 timestamp)
	rows, err := abi.NewReader(out).Tuples(0, 5)
	if err != nil {
		return nil, fmt.Errorf("malformed leaderboard response: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entry, decodeErr := decodeEntry(row)
		if decodeErr != nil {
			return nil, fmt.Errorf("row %d: %w", i, decodeErr)
		}
		entry.Rank = i + 1
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry(row *abi.Reader) (Entry, error) {
	player, err := row.Address(0)
	if err != nil {
		return Entry{}, err
	}
	name, err := row.Bytes32String(1)
	if err != nil {
		return Entry{}, err
	}
	score, err := row.Uint64(2)
	if err != nil {
		return Entry{}, err
	}
	augmented, err := row.Bool(3)
	if err != nil {
		return Entry{}, err
	}
	ts, err := row.Uint64(4)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Player:      player,
		Name:        name,
		Score:       int64(score), //#nosec G115 -- contract scores fit in int64
		Augmented:   augmented,
		SubmittedAt: time.Unix(int64(ts), 0).UTC(), //#nosec G115
	}, nil
}

// PlayerStats reads a single player's submission history.
func (c *Client) PlayerStats(ctx context.Context, player abi.Address) (Stats, error) {
	data, err := abi.Pack("playerStats(address)", player)
	if err != nil {
		return Stats{}, err
	}

	out, err := c.caller.Call(ctx, c.caller.LeaderboardAddress(), data)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read player stats: %w", err)
	}

	r := abi.NewReader(out)
	submissions, err := r.Uint64(0)
	if err != nil {
		return Stats{}, err
	}
	best, err := r.Uint64(1)
	if err != nil {
		return Stats{}, err
	}
	last, err := r.Uint64(2)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Submissions: int64(submissions), //#nosec G115
		BestScore:   int64(best),        //#nosec G115
		LastPlayed:  time.Unix(int64(last), 0).UTC(), //#nosec G115
	}, nil
}

// notify pushes a notice without ever blocking.
func (c *Client) notify(message string) {
	select {
	case c.notices <- Notice{Time: time.Now(), Message: message}:
	default:
	}
}
