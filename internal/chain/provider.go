// Package chain bridges the simulation to an external EVM ledger: wallet
// sessions, dual-currency health purchases, and transaction confirmation
// tracking. All operations are asynchronous from the simulation's point
// of view; nothing here ever runs inside a game tick.
package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/vovakirdan/castlechain/internal/chain/abi"
	"github.com/vovakirdan/castlechain/internal/chain/jsonrpc"
)

// TxRequest describes a transaction for the wallet to sign and send.
type TxRequest struct {
	From  abi.Address
	To    abi.Address
	Value *big.Int // nil means zero
	Data  []byte
}

// ChainParams describes a chain for wallet_addEthereumChain.
type ChainParams struct {
	ChainID  uint64
	Name     string
	RPCURL   string
	Symbol   string
	Decimals int
	Explorer string
}

// Provider is the wallet side of the bridge: account access, chain
// switching, and transaction signing. A nil provider means no wallet is
// installed, which the bridge reports as ErrNoProvider.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]abi.Address, error)
	ChainID(ctx context.Context) (uint64, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	AddChain(ctx context.Context, params ChainParams) error
	SendTransaction(ctx context.Context, tx TxRequest) (abi.Hash, error)
}

// rpcProvider talks to a wallet that exposes the provider methods over
// plain JSON-RPC, such as a local signer daemon.
type rpcProvider struct {
	rpc *jsonrpc.Client
}

// NewRPCProvider creates a provider bound to a wallet RPC endpoint.
func NewRPCProvider(endpoint string) Provider {
	return &rpcProvider{rpc: jsonrpc.New(endpoint)}
}

func (p *rpcProvider) RequestAccounts(ctx context.Context) ([]abi.Address, error) {
	var raw []string
	if err := p.rpc.Call(ctx, "eth_requestAccounts", nil, &raw); err != nil {
		return nil, classifyProviderError(err)
	}
	accounts := make([]abi.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := abi.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad account %q", ErrProvider, s)
		}
		accounts = append(accounts, addr)
	}
	return accounts, nil
}

func (p *rpcProvider) ChainID(ctx context.Context) (uint64, error) {
	var raw string
	if err := p.rpc.Call(ctx, "eth_chainId", nil, &raw); err != nil {
		return 0, classifyProviderError(err)
	}
	return parseQuantity(raw)
}

func (p *rpcProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	params := []any{map[string]string{"chainId": formatQuantity(chainID)}}
	if err := p.rpc.Call(ctx, "wallet_switchEthereumChain", params, nil); err != nil {
		return classifyProviderError(err)
	}
	return nil
}

func (p *rpcProvider) AddChain(ctx context.Context, params ChainParams) error {
	payload := []any{map[string]any{
		"chainId":   formatQuantity(params.ChainID),
		"chainName": params.Name,
		"rpcUrls":   []string{params.RPCURL},
		"nativeCurrency": map[string]any{
			"symbol":   params.Symbol,
			"decimals": params.Decimals,
		},
		"blockExplorerUrls": []string{params.Explorer},
	}}
	if err := p.rpc.Call(ctx, "wallet_addEthereumChain", payload, nil); err != nil {
		return classifyProviderError(err)
	}
	return nil
}

func (p *rpcProvider) SendTransaction(ctx context.Context, tx TxRequest) (abi.Hash, error) {
	payload := map[string]string{
		"from": tx.From.Hex(),
		"to":   tx.To.Hex(),
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		payload["value"] = "0x" + tx.Value.Text(16)
	}
	if len(tx.Data) > 0 {
		payload["data"] = "0x" + hex.EncodeToString(tx.Data)
	}

	var raw string
	if err := p.rpc.Call(ctx, "eth_sendTransaction", []any{payload}, &raw); err != nil {
		return abi.Hash{}, classifyProviderError(err)
	}
	hash, err := abi.ParseHash(raw)
	if err != nil {
		return abi.Hash{}, fmt.Errorf("%w: bad transaction hash %q", ErrProvider, raw)
	}
	return hash, nil
}

// errUnknownChain marks a 4902 response so the bridge can fall back to
// wallet_addEthereumChain.
var errUnknownChain = errors.New("chain not added to wallet")

// classifyProviderError maps well-known provider error codes onto the
// package sentinels, keeping the original error attached.
func classifyProviderError(err error) error {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case jsonrpc.CodeUserRejected:
			return fmt.Errorf("%w: %s", ErrUserRejected, rpcErr.Message)
		case jsonrpc.CodeUnknownChain:
			return fmt.Errorf("%w: %s", errUnknownChain, rpcErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}

// parseQuantity decodes a 0x-prefixed hex quantity.
func parseQuantity(s string) (uint64, error) {
	raw := strings.TrimPrefix(s, "0x")
	if raw == "" {
		return 0, fmt.Errorf("empty quantity %q", s)
	}
	v, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return 0, fmt.Errorf("bad quantity %q", s)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("quantity %q overflows uint64", s)
	}
	return v.Uint64(), nil
}

// formatQuantity encodes a value as a minimal 0x-prefixed hex quantity.
func formatQuantity(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}
