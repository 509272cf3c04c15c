package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vovakirdan/castlechain/internal/chain/abi"
)

// DeploymentRecord is the per-network JSON artifact written when the
// contracts are deployed. The bridge reads it to resolve contract
// addresses that the YAML config leaves empty.
type DeploymentRecord struct {
	Network   string            `json:"network"`
	ChainID   uint64            `json:"chainId"`
	Deployer  string            `json:"deployer"`
	Contracts map[string]string `json:"contracts"`
	TxHashes  map[string]string `json:"txHashes"`
	Timestamp time.Time         `json:"timestamp"`
}

// Contract names used in deployment records.
const (
	ContractEconomy     = "economy"
	ContractLeaderboard = "leaderboard"
	ContractStableToken = "stableToken"
)

// LoadDeployment reads the deployment record for a network from dir.
// The file is named <network>.json.
func LoadDeployment(dir, network string) (DeploymentRecord, error) {
	var rec DeploymentRecord
	path := filepath.Join(dir, network+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("failed to read deployment record %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to parse deployment record %s: %w", path, err)
	}
	return rec, nil
}

// Address resolves a named contract address from the record.
func (r DeploymentRecord) Address(name string) (abi.Address, error) {
	raw, ok := r.Contracts[name]
	if !ok || raw == "" {
		return abi.Address{}, fmt.Errorf("%w: %s missing from %s deployment",
			ErrContractUnavailable, name, r.Network)
	}
	addr, err := abi.ParseAddress(raw)
	if err != nil {
		return abi.Address{}, fmt.Errorf("%w: %s: %v", ErrContractUnavailable, name, err)
	}
	return addr, nil
}

// SaveDeployment writes a deployment record to dir as <network>.json.
func SaveDeployment(dir string, rec DeploymentRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create deployments dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deployment record: %w", err)
	}
	path := filepath.Join(dir, rec.Network+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write deployment record: %w", err)
	}
	return nil
}
