// Package config provides YAML-based configuration loading for the
// simulation, the chain bindings, and difficulty presets.
package config

// CastleConfig contains all configuration for the castle defense game.
type CastleConfig struct {
	World       WorldConfig      `yaml:"world"`
	Player      PlayerConfig     `yaml:"player"`
	Hostiles    HostileConfig    `yaml:"hostiles"`
	Projectiles ProjectileConfig `yaml:"projectiles"`
	Spawner     SpawnerConfig    `yaml:"spawner"`
	Session     SessionConfig    `yaml:"session"`
}

// WorldConfig defines the continuous world the simulation runs in.
// The defended boundary is the west edge hostiles march toward.
type WorldConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	BoundaryX float64 `yaml:"boundary_x"`
	SpawnX    float64 `yaml:"spawn_x"`
	SpawnMinY float64 `yaml:"spawn_min_y"`
	SpawnMaxY float64 `yaml:"spawn_max_y"`
}

// PlayerConfig defines player parameters.
type PlayerConfig struct {
	Speed       float64 `yaml:"speed"` // World units per tick
	StartX      float64 `yaml:"start_x"`
	StartY      float64 `yaml:"start_y"`
	MaxResource int     `yaml:"max_resource"`
	HalfW       float64 `yaml:"half_w"`
	HalfH       float64 `yaml:"half_h"`
}

// HostileConfig defines hostile parameters. Damage is sampled once per
// hostile at spawn from [damage_min, damage_max].
type HostileConfig struct {
	Speed     float64 `yaml:"speed"`
	DamageMin int     `yaml:"damage_min"`
	DamageMax int     `yaml:"damage_max"`
	HalfW     float64 `yaml:"half_w"`
	HalfH     float64 `yaml:"half_h"`
}

// ProjectileConfig defines projectile parameters.
type ProjectileConfig struct {
	Speed float64 `yaml:"speed"`
	HalfW float64 `yaml:"half_w"`
	HalfH float64 `yaml:"half_h"`
}

// SpawnerConfig defines the spawn scheduler. All values are in ticks.
// The inter-spawn delay shrinks by twice the acceleration accumulator on
// every spawn, never below floor_delay; the accumulator grows by
// accel_step up to accel_max.
type SpawnerConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	FloorDelay   int `yaml:"floor_delay"`
	AccelStep    int `yaml:"accel_step"`
	AccelMax     int `yaml:"accel_max"`
}

// SessionConfig defines session-level parameters.
type SessionConfig struct {
	DurationMs int64 `yaml:"duration_ms"`
	KillReward int   `yaml:"kill_reward"`
}

// ChainConfig contains everything needed to reach the external ledger:
// RPC endpoints, chain identity, currency metadata, and contract
// addresses (directly or via a deployment record).
type ChainConfig struct {
	Network        string            `yaml:"network"`
	ChainID        uint64            `yaml:"chain_id"`
	ChainName      string            `yaml:"chain_name"`
	RPCURL         string            `yaml:"rpc_url"`
	WalletRPCURL   string            `yaml:"wallet_rpc_url"`
	ExplorerURL    string            `yaml:"explorer_url"`
	Native         CurrencyConfig    `yaml:"native"`
	Stable         CurrencyConfig    `yaml:"stable"`
	Contracts      ContractAddresses `yaml:"contracts"`
	DeploymentsDir string            `yaml:"deployments_dir"`
	Confirm        ConfirmConfig     `yaml:"confirm"`
}

// CurrencyConfig describes one of the two purchase currencies.
type CurrencyConfig struct {
	Symbol   string `yaml:"symbol"`
	Decimals int    `yaml:"decimals"`
}

// ContractAddresses holds the deployed contract addresses.
// Empty fields are resolved from the deployment record for the network.
type ContractAddresses struct {
	Economy     string `yaml:"economy"`
	Leaderboard string `yaml:"leaderboard"`
	StableToken string `yaml:"stable_token"`
}

// ConfirmConfig controls confirmation waiting for submitted transactions.
type ConfirmConfig struct {
	PollMs    int `yaml:"poll_ms"`
	TimeoutMs int `yaml:"timeout_ms"`
}
