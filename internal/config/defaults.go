package config

import (
	_ "embed"
)

//go:embed defaults/castle.yaml
var defaultCastleYAML []byte

//go:embed defaults/chain.yaml
var defaultChainYAML []byte

// DefaultCastleConfig returns the default castle defense configuration.
// Constants follow the reference tuning: 90 second sessions, 200 max
// resource, +10 per kill, hostile damage in [4, 8].
func DefaultCastleConfig() CastleConfig {
	return CastleConfig{
		World: WorldConfig{
			Width:     1024,
			Height:    768,
			BoundaryX: 80,
			SpawnX:    800,
			SpawnMinY: 50,
			SpawnMaxY: 600,
		},
		Player: PlayerConfig{
			Speed:       3,
			StartX:      150,
			StartY:      384,
			MaxResource: 200,
			HalfW:       16,
			HalfH:       16,
		},
		Hostiles: HostileConfig{
			Speed:     7,
			DamageMin: 4,
			DamageMax: 8,
			HalfW:     16,
			HalfH:     16,
		},
		Projectiles: ProjectileConfig{
			Speed: 10,
			HalfW: 8,
			HalfH: 2,
		},
		Spawner: SpawnerConfig{
			InitialDelay: 100,
			FloorDelay:   20,
			AccelStep:    2,
			AccelMax:     20,
		},
		Session: SessionConfig{
			DurationMs: 90000,
			KillReward: 10,
		},
	}
}

// DefaultChainConfig returns a chain configuration pointing at the Base
// Sepolia test network, where the reference contracts are deployed.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Network:      "base-sepolia",
		ChainID:      84532,
		ChainName:    "Base Sepolia",
		RPCURL:       "https://sepolia.base.org",
		WalletRPCURL: "",
		ExplorerURL:  "https://sepolia.basescan.org",
		Native: CurrencyConfig{
			Symbol:   "ETH",
			Decimals: 18,
		},
		Stable: CurrencyConfig{
			Symbol:   "USDC",
			Decimals: 6,
		},
		DeploymentsDir: "deployments",
		Confirm: ConfirmConfig{
			PollMs:    1500,
			TimeoutMs: 120000,
		},
	}
}
