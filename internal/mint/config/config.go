package config

import id "mintgate/pkg/domain"

// Config carries the static bounds of the minting engine. Mutable admission
// state (pool enablement, prices, limits) lives in the stores; these values
// are fixed per deployment.
type Config struct {
	// MaxPoolID bounds the fixed pool id range 1..MaxPoolID.
	MaxPoolID id.PoolID
	// DefaultPerWalletLimit seeds pools created without an explicit limit.
	DefaultPerWalletLimit uint64
	// DefaultCapacity seeds pools created without an explicit capacity.
	DefaultCapacity uint64
}

// DefaultConfig returns the deployment defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxPoolID:             8,
		DefaultPerWalletLimit: 1,
		DefaultCapacity:       1000,
	}
}

// ValidPool reports whether the pool id falls inside the fixed range.
func (c *Config) ValidPool(pool id.PoolID) bool {
	return pool > 0 && pool <= c.MaxPoolID
}
