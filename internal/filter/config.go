// Package filter evaluates user-configured predicates against normalized
// token records.
package filter

import (
	"errors"
	"fmt"
)

// Default range bounds. A window left at its full default range is
// considered disabled: records missing that field still pass.
const (
	DefaultPairAgeMaxMinutes = 1440
	DefaultMarketCapMax      = 1_000_000_000
	DefaultLiquidityMax      = 10_000_000
	DefaultTop10Max          = 100
)

// Signal is a price-movement threshold: alert when price changes by
// PriceChangePct within IntervalMinutes.
type Signal struct {
	IntervalMinutes int     `yaml:"time_interval_minutes"`
	PriceChangePct  float64 `yaml:"price_change_percent"`
}

// SocialRequirements marks which social links must be present.
type SocialRequirements struct {
	Telegram bool `yaml:"telegram"`
	Twitter  bool `yaml:"twitter"`
	Website  bool `yaml:"website"`
}

// Config is a snapshot of all user filters. Snapshots are replaced
// wholesale and never mutated after installation; readers hold a snapshot
// pointer for the duration of one evaluation.
type Config struct {
	// Network restricts the chain: "all" or a chain name.
	Network string `yaml:"network"`

	PairAgeMinMinutes float64 `yaml:"pair_age_min"`
	PairAgeMaxMinutes float64 `yaml:"pair_age_max"`

	MarketCapMinUSD float64 `yaml:"market_cap_min"`
	MarketCapMaxUSD float64 `yaml:"market_cap_max"`

	LiquidityMinUSD float64 `yaml:"liquidity_min"`
	LiquidityMaxUSD float64 `yaml:"liquidity_max"`

	Top10HoldersMinPct float64 `yaml:"top10_holders_min"`
	Top10HoldersMaxPct float64 `yaml:"top10_holders_max"`

	Socials SocialRequirements `yaml:"social_links"`

	// RequireMintAuthRevoked / RequireFreezeAuthRevoked require the token
	// to have no remaining mint/freeze authority.
	RequireMintAuthRevoked   bool `yaml:"mint_auth_revoked"`
	RequireFreezeAuthRevoked bool `yaml:"freeze_auth_revoked"`

	RequireLPBurned     bool `yaml:"lp_burned"`
	RequireAudited      bool `yaml:"audit"`
	RequireDexPaid      bool `yaml:"dex_paid"`
	RequireBondingCurve bool `yaml:"bonding_curve"`

	Signals []Signal `yaml:"signals"`
}

// Default returns the permissive default configuration: every window at
// its full range, no boolean requirements.
func Default() *Config {
	return &Config{
		Network:            "all",
		PairAgeMinMinutes:  0,
		PairAgeMaxMinutes:  DefaultPairAgeMaxMinutes,
		MarketCapMinUSD:    0,
		MarketCapMaxUSD:    DefaultMarketCapMax,
		LiquidityMinUSD:    0,
		LiquidityMaxUSD:    DefaultLiquidityMax,
		Top10HoldersMinPct: 0,
		Top10HoldersMaxPct: DefaultTop10Max,
	}
}

// Validate checks all ranges at write time. An invalid config must be
// rejected before installation; the prior snapshot stays in effect.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("filter: nil config")
	}

	if c.PairAgeMinMinutes < 0 {
		return errors.New("filter: pair_age_min must be >= 0")
	}
	if c.PairAgeMinMinutes > c.PairAgeMaxMinutes {
		return fmt.Errorf("filter: pair_age_min (%g) exceeds pair_age_max (%g)",
			c.PairAgeMinMinutes, c.PairAgeMaxMinutes)
	}
	if c.MarketCapMinUSD < 0 {
		return errors.New("filter: market_cap_min must be >= 0")
	}
	if c.MarketCapMinUSD > c.MarketCapMaxUSD {
		return fmt.Errorf("filter: market_cap_min (%g) exceeds market_cap_max (%g)",
			c.MarketCapMinUSD, c.MarketCapMaxUSD)
	}
	if c.LiquidityMinUSD < 0 {
		return errors.New("filter: liquidity_min must be >= 0")
	}
	if c.LiquidityMinUSD > c.LiquidityMaxUSD {
		return fmt.Errorf("filter: liquidity_min (%g) exceeds liquidity_max (%g)",
			c.LiquidityMinUSD, c.LiquidityMaxUSD)
	}
	if c.Top10HoldersMinPct < 0 || c.Top10HoldersMaxPct > 100 {
		return errors.New("filter: top10 holder bounds must be within 0-100")
	}
	if c.Top10HoldersMinPct > c.Top10HoldersMaxPct {
		return fmt.Errorf("filter: top10_holders_min (%g) exceeds top10_holders_max (%g)",
			c.Top10HoldersMinPct, c.Top10HoldersMaxPct)
	}

	for i, s := range c.Signals {
		if s.IntervalMinutes <= 0 {
			return fmt.Errorf("filter: signals[%d].time_interval_minutes must be > 0", i)
		}
	}

	return nil
}

// Clone returns a deep copy, so a caller can derive a new snapshot from the
// current one without mutating it.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Signals = append([]Signal(nil), c.Signals...)
	return &cp
}
