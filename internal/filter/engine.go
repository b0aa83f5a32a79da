package filter

import (
	"strconv"
	"strings"
	"time"

	"solana-launch-monitor/internal/domain"
)

// SystemZeroAddress is the Solana system zero address, used by some
// upstreams as the "authority revoked" sentinel.
const SystemZeroAddress = "11111111111111111111111111111111"

// Passes evaluates every predicate category against a normalized record,
// short-circuiting on the first failing category. Pure: no side effects,
// no I/O. now supplies the evaluation instant for pair-age computation.
func Passes(rec *domain.TokenRecord, cfg *Config, now time.Time) bool {
	if rec == nil || cfg == nil {
		return false
	}

	if !networkMatches(rec.Network, cfg.Network) {
		return false
	}

	// Pair age: inclusive bounds, skipped entirely when creation time is
	// unknown (0).
	if rec.CreatedAt > 0 {
		ageMinutes := now.Sub(time.Unix(rec.CreatedAt, 0)).Minutes()
		if ageMinutes < cfg.PairAgeMinMinutes || ageMinutes > cfg.PairAgeMaxMinutes {
			return false
		}
	}

	if !windowPasses(rec.MarketCapUSD, cfg.MarketCapMinUSD, cfg.MarketCapMaxUSD, 0, DefaultMarketCapMax) {
		return false
	}
	if !windowPasses(rec.LiquidityUSD, cfg.LiquidityMinUSD, cfg.LiquidityMaxUSD, 0, DefaultLiquidityMax) {
		return false
	}

	if cfg.Socials.Telegram && rec.Socials.Telegram == "" {
		return false
	}
	if cfg.Socials.Twitter && rec.Socials.Twitter == "" {
		return false
	}
	if cfg.Socials.Website && rec.Socials.Website == "" {
		return false
	}

	if cfg.RequireMintAuthRevoked && !AuthorityRevoked(rec.MintAuthority) {
		return false
	}
	if cfg.RequireFreezeAuthRevoked && !AuthorityRevoked(rec.FreezeAuthority) {
		return false
	}

	if !windowPasses(rec.Top10HoldersPct, cfg.Top10HoldersMinPct, cfg.Top10HoldersMaxPct, 0, DefaultTop10Max) {
		return false
	}

	if cfg.RequireLPBurned && !rec.LPBurned {
		return false
	}
	if cfg.RequireAudited && !rec.Audited {
		return false
	}
	if cfg.RequireDexPaid && !rec.DexPaid {
		return false
	}
	if cfg.RequireBondingCurve && !rec.BondingCurve {
		return false
	}

	return true
}

// AuthorityRevoked reports whether an authority field means "no authority
// remains". nil (field absent or JSON null), the empty string, the literal
// "null", and the system zero address all count as revoked.
func AuthorityRevoked(authority *string) bool {
	if authority == nil {
		return true
	}
	switch *authority {
	case "", "null", "0x0", SystemZeroAddress:
		return true
	}
	return false
}

// networkMatches applies the chain filter. "all" and "" accept everything;
// a record with no network set only passes "all".
func networkMatches(recNetwork, cfgNetwork string) bool {
	if cfgNetwork == "" || cfgNetwork == "all" {
		return true
	}
	return strings.EqualFold(recNetwork, cfgNetwork)
}

// windowPasses applies a numeric range. A nil value passes only if the
// window still sits at its full default range (the window is considered
// disabled); a narrowed window with a missing value fails. Present values
// are checked inclusively.
func windowPasses(v *float64, min, max, defMin, defMax float64) bool {
	if v == nil {
		return min == defMin && max == defMax
	}
	return *v >= min && *v <= max
}

// ParseNumeric converts an upstream numeric field that may arrive as a
// JSON number or a string. Unparseable values are treated as 0, never an
// error.
func ParseNumeric(raw interface{}) float64 {
	switch n := raw.(type) {
	case nil:
		return 0
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		v, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}
