package listing

import (
	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/filter"
)

// ToRecord normalizes a raw listing entry into the common record shape.
// Numeric fields present in the payload become pointers even when they
// fail to parse (parse failure means 0, not absent); fields the upstream
// omitted stay nil.
func ToRecord(t Token) *domain.TokenRecord {
	mint := t.Mint
	if mint == "" {
		mint = t.Address
	}

	rec := &domain.TokenRecord{
		Network:   t.Network,
		Mint:      mint,
		CreatedAt: int64(filter.ParseNumeric(t.CreatedAt)),
		Socials: domain.SocialLinks{
			Telegram: t.Telegram,
			Twitter:  t.Twitter,
			Website:  t.Website,
		},
		MintAuthority:   t.MintAuthority,
		FreezeAuthority: t.FreezeAuthority,
		LPBurned:        t.LPBurned,
		Audited:         t.Audited,
		DexPaid:         t.DexPaid,
		BondingCurve:    t.BondingCurve,
	}

	if t.MarketCap != nil {
		v := filter.ParseNumeric(t.MarketCap)
		rec.MarketCapUSD = &v
	}
	if t.Liquidity != nil {
		v := filter.ParseNumeric(t.Liquidity)
		rec.LiquidityUSD = &v
	}
	if t.Top10Holders != nil {
		v := filter.ParseNumeric(t.Top10Holders)
		rec.Top10HoldersPct = &v
	}

	return rec
}
