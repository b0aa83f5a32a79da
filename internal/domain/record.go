package domain

// SocialLinks holds the token's published social presence. Empty string
// means the upstream did not report that link.
type SocialLinks struct {
	Telegram string
	Twitter  string
	Website  string
}

// TokenRecord is the normalized record shape the filter engine evaluates.
// Different upstreams populate different subsets; pointer fields are nil
// when the upstream's record shape does not carry them at all, which is
// distinct from carrying a zero.
type TokenRecord struct {
	Network string // "solana" for on-chain sources
	Mint    string
	Pool    string

	// CreatedAt is the pair/pool creation time, Unix seconds. 0 = unknown.
	CreatedAt int64

	MarketCapUSD *float64
	LiquidityUSD *float64

	// Top10HoldersPct is the share held by the ten largest holders, 0-100.
	Top10HoldersPct *float64

	Socials SocialLinks

	// MintAuthority / FreezeAuthority are nil when the upstream omits
	// them. nil, "", "null" and the system zero address all mean revoked.
	MintAuthority   *string
	FreezeAuthority *string

	LPBurned     bool
	Audited      bool
	DexPaid      bool
	BondingCurve bool
}
