package domain

// EventKind classifies a candidate event.
type EventKind string

const (
	KindNewTokenMint       EventKind = "NEW_TOKEN_MINT"
	KindNewPoolLiquidity   EventKind = "NEW_POOL_LIQUIDITY"
	KindGenericTokenUpdate EventKind = "GENERIC_TOKEN_UPDATE"
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a valid value.
func (k EventKind) IsValid() bool {
	return k == KindNewTokenMint || k == KindNewPoolLiquidity || k == KindGenericTokenUpdate
}

// Source identifies which upstream feed produced an event.
type Source string

const (
	// SourceTokenLogs is the SPL token / AMM program log subscription.
	SourceTokenLogs Source = "TOKEN_LOGS"
	// SourcePoolScan is the paginated program-account scan.
	SourcePoolScan Source = "POOL_SCAN"
	// SourceListingPoll is the HTTP token-listing poller.
	SourceListingPoll Source = "LISTING_POLL"
)

// String returns the string representation of Source.
func (s Source) String() string {
	return string(s)
}

// CandidateEvent is a normalized, not-yet-notified detection of a mint or
// pool. ID is the dedup key: a transaction signature for stream events, a
// pool address for scan results, a mint address for listing results. ID is
// never empty by the time the event reaches the dedup tracker.
type CandidateEvent struct {
	AlertID    string    // assigned at emission time
	Kind       EventKind //
	ID         string    // primary identifier (dedup key)
	Source     Source    //
	ObservedAt int64     // Unix timestamp in milliseconds

	// Record carries the normalized shape the filter engine evaluates.
	// Nil for stream events that could not be enriched.
	Record *TokenRecord
}
