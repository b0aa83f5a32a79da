// Package scan is the fallback discovery path: a paginated full scan of
// program-owned accounts for upstreams without a subscription mechanism.
package scan

import (
	"context"
	"fmt"
	"log"

	"solana-launch-monitor/internal/raydium"
	"solana-launch-monitor/internal/solana"
)

// Default paging values.
const (
	DefaultPageSize   = 100
	DefaultMaxRecords = 500
)

// Result is one decoded pool account.
type Result struct {
	Pubkey string
	State  *raydium.PoolState
}

// Scanner issues paged program-account requests and decodes every account
// large enough to hold the pool layout. It keeps no cursor: every Scan
// starts over at page one. Intended to run on a fixed timer, not
// continuously.
type Scanner struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

// New creates a Scanner.
func New(rpc solana.RPCClient, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{rpc: rpc, logger: logger}
}

// Scan walks pages sequentially until maxRecords decoded records are
// collected, a short page signals the end of data, or a page request
// fails. Undersized or malformed accounts are skipped, never fatal. A
// page-level error terminates the scan and is returned along with the
// records collected so far; the caller treats it as recoverable.
func (s *Scanner) Scan(ctx context.Context, programID string, pageSize, maxRecords int) ([]Result, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	var results []Result

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		accounts, err := s.rpc.GetProgramAccountsPage(ctx, programID, page, pageSize)
		if err != nil {
			return results, fmt.Errorf("scan page %d: %w", page, err)
		}

		for _, acc := range accounts {
			if len(acc.Data) < raydium.PoolStateSize {
				continue
			}
			state, err := raydium.DecodePoolState(acc.Data)
			if err != nil {
				s.logger.Printf("[scan] skipping account %s: %v", acc.Pubkey, err)
				continue
			}
			results = append(results, Result{Pubkey: acc.Pubkey, State: state})
			if len(results) >= maxRecords {
				return results, nil
			}
		}

		// A short page means there is no further data.
		if len(accounts) < pageSize {
			return results, nil
		}
	}
}
