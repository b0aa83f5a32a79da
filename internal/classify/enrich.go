package classify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/raydium"
	"solana-launch-monitor/internal/solana"
)

// Well-known addresses excluded from mint extraction.
const (
	WrappedSOLMint  = "So11111111111111111111111111111111111111112"
	TokenProgram    = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	SystemProgram   = "11111111111111111111111111111111"
	ComputeBudget   = "ComputeBudget111111111111111111111111111111"
	AssociatedToken = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

var excludedKeys = map[string]bool{
	WrappedSOLMint:       true,
	TokenProgram:         true,
	SystemProgram:        true,
	ComputeBudget:        true,
	AssociatedToken:      true,
	raydium.AMMV4Program: true,
}

// Enricher resolves classified stream events into normalized token
// records by fetching transaction and account data over RPC. Enrichment
// failures degrade: the caller still has the bare classified event.
type Enricher struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

// NewEnricher creates an Enricher.
func NewEnricher(rpc solana.RPCClient, logger *log.Logger) *Enricher {
	if logger == nil {
		logger = log.Default()
	}
	return &Enricher{rpc: rpc, logger: logger}
}

// TokenFromTransaction extracts the token mint a transaction touched. It
// prefers post-transaction token balances; when those are absent it falls
// back to the first account key that plausibly is a wallet-generated mint
// (on the ed25519 curve and not a well-known program). Returns nil when
// no mint can be determined.
func (e *Enricher) TokenFromTransaction(ctx context.Context, signature string) (*domain.TokenRecord, error) {
	tx, err := e.rpc.GetTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", signature, err)
	}
	if tx == nil {
		return nil, nil
	}

	mint := ""
	if tx.Meta != nil {
		for _, bal := range tx.Meta.PostTokenBalances {
			if bal.Mint == "" || excludedKeys[bal.Mint] {
				continue
			}
			mint = bal.Mint
			break
		}
	}

	if mint == "" && tx.Message != nil {
		for _, key := range tx.Message.AccountKeys {
			if excludedKeys[key] || !IsOnCurve(key) {
				continue
			}
			mint = key
			break
		}
	}

	if mint == "" {
		e.logger.Printf("[classify] no mint recoverable from %s", signature)
		return nil, nil
	}

	return &domain.TokenRecord{
		Network:   "solana",
		Mint:      mint,
		CreatedAt: tx.BlockTime,
	}, nil
}

// PoolFromAccount fetches and decodes a liquidity pool account into a
// normalized record. The base mint is reported as the record's mint; the
// decoded pool-open time becomes the creation timestamp.
func (e *Enricher) PoolFromAccount(ctx context.Context, pubkey string) (*domain.TokenRecord, error) {
	info, err := e.rpc.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", pubkey, err)
	}
	if info == nil {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account data %s: %w", pubkey, err)
	}

	state, err := raydium.DecodePoolState(data)
	if err != nil {
		return nil, err
	}

	return PoolRecord(pubkey, state), nil
}

// PoolRecord normalizes a decoded pool state into the common record shape.
func PoolRecord(pubkey string, state *raydium.PoolState) *domain.TokenRecord {
	return &domain.TokenRecord{
		Network:   "solana",
		Mint:      state.BaseMint.Base58(),
		Pool:      pubkey,
		CreatedAt: int64(state.PoolOpenTime),
	}
}

// IsOnCurve reports whether a base58 string decodes to 32 bytes that form
// a valid ed25519 curve point. Wallet-generated keypair addresses are on
// the curve; program-derived addresses are deliberately not.
func IsOnCurve(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
