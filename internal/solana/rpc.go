package solana

import "context"

// RPCClient defines the Solana JSON-RPC HTTP interface the pipeline needs.
type RPCClient interface {
	// GetTransaction retrieves a confirmed transaction by signature.
	// Returns nil when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetAccountInfo retrieves raw account data by public key.
	// Returns nil when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetProgramAccountsPage retrieves one page of accounts owned by a
	// program. Providers answer with either a bare account list or an
	// {accounts: [...]} wrapper; both shapes are handled.
	GetProgramAccountsPage(ctx context.Context, programID string, page, limit int) ([]ProgramAccount, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err               interface{}
	LogMessages       []string
	PostTokenBalances []TokenBalance
}

// TokenBalance is a post-transaction token balance entry. The Mint field
// identifies tokens the transaction touched.
type TokenBalance struct {
	AccountIndex int    `json:"accountIndex"`
	Mint         string `json:"mint"`
	Owner        string `json:"owner"`
}

// TransactionMessage contains the parsed transaction message.
type TransactionMessage struct {
	AccountKeys []string
}
