package solana

// ProgramAccount is one entry from a program-accounts page.
type ProgramAccount struct {
	Pubkey string
	// Data is the raw account data, already base64-decoded.
	Data  []byte
	Owner string
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
