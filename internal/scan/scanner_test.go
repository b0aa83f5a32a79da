package scan

import (
	"context"
	"errors"
	"testing"

	"solana-launch-monitor/internal/raydium"
	"solana-launch-monitor/internal/solana"
)

type fakeRPC struct {
	pages    map[int][]solana.ProgramAccount
	pageErrs map[int]error
	calls    []int
}

func (f *fakeRPC) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	return nil, nil
}

func (f *fakeRPC) GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error) {
	return nil, nil
}

func (f *fakeRPC) GetProgramAccountsPage(ctx context.Context, programID string, page, limit int) ([]solana.ProgramAccount, error) {
	f.calls = append(f.calls, page)
	if err := f.pageErrs[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func poolAccount(pubkey string, status byte) solana.ProgramAccount {
	data := make([]byte, raydium.PoolStateSize)
	data[0] = status
	return solana.ProgramAccount{Pubkey: pubkey, Data: data}
}

func accountsOf(n int, prefix string) []solana.ProgramAccount {
	accounts := make([]solana.ProgramAccount, n)
	for i := range accounts {
		accounts[i] = poolAccount(prefix+string(rune('a'+i)), 1)
	}
	return accounts
}

func TestScan_StopsOnShortPage(t *testing.T) {
	rpc := &fakeRPC{pages: map[int][]solana.ProgramAccount{
		1: accountsOf(3, "p1-"),
		2: accountsOf(1, "p2-"),
	}}

	s := New(rpc, nil)
	results, err := s.Scan(context.Background(), "prog", 3, 100)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 records, got %d", len(results))
	}
	if len(rpc.calls) != 2 {
		t.Errorf("expected 2 page requests, got %v", rpc.calls)
	}
	if rpc.calls[0] != 1 {
		t.Errorf("scan must start at page 1, got %v", rpc.calls)
	}
}

func TestScan_StopsAtMaxRecords(t *testing.T) {
	rpc := &fakeRPC{pages: map[int][]solana.ProgramAccount{
		1: accountsOf(3, "p1-"),
		2: accountsOf(3, "p2-"),
		3: accountsOf(3, "p3-"),
	}}

	s := New(rpc, nil)
	results, err := s.Scan(context.Background(), "prog", 3, 5)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(results) != 5 {
		t.Fatalf("expected 5 records, got %d", len(results))
	}
	if len(rpc.calls) != 2 {
		t.Errorf("expected scan to stop after page 2, got requests %v", rpc.calls)
	}
}

func TestScan_SkipsUndersizedAccounts(t *testing.T) {
	short := solana.ProgramAccount{Pubkey: "short", Data: make([]byte, 10)}
	rpc := &fakeRPC{pages: map[int][]solana.ProgramAccount{
		1: {short, poolAccount("good", 1)},
	}}

	s := New(rpc, nil)
	results, err := s.Scan(context.Background(), "prog", 10, 100)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 record, got %d", len(results))
	}
	if results[0].Pubkey != "good" {
		t.Errorf("expected good, got %s", results[0].Pubkey)
	}
}

func TestScan_PageErrorIsRecoverable(t *testing.T) {
	rpc := &fakeRPC{
		pages:    map[int][]solana.ProgramAccount{1: accountsOf(3, "p1-")},
		pageErrs: map[int]error{2: errors.New("rate limited")},
	}

	s := New(rpc, nil)
	results, err := s.Scan(context.Background(), "prog", 3, 100)
	if err == nil {
		t.Fatal("expected page error to surface")
	}

	// Records from earlier pages are still returned.
	if len(results) != 3 {
		t.Errorf("expected 3 records collected before the failure, got %d", len(results))
	}
}

func TestScan_FreshStartEachCall(t *testing.T) {
	rpc := &fakeRPC{pages: map[int][]solana.ProgramAccount{
		1: accountsOf(1, "p1-"),
	}}

	s := New(rpc, nil)
	if _, err := s.Scan(context.Background(), "prog", 5, 100); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, err := s.Scan(context.Background(), "prog", 5, 100); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(rpc.calls) != 2 || rpc.calls[0] != 1 || rpc.calls[1] != 1 {
		t.Errorf("each scan must start at page 1, got requests %v", rpc.calls)
	}
}

func TestScan_CancelledContext(t *testing.T) {
	rpc := &fakeRPC{pages: map[int][]solana.ProgramAccount{}}
	s := New(rpc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scan(ctx, "prog", 5, 100)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(rpc.calls) != 0 {
		t.Errorf("cancelled scan must not issue requests, got %v", rpc.calls)
	}
}
