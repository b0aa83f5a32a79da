// Package raydium decodes the Raydium AMM v4 on-chain liquidity state
// account layout.
package raydium

import (
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

// AMMV4Program is the Raydium AMM v4 program ID.
const AMMV4Program = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

// Layout geometry: 38 little-endian uint64 fields, then 12 raw 32-byte
// addresses, then fixed padding. Field order and widths must not change.
const (
	numU64Fields    = 38
	numAddrFields   = 12
	trailingPadding = 57

	// PoolStateSize is the fixed size of a V4 liquidity state account.
	PoolStateSize = numU64Fields*8 + numAddrFields*32 + trailingPadding // 745
)

// ErrTooShort is returned when the input buffer is smaller than the fixed
// layout. Decoding never produces a partial record.
var ErrTooShort = fmt.Errorf("raydium: account data shorter than %d bytes", PoolStateSize)

// Address is a raw 32-byte on-chain address. Display encoding is the
// caller's concern.
type Address [32]byte

// Base58 returns the base58 string form of the address.
func (a Address) Base58() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// PoolState is the decoded V4 liquidity state account.
type PoolState struct {
	Status                 uint64
	Nonce                  uint64
	MaxOrder               uint64
	Depth                  uint64
	BaseDecimal            uint64
	QuoteDecimal           uint64
	State                  uint64
	ResetFlag              uint64
	MinSize                uint64
	VolMaxCutRatio         uint64
	AmountWaveRatio        uint64
	BaseLotSize            uint64
	QuoteLotSize           uint64
	MinPriceMultiplier     uint64
	MaxPriceMultiplier     uint64
	SystemDecimalValue     uint64
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
	BaseNeedTakePnl        uint64
	QuoteNeedTakePnl       uint64
	QuoteTotalPnl          uint64
	BaseTotalPnl           uint64
	PoolOpenTime           uint64
	PunishPcAmount         uint64
	PunishCoinAmount       uint64
	OrderbookToInitTime    uint64
	SwapBaseInAmount       uint64
	SwapQuoteOutAmount     uint64
	SwapBase2QuoteFee      uint64
	SwapQuoteInAmount      uint64
	SwapBaseOutAmount      uint64
	SwapQuote2BaseFee      uint64

	BaseVault       Address
	QuoteVault      Address
	BaseMint        Address
	QuoteMint       Address
	LpMint          Address
	OpenOrders      Address
	MarketID        Address
	MarketProgramID Address
	TargetOrders    Address
	WithdrawQueue   Address
	LpVault         Address
	Owner           Address
}

// DecodePoolState decodes a V4 liquidity state account. Bytes beyond the
// fixed layout are ignored. Counters and timestamps come back raw; the
// caller interprets 0 as unset.
func DecodePoolState(data []byte) (*PoolState, error) {
	if len(data) < PoolStateSize {
		return nil, ErrTooShort
	}

	d := decoder{buf: data}
	s := &PoolState{
		Status:                 d.u64(),
		Nonce:                  d.u64(),
		MaxOrder:               d.u64(),
		Depth:                  d.u64(),
		BaseDecimal:            d.u64(),
		QuoteDecimal:           d.u64(),
		State:                  d.u64(),
		ResetFlag:              d.u64(),
		MinSize:                d.u64(),
		VolMaxCutRatio:         d.u64(),
		AmountWaveRatio:        d.u64(),
		BaseLotSize:            d.u64(),
		QuoteLotSize:           d.u64(),
		MinPriceMultiplier:     d.u64(),
		MaxPriceMultiplier:     d.u64(),
		SystemDecimalValue:     d.u64(),
		MinSeparateNumerator:   d.u64(),
		MinSeparateDenominator: d.u64(),
		TradeFeeNumerator:      d.u64(),
		TradeFeeDenominator:    d.u64(),
		PnlNumerator:           d.u64(),
		PnlDenominator:         d.u64(),
		SwapFeeNumerator:       d.u64(),
		SwapFeeDenominator:     d.u64(),
		BaseNeedTakePnl:        d.u64(),
		QuoteNeedTakePnl:       d.u64(),
		QuoteTotalPnl:          d.u64(),
		BaseTotalPnl:           d.u64(),
		PoolOpenTime:           d.u64(),
		PunishPcAmount:         d.u64(),
		PunishCoinAmount:       d.u64(),
		OrderbookToInitTime:    d.u64(),
		SwapBaseInAmount:       d.u64(),
		SwapQuoteOutAmount:     d.u64(),
		SwapBase2QuoteFee:      d.u64(),
		SwapQuoteInAmount:      d.u64(),
		SwapBaseOutAmount:      d.u64(),
		SwapQuote2BaseFee:      d.u64(),
	}

	s.BaseVault = d.addr()
	s.QuoteVault = d.addr()
	s.BaseMint = d.addr()
	s.QuoteMint = d.addr()
	s.LpMint = d.addr()
	s.OpenOrders = d.addr()
	s.MarketID = d.addr()
	s.MarketProgramID = d.addr()
	s.TargetOrders = d.addr()
	s.WithdrawQueue = d.addr()
	s.LpVault = d.addr()
	s.Owner = d.addr()

	return s, nil
}

// decoder reads fixed-width fields sequentially. Bounds are guaranteed by
// the size check in DecodePoolState.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) u64() uint64 {
	v := binary.LittleEndian.Uint64(d.buf[d.off:])
	d.off += 8
	return v
}

func (d *decoder) addr() Address {
	var a Address
	copy(a[:], d.buf[d.off:d.off+32])
	d.off += 32
	return a
}
