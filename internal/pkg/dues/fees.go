package dues

import (
	"log"

	"github.com/chapterledger/ChapterLedger/internal/pkg/env"
	"github.com/shopspring/decimal"
)

// Processing-fee constants for card payments: a fixed per-transaction
// charge plus a percentage of the gross.
var (
	feeFixed = decimal.RequireFromString("0.30")
	feeRate  = decimal.RequireFromString("0.029")

	// DefaultDuesAmount is the annual dues obligation used when no plan
	// governs the member.
	DefaultDuesAmount = decimal.RequireFromString("200.00")
)

// DuesAmountFromEnv returns the configured annual dues obligation
// (DUES_AMOUNT), falling back to the default.
func DuesAmountFromEnv() decimal.Decimal {
	raw := env.GetEnv("DUES_AMOUNT", "")
	if raw == "" {
		return DefaultDuesAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		log.Printf("[DUES] invalid DUES_AMOUNT %q, using default", raw)
		return DefaultDuesAmount
	}
	return amount
}

// TotalWithFees grosses up a base amount so that after the processor
// takes its cut, the organization nets the base: (base + fixed) / (1 - rate),
// rounded to cents.
func TotalWithFees(base decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return base.Add(feeFixed).Div(one.Sub(feeRate)).Round(2)
}
