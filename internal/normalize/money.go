package normalize

import "github.com/shopspring/decimal"

// The liquidation engine computes at full precision; rounding happens
// only here, at the persistence boundary.

// PesosToCentavos converts a decimal peso amount to integer centavos,
// rounding half away from zero.
func PesosToCentavos(v decimal.Decimal) int64 {
	return v.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// PercentToBasisPoints converts a decimal percentage to int32 basis
// points. e.g. 12.34% → 1234 bps.
func PercentToBasisPoints(v decimal.Decimal) int32 {
	return int32(v.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}
