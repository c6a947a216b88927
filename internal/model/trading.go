package model

import "github.com/shopspring/decimal"

// TradingValue returns price * volume, the estimated trading value.
func TradingValue(price float64, volume int64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(volume)).InexactFloat64()
}

// WithTradingValue returns a copy of r with EstimatedTradingValue recomputed.
func (r SecurityRecord) WithTradingValue() SecurityRecord {
	r.EstimatedTradingValue = TradingValue(r.Price, r.Volume)
	return r
}
