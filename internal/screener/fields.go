package screener

import (
	"slices"

	"ETFBoard/internal/model"
)

type fieldKind int

const (
	numericField fieldKind = iota
	textField
)

// sortKey extracts one field. The bool is false when the value is absent.
type sortKey struct {
	kind   fieldKind
	number func(*model.SecurityRecord) (float64, bool)
	text   func(*model.SecurityRecord) (string, bool)
}

func num(get func(*model.SecurityRecord) float64) sortKey {
	return sortKey{kind: numericField, number: func(r *model.SecurityRecord) (float64, bool) { return get(r), true }}
}

func optNum(get func(*model.SecurityRecord) *float64) sortKey {
	return sortKey{kind: numericField, number: func(r *model.SecurityRecord) (float64, bool) {
		if v := get(r); v != nil {
			return *v, true
		}
		return 0, false
	}}
}

func text(get func(*model.SecurityRecord) string) sortKey {
	return sortKey{kind: textField, text: func(r *model.SecurityRecord) (string, bool) { return get(r), true }}
}

// optText treats the empty string as absent.
func optText(get func(*model.SecurityRecord) string) sortKey {
	return sortKey{kind: textField, text: func(r *model.SecurityRecord) (string, bool) {
		v := get(r)
		return v, v != ""
	}}
}

var sortKeys = map[model.SortField]sortKey{
	model.SortByCode:                  text(func(r *model.SecurityRecord) string { return r.Code }),
	model.SortByName:                  text(func(r *model.SecurityRecord) string { return r.Name }),
	model.SortByMarket:                text(func(r *model.SecurityRecord) string { return string(r.Market) }),
	model.SortByProvider:              text(func(r *model.SecurityRecord) string { return r.Provider }),
	model.SortBySector:                text(func(r *model.SecurityRecord) string { return r.Sector }),
	model.SortByBaseIndexName:         optText(func(r *model.SecurityRecord) string { return r.BaseIndexName }),
	model.SortByListingDate:           optText(func(r *model.SecurityRecord) string { return r.ListingDate }),
	model.SortByPrice:                 num(func(r *model.SecurityRecord) float64 { return r.Price }),
	model.SortByVolume:                num(func(r *model.SecurityRecord) float64 { return float64(r.Volume) }),
	model.SortByDailyChangePercent:    num(func(r *model.SecurityRecord) float64 { return r.DailyChangePercent }),
	model.SortByEstimatedTradingValue: num(func(r *model.SecurityRecord) float64 { return r.EstimatedTradingValue }),
	model.SortByFee:                   num(func(r *model.SecurityRecord) float64 { return r.Fee }),
	model.SortByMarketCapitalization:  optNum(func(r *model.SecurityRecord) *float64 { return r.MarketCapitalization }),
	model.SortByNAVValue:              optNum(func(r *model.SecurityRecord) *float64 { return r.NAVValue }),
	model.SortByHighPrice:             optNum(func(r *model.SecurityRecord) *float64 { return r.HighPrice }),
	model.SortByLowPrice:              optNum(func(r *model.SecurityRecord) *float64 { return r.LowPrice }),
}

// SortFields lists every sortable field.
func SortFields() []model.SortField {
	fields := make([]model.SortField, 0, len(sortKeys))
	for f := range sortKeys {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}
