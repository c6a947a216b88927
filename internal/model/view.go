package model

// FilterState is the user-selected set of predicates applied to the base dataset.
type FilterState struct {
	Market       Market `json:"market" yaml:"market"`
	SearchTerm   string `json:"searchTerm" yaml:"search_term"`
	HideLowValue bool   `json:"hideLowValue" yaml:"hide_low_value"`
}

// IdentityFilter keeps every record.
var IdentityFilter = FilterState{Market: MarketAll}

// SortField names a sortable SecurityRecord field by its JSON name.
type SortField string

const (
	SortByCode                  SortField = "code"
	SortByName                  SortField = "name"
	SortByMarket                SortField = "market"
	SortByPrice                 SortField = "price"
	SortByVolume                SortField = "volume"
	SortByDailyChangePercent    SortField = "dailyChangePercent"
	SortByMarketCapitalization  SortField = "marketCapitalization"
	SortByEstimatedTradingValue SortField = "estimatedTradingValue"
	SortByFee                   SortField = "fee"
	SortByProvider              SortField = "provider"
	SortBySector                SortField = "sector"
	SortByNAVValue              SortField = "navValue"
	SortByBaseIndexName         SortField = "baseIndexName"
	SortByHighPrice             SortField = "highPrice"
	SortByLowPrice              SortField = "lowPrice"
	SortByListingDate           SortField = "listingDate"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState selects the ordering of the view.
type SortState struct {
	Field     SortField `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Summary holds aggregates computed over the full, unfiltered dataset.
type Summary struct {
	DomesticCount int `json:"domesticCount"`
	ForeignCount  int `json:"foreignCount"`
	// TopMoverExcludingLeveraged is nil when no eligible domestic record exists.
	TopMoverExcludingLeveraged *SecurityRecord `json:"topMoverExcludingLeveraged"`
	// TopByTradingValue ranks domestic records by volume.
	TopByTradingValue *SecurityRecord `json:"topByTradingValue"`
}
