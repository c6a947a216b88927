package model

import "time"

// Market identifies which market a security trades on.
type Market string

const (
	MarketDomestic Market = "KR"
	MarketForeign  Market = "US"
	// MarketAll is only meaningful as a filter value.
	MarketAll Market = "ALL"
)

// Valid reports whether m is a known market or the ALL filter value.
func (m Market) Valid() bool {
	switch m {
	case MarketDomestic, MarketForeign, MarketAll:
		return true
	}
	return false
}

const (
	ProviderUnknown = "unknown"
	SectorUnknown   = "unknown"
)

// SecurityRecord is one traded instrument snapshot.
type SecurityRecord struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Market             Market  `json:"market"`
	Price              float64 `json:"price"`
	Volume             int64   `json:"volume"`
	DailyChangePercent float64 `json:"dailyChangePercent"`
	// EstimatedTradingValue is always Price * Volume, see WithTradingValue.
	EstimatedTradingValue float64 `json:"estimatedTradingValue"`

	Fee      float64 `json:"fee"`
	Provider string  `json:"provider"`
	Sector   string  `json:"sector"`

	// Optional fields. Nil or empty means the upstream did not report them.
	MarketCapitalization *float64 `json:"marketCapitalization,omitempty"`
	NAVValue             *float64 `json:"navValue,omitempty"`
	HighPrice            *float64 `json:"highPrice,omitempty"`
	LowPrice             *float64 `json:"lowPrice,omitempty"`
	OpenPrice            *float64 `json:"openPrice,omitempty"`
	PriceChange          *float64 `json:"priceChange,omitempty"`
	NetAssetTotal        *float64 `json:"netAssetTotal,omitempty"`
	ListedShares         *int64   `json:"listedShares,omitempty"`
	BaseIndexName        string   `json:"baseIndexName,omitempty"`
	ISIN                 string   `json:"isin,omitempty"`
	BaseDate             string   `json:"baseDate,omitempty"`
	ListingDate          string   `json:"listingDate,omitempty"`
}

// Snapshot is one fetched-and-merged dataset plus its fetch timestamp.
// It is replaced wholesale, never mutated.
type Snapshot struct {
	FetchedAt time.Time
	Records   []SecurityRecord
}

// Metadata is the static descriptive data for one security code.
type Metadata struct {
	Provider    string  `json:"provider"`
	Fee         float64 `json:"fee"`
	Sector      string  `json:"sector"`
	ListingDate string  `json:"listingDate,omitempty"`
}

// Float returns a pointer to v, for populating optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for populating optional fields.
func Int(v int64) *int64 { return &v }
