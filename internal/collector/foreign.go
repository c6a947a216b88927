package collector

import (
	"strings"

	"ETFBoard/internal/model"
)

// ForeignRecords returns the fixed list of foreign-market funds. The feed only
// covers the domestic market. Market capitalization is in US dollars.
func ForeignRecords() []model.SecurityRecord {
	records := []model.SecurityRecord{
		{Code: "SPY", Name: "SPDR S&P 500 ETF Trust", Provider: "State Street", Fee: 0.09, Volume: 60000000, DailyChangePercent: 1.3, Price: 530.5, MarketCapitalization: model.Float(5.6e11)},
		{Code: "IVV", Name: "iShares CORE S&P 500", Provider: "BlackRock", Fee: 0.03, Volume: 4000000, DailyChangePercent: 1.35, Price: 532.1, MarketCapitalization: model.Float(5.2e11)},
		{Code: "QQQ", Name: "Invesco QQQ Trust", Provider: "Invesco", Fee: 0.20, Volume: 45000000, DailyChangePercent: 0.6, Price: 460.2, MarketCapitalization: model.Float(3.0e11)},
		{Code: "VOO", Name: "Vanguard S&P 500 ETF", Provider: "Vanguard", Fee: 0.03, Volume: 4200000, DailyChangePercent: 1.37, Price: 488.9, MarketCapitalization: model.Float(5.0e11)},
	}
	for i := range records {
		records[i].Market = model.MarketForeign
		records[i].Sector = model.SectorUnknown
		records[i] = records[i].WithTradingValue()
	}
	return records
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
