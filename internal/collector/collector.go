package collector

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ETFBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Records []model.SecurityRecord
	Err     error
	Calls   int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchTopRecords(_ context.Context, count int) ([]model.SecurityRecord, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	records := m.Records
	if records == nil {
		records = SampleRecords()
	}
	if count >= 0 && len(records) > count {
		records = records[:count]
	}
	return append([]model.SecurityRecord(nil), records...), nil
}

func (m *MockFetcher) SearchByName(ctx context.Context, name string) ([]model.SecurityRecord, error) {
	records, err := m.FetchTopRecords(ctx, -1)
	if err != nil {
		return nil, err
	}
	var out []model.SecurityRecord
	for _, r := range records {
		if containsFold(r.Name, name) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SampleRecords is a small domestic dataset used when no service key is configured.
func SampleRecords() []model.SecurityRecord {
	records := []model.SecurityRecord{
		{Code: "069500", Name: "KODEX 200 (샘플)", Provider: "삼성자산운용", Fee: 0.05, Volume: 5000000, DailyChangePercent: 1.5, Price: 35000, MarketCapitalization: model.Float(7.0e12)},
		{Code: "102110", Name: "TIGER 200 (샘플)", Provider: "미래에셋자산운용", Fee: 0.05, Volume: 4500000, DailyChangePercent: 1.6, Price: 35100, MarketCapitalization: model.Float(6.5e12)},
		{Code: "122630", Name: "KODEX 레버리지 (샘플)", Provider: "삼성자산운용", Fee: 0.64, Volume: 80000000, DailyChangePercent: 3.2, Price: 21000, MarketCapitalization: model.Float(2.1e12)},
	}
	for i := range records {
		records[i].Market = model.MarketDomestic
		records[i].Sector = model.SectorUnknown
		records[i] = records[i].WithTradingValue()
	}
	return records
}

// Collector orchestrates one fetch: the domestic feed plus the fixed foreign list.
type Collector struct {
	Fetcher        Fetcher
	Count          int
	IncludeForeign bool
	Logger         *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, count int, includeForeign bool, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Fetcher: fetcher, Count: count, IncludeForeign: includeForeign, Logger: logger}
}

// Collect fetches the domestic records and appends the foreign list.
func (c *Collector) Collect(ctx context.Context) ([]model.SecurityRecord, error) {
	domestic, err := c.Fetcher.FetchTopRecords(ctx, c.Count)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch records from %s", c.Fetcher.Name())
	}
	c.Logger.Info("fetched domestic records",
		zap.String("source", c.Fetcher.Name()),
		zap.Int("count", len(domestic)))

	records := domestic
	if c.IncludeForeign {
		records = append(records, ForeignRecords()...)
	}
	return records, nil
}
