package collector

import (
	"context"

	"ETFBoard/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchTopRecords returns up to count domestic records for the latest trading day.
	FetchTopRecords(ctx context.Context, count int) ([]model.SecurityRecord, error)
	// SearchByName returns domestic records whose name contains name.
	SearchByName(ctx context.Context, name string) ([]model.SecurityRecord, error)
	Name() string
}
