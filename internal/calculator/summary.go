package calculator

import (
	"strings"

	"ETFBoard/internal/model"
)

// DefaultExcludedMarkers mark inverse and leveraged products by name.
var DefaultExcludedMarkers = []string{"인버스", "레버리지", "Inverse", "Leverage"}

// Summarize computes the summary cards over the full, unfiltered dataset.
// Ties keep the earliest record. TopByTradingValue is ranked by volume.
func Summarize(records []model.SecurityRecord, excludedMarkers []string) model.Summary {
	var s model.Summary
	var topMover, topVolume *model.SecurityRecord

	for i := range records {
		r := &records[i]
		switch r.Market {
		case model.MarketDomestic:
			s.DomesticCount++
		case model.MarketForeign:
			s.ForeignCount++
			continue
		default:
			continue
		}

		if topVolume == nil || r.Volume > topVolume.Volume {
			topVolume = r
		}
		if IsLeveraged(r.Name, excludedMarkers) {
			continue
		}
		if topMover == nil || r.DailyChangePercent > topMover.DailyChangePercent {
			topMover = r
		}
	}

	s.TopMoverExcludingLeveraged = clone(topMover)
	s.TopByTradingValue = clone(topVolume)
	return s
}

// IsLeveraged reports whether name carries one of the markers, ignoring case.
func IsLeveraged(name string, markers []string) bool {
	lower := strings.ToLower(name)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func clone(r *model.SecurityRecord) *model.SecurityRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
