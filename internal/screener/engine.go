package screener

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ETFBoard/internal/model"
)

// DefaultLowValueThreshold is the estimated trading value below which
// domestic records are hidden by the low-value filter.
const DefaultLowValueThreshold = 500_000_000

var (
	ErrUnknownSortField = errors.New("unknown sort field")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// Engine derives the filtered, ordered view of a dataset.
type Engine struct {
	threshold float64
	locale    language.Tag
}

// NewEngine creates an Engine with the given low-value threshold.
func NewEngine(threshold float64) *Engine {
	return &Engine{threshold: threshold, locale: language.Korean}
}

// Threshold returns the low-value threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// View filters records by f and orders the result by s. The input slice is
// left untouched.
func (e *Engine) View(records []model.SecurityRecord, f model.FilterState, s model.SortState) ([]model.SecurityRecord, error) {
	compare, err := e.Comparator(s)
	if err != nil {
		return nil, err
	}
	out := e.Filter(records, f)
	slices.SortStableFunc(out, compare)
	return out, nil
}

// Filter applies the market, search and low-value predicates in that order.
// An empty market means ALL.
func (e *Engine) Filter(records []model.SecurityRecord, f model.FilterState) []model.SecurityRecord {
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
	out := make([]model.SecurityRecord, 0, len(records))
	for _, r := range records {
		if f.Market != "" && f.Market != model.MarketAll && r.Market != f.Market {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Name), term) &&
			!strings.Contains(strings.ToLower(r.Code), term) {
			continue
		}
		if f.HideLowValue && r.Market != model.MarketForeign && r.EstimatedTradingValue < e.threshold {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ValidateSort reports whether s names a sortable field and a direction.
func ValidateSort(s model.SortState) error {
	if _, ok := sortKeys[s.Field]; !ok {
		return errors.Wrapf(ErrUnknownSortField, "%q", s.Field)
	}
	switch s.Direction {
	case model.Ascending, model.Descending:
		return nil
	}
	return errors.Wrapf(ErrUnknownDirection, "%q", s.Direction)
}

// Comparator resolves s to a comparison function once. A pair where either
// value is absent compares equal.
func (e *Engine) Comparator(s model.SortState) (func(a, b model.SecurityRecord) int, error) {
	if err := ValidateSort(s); err != nil {
		return nil, err
	}
	key := sortKeys[s.Field]
	sign := 1
	if s.Direction == model.Descending {
		sign = -1
	}

	if key.kind == numericField {
		return func(a, b model.SecurityRecord) int {
			av, aok := key.number(&a)
			bv, bok := key.number(&b)
			if !aok || !bok {
				return 0
			}
			return sign * cmp.Compare(av, bv)
		}, nil
	}

	col := collate.New(e.locale)
	return func(a, b model.SecurityRecord) int {
		av, aok := key.text(&a)
		bv, bok := key.text(&b)
		if !aok || !bok {
			return 0
		}
		return sign * col.CompareString(av, bv)
	}, nil
}
