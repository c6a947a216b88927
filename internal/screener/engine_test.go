package screener

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ETFBoard/internal/collector"
	"ETFBoard/internal/model"
)

func domestic(code, name string, value float64) model.SecurityRecord {
	return model.SecurityRecord{Code: code, Name: name, Market: model.MarketDomestic, EstimatedTradingValue: value}
}

func foreign(code, name string, value float64) model.SecurityRecord {
	return model.SecurityRecord{Code: code, Name: name, Market: model.MarketForeign, EstimatedTradingValue: value}
}

func dataset() []model.SecurityRecord {
	return []model.SecurityRecord{
		domestic("069500", "KODEX 200", 9e9),
		domestic("102110", "TIGER 200", 8e9),
		domestic("122630", "KODEX 레버리지", 7e9),
		domestic("251340", "KODEX 코스닥150선물인버스", 1e8),
		foreign("SPY", "SPDR S&P 500 ETF Trust", 3e10),
		foreign("QQQ", "Invesco QQQ Trust", 10),
	}
}

var byValueDesc = model.SortState{Field: model.SortByEstimatedTradingValue, Direction: model.Descending}

func codes(records []model.SecurityRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Code
	}
	return out
}

func TestView_IdentityFilterKeepsEverything(t *testing.T) {
	data := dataset()
	for _, field := range SortFields() {
		for _, dir := range []model.Direction{model.Ascending, model.Descending} {
			out, err := NewEngine(DefaultLowValueThreshold).View(data, model.IdentityFilter, model.SortState{Field: field, Direction: dir})
			require.NoError(t, err)
			assert.ElementsMatch(t, data, out, "field %s %s", field, dir)
		}
	}
}

func TestView_ZeroFilterIsIdentity(t *testing.T) {
	data := dataset()
	out, err := NewEngine(DefaultLowValueThreshold).View(data, model.FilterState{}, byValueDesc)
	require.NoError(t, err)
	assert.ElementsMatch(t, data, out)
}

func TestView_OutputIsSubset(t *testing.T) {
	data := dataset()
	filters := []model.FilterState{
		{Market: model.MarketDomestic},
		{Market: model.MarketForeign, SearchTerm: "trust"},
		{Market: model.MarketAll, SearchTerm: "kodex", HideLowValue: true},
		{Market: model.MarketAll, SearchTerm: "nothing matches"},
	}
	e := NewEngine(DefaultLowValueThreshold)
	for _, f := range filters {
		out, err := e.View(data, f, byValueDesc)
		require.NoError(t, err)
		for _, r := range out {
			assert.Contains(t, data, r)
		}
	}
}

func TestView_DoesNotReorderInput(t *testing.T) {
	data := dataset()
	before := codes(data)
	_, err := NewEngine(DefaultLowValueThreshold).View(data, model.IdentityFilter, model.SortState{Field: model.SortByCode, Direction: model.Ascending})
	require.NoError(t, err)
	assert.Equal(t, before, codes(data))
}

func TestFilter_Market(t *testing.T) {
	e := NewEngine(DefaultLowValueThreshold)
	assert.Equal(t, []string{"SPY", "QQQ"}, codes(e.Filter(dataset(), model.FilterState{Market: model.MarketForeign})))
	assert.Len(t, e.Filter(dataset(), model.FilterState{Market: model.MarketDomestic}), 4)
}

func TestFilter_SearchTrimsAndFoldsCase(t *testing.T) {
	e := NewEngine(DefaultLowValueThreshold)
	assert.Equal(t, []string{"069500", "122630", "251340"},
		codes(e.Filter(dataset(), model.FilterState{Market: model.MarketAll, SearchTerm: "  kodex "})))
	assert.Equal(t, []string{"SPY"}, codes(e.Filter(dataset(), model.FilterState{Market: model.MarketAll, SearchTerm: "spy"})))
	assert.Equal(t, []string{"102110"}, codes(e.Filter(dataset(), model.FilterState{Market: model.MarketAll, SearchTerm: "0211"})))
	assert.Equal(t, []string{"122630"}, codes(e.Filter(dataset(), model.FilterState{Market: model.MarketAll, SearchTerm: "레버리지"})))
	assert.Len(t, e.Filter(dataset(), model.FilterState{Market: model.MarketAll, SearchTerm: "   "}), 6)
}

func TestFilter_LowValueBoundary(t *testing.T) {
	data := []model.SecurityRecord{
		domestic("AT", "at threshold", 500_000_000),
		domestic("BELOW", "just below", 499_999_999),
		domestic("ABOVE", "above", 500_000_001),
		foreign("F0", "foreign zero", 0),
		foreign("F1", "foreign small", 1),
	}
	e := NewEngine(DefaultLowValueThreshold)

	out := e.Filter(data, model.FilterState{Market: model.MarketAll, HideLowValue: true})
	assert.Equal(t, []string{"AT", "ABOVE", "F0", "F1"}, codes(out))

	out = e.Filter(data, model.FilterState{Market: model.MarketAll, HideLowValue: false})
	assert.Len(t, out, 5)
}

func TestFilter_ConfigurableThreshold(t *testing.T) {
	data := []model.SecurityRecord{domestic("A", "a", 100), domestic("B", "b", 99)}
	out := NewEngine(100).Filter(data, model.FilterState{Market: model.MarketAll, HideLowValue: true})
	assert.Equal(t, []string{"A"}, codes(out))
}

func TestView_NumericSort(t *testing.T) {
	e := NewEngine(DefaultLowValueThreshold)
	out, err := e.View(dataset(), model.IdentityFilter, byValueDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPY", "069500", "102110", "122630", "251340", "QQQ"}, codes(out))

	out, err = e.View(dataset(), model.IdentityFilter, model.SortState{Field: model.SortByEstimatedTradingValue, Direction: model.Ascending})
	require.NoError(t, err)
	assert.Equal(t, []string{"QQQ", "251340", "122630", "102110", "069500", "SPY"}, codes(out))
}

func TestView_KoreanCollation(t *testing.T) {
	data := []model.SecurityRecord{
		domestic("3", "하나 ETF", 0),
		domestic("1", "가치 ETF", 0),
		domestic("2", "나무 ETF", 0),
	}
	out, err := NewEngine(0).View(data, model.IdentityFilter, model.SortState{Field: model.SortByName, Direction: model.Ascending})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, codes(out))

	out, err = NewEngine(0).View(data, model.IdentityFilter, model.SortState{Field: model.SortByName, Direction: model.Descending})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, codes(out))
}

func TestView_CollationIsNotBytewise(t *testing.T) {
	data := []model.SecurityRecord{domestic("B", "Banana", 0), domestic("a", "apple", 0)}
	out, err := NewEngine(0).View(data, model.IdentityFilter, model.SortState{Field: model.SortByName, Direction: model.Ascending})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "B"}, codes(out))
}

func TestView_StableForEveryField(t *testing.T) {
	base := model.SecurityRecord{
		Code: "000000", Name: "same", Market: model.MarketDomestic, Price: 1, Volume: 1,
		Provider: "p", Sector: "s", BaseIndexName: "idx", ListingDate: "2020-01-01",
		MarketCapitalization: model.Float(1), NAVValue: model.Float(1), HighPrice: model.Float(1), LowPrice: model.Float(1),
	}
	var data []model.SecurityRecord
	for _, marker := range []string{"m1", "m2", "m3", "m4", "m5"} {
		r := base
		r.ISIN = marker
		data = append(data, r)
	}
	markers := func(rs []model.SecurityRecord) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ISIN
		}
		return out
	}

	e := NewEngine(0)
	for _, field := range SortFields() {
		for _, dir := range []model.Direction{model.Ascending, model.Descending} {
			out, err := e.View(data, model.IdentityFilter, model.SortState{Field: field, Direction: dir})
			require.NoError(t, err)
			assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, markers(out), "field %s %s", field, dir)
		}
	}
}

func TestView_StableWithinEqualGroups(t *testing.T) {
	data := []model.SecurityRecord{
		{Code: "a", Volume: 2}, {Code: "b", Volume: 1}, {Code: "c", Volume: 2}, {Code: "d", Volume: 1}, {Code: "e", Volume: 2},
	}
	e := NewEngine(0)

	out, err := e.View(data, model.IdentityFilter, model.SortState{Field: model.SortByVolume, Direction: model.Descending})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "e", "b", "d"}, codes(out))

	out, err = e.View(data, model.IdentityFilter, model.SortState{Field: model.SortByVolume, Direction: model.Ascending})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, codes(out))
}

func TestView_Idempotent(t *testing.T) {
	e := NewEngine(DefaultLowValueThreshold)
	for _, s := range []model.SortState{
		byValueDesc,
		{Field: model.SortByName, Direction: model.Ascending},
		{Field: model.SortByMarket, Direction: model.Descending},
	} {
		once, err := e.View(dataset(), model.IdentityFilter, s)
		require.NoError(t, err)
		twice, err := e.View(once, model.IdentityFilter, s)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "%v", s)
	}
}

func TestComparator_AbsentValuesCompareEqual(t *testing.T) {
	e := NewEngine(0)
	withNAV := model.SecurityRecord{Code: "a", NAVValue: model.Float(10)}
	withoutNAV := model.SecurityRecord{Code: "b"}

	compare, err := e.Comparator(model.SortState{Field: model.SortByNAVValue, Direction: model.Ascending})
	require.NoError(t, err)
	assert.Equal(t, 0, compare(withNAV, withoutNAV))
	assert.Equal(t, 0, compare(withoutNAV, withNAV))
	assert.Equal(t, -1, compare(withNAV, model.SecurityRecord{NAVValue: model.Float(11)}))

	compare, err = e.Comparator(model.SortState{Field: model.SortByBaseIndexName, Direction: model.Descending})
	require.NoError(t, err)
	assert.Equal(t, 0, compare(model.SecurityRecord{BaseIndexName: "코스피 200"}, model.SecurityRecord{}))
}

func TestView_MarketCapitalizationAcrossMarkets(t *testing.T) {
	e := NewEngine(0)
	records := append(collector.SampleRecords(), collector.ForeignRecords()...)
	s := model.SortState{Field: model.SortByMarketCapitalization, Direction: model.Descending}

	once, err := e.View(records, model.IdentityFilter, s)
	require.NoError(t, err)
	require.Len(t, once, len(records))
	for i, r := range once {
		require.NotNil(t, r.MarketCapitalization, r.Code)
		if i > 0 {
			assert.GreaterOrEqual(t, *once[i-1].MarketCapitalization, *r.MarketCapitalization)
		}
	}

	twice, err := e.View(once, model.IdentityFilter, s)
	require.NoError(t, err)
	assert.Equal(t, codes(once), codes(twice))
}

func TestComparator_RejectsUnknownFieldAndDirection(t *testing.T) {
	e := NewEngine(0)
	_, err := e.Comparator(model.SortState{Field: "isin", Direction: model.Ascending})
	assert.True(t, errors.Is(err, ErrUnknownSortField))

	_, err = e.View(dataset(), model.IdentityFilter, model.SortState{Field: model.SortByName, Direction: "up"})
	assert.True(t, errors.Is(err, ErrUnknownDirection))
}
