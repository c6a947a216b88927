package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"ETFBoard/internal/board"
	"ETFBoard/internal/model"
)

const (
	eok = 100_000_000
	jo  = 1_000_000_000_000
	man = 10_000

	notAvailable = "N/A"
)

// FormatTradingValue renders a won amount in 억 units, or 만 below one 억.
func FormatTradingValue(v float64) string {
	if v >= eok {
		return humanize.Comma(int64(math.Round(v/eok))) + "억"
	}
	return humanize.Comma(int64(math.Round(v/man))) + "만"
}

// FormatMarketCap renders a capitalization as 조/억, falling back to plain won.
func FormatMarketCap(v *float64) string {
	if v == nil {
		return notAvailable
	}
	c := *v
	switch {
	case c >= jo:
		j := math.Floor(c / jo)
		e := math.Round(math.Mod(c, jo) / eok)
		if e > 0 {
			return fmt.Sprintf("%s조 %s억", humanize.Comma(int64(j)), humanize.Comma(int64(e)))
		}
		return humanize.Comma(int64(j)) + "조"
	case c >= eok:
		return humanize.Comma(int64(math.Round(c/eok))) + "억"
	}
	return humanize.Comma(int64(math.Round(c))) + "원"
}

// FormatRecordMarketCap renders r's capitalization in its market's currency.
// Foreign values are in US dollars and shown in billions.
func FormatRecordMarketCap(r model.SecurityRecord) string {
	if r.Market == model.MarketForeign && r.MarketCapitalization != nil {
		return "$" + humanize.CommafWithDigits(*r.MarketCapitalization/1e9, 1) + "B"
	}
	return FormatMarketCap(r.MarketCapitalization)
}

// FormatPrice renders a price with the market's currency.
func FormatPrice(r model.SecurityRecord) string {
	if r.Market == model.MarketForeign {
		return "$" + humanize.CommafWithDigits(r.Price, 2)
	}
	return humanize.Comma(int64(math.Round(r.Price))) + "원"
}

// FormatChange renders a daily change percentage with an explicit sign.
func FormatChange(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// WriteTable writes the records as an aligned text table.
func WriteTable(w io.Writer, records []model.SecurityRecord) error {
	if len(records) == 0 {
		_, err := io.WriteString(w, "No ETFs to display. Try another filter or search term.\n")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CODE\tNAME\tMKT\tPRICE\tCHANGE\tVOLUME\tVALUE\tMKT CAP\tFEE\tPROVIDER\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f%%\t%s\t\n",
			r.Code,
			r.Name,
			r.Market,
			FormatPrice(r),
			FormatChange(r.DailyChangePercent),
			humanize.Comma(r.Volume),
			FormatTradingValue(r.EstimatedTradingValue),
			FormatRecordMarketCap(r),
			r.Fee,
			r.Provider,
		)
	}
	return tw.Flush()
}

// FormatTable renders the records as an aligned text table.
func FormatTable(records []model.SecurityRecord) string {
	var b strings.Builder
	_ = WriteTable(&b, records)
	return b.String()
}

// FormatSummary renders the four summary cards.
func FormatSummary(s model.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Domestic ETFs: %d\n", s.DomesticCount))
	b.WriteString(fmt.Sprintf("US ETFs: %d\n", s.ForeignCount))

	if r := s.TopMoverExcludingLeveraged; r != nil {
		b.WriteString(fmt.Sprintf("Top daily change: %s (%s)\n", FormatChange(r.DailyChangePercent), r.Name))
	} else {
		b.WriteString("Top daily change: " + notAvailable + "\n")
	}

	if r := s.TopByTradingValue; r != nil {
		b.WriteString(fmt.Sprintf("Most traded: %s (%s)\n", FormatTradingValue(r.EstimatedTradingValue), r.Name))
	} else {
		b.WriteString("Most traded: " + notAvailable + "\n")
	}
	return b.String()
}

// FormatState renders the status line shown above the table.
func FormatState(st board.State, now time.Time) string {
	var b strings.Builder
	switch {
	case st.Loading:
		b.WriteString("Loading data...")
	case st.Error != "":
		b.WriteString("Error: " + st.Error)
	case st.IsLive:
		b.WriteString("Live data")
	default:
		b.WriteString("Sample data")
	}
	if !st.LastUpdated.IsZero() {
		b.WriteString(fmt.Sprintf(" | updated %s (%s)",
			st.LastUpdated.In(kst).Format("2006-01-02 15:04:05"),
			humanize.RelTime(st.LastUpdated, now, "ago", "from now")))
	}
	b.WriteString(fmt.Sprintf(" | %d ETFs | market=%s", st.Total, st.Filters.Market))
	if st.Filters.SearchTerm != "" {
		b.WriteString(fmt.Sprintf(" q=%q", st.Filters.SearchTerm))
	}
	if st.Filters.HideLowValue {
		b.WriteString(" hideLow")
	}
	b.WriteString(fmt.Sprintf(" | sort=%s %s\n", st.Sort.Field, st.Sort.Direction))
	return b.String()
}

var kst = time.FixedZone("KST", 9*60*60)
