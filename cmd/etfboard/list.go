package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"ETFBoard/internal/model"
	"ETFBoard/internal/report"
)

type listCmd struct {
	market  string
	query   string
	hideLow bool
	sort    string
	dir     string
	limit   int
	asJSON  bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "print the filtered and sorted ETF table" }
func (*listCmd) Usage() string {
	return `etfboard list [-market KR|US|ALL] [-q term] [-hide-low] [-sort field] [-dir asc|desc] [-n 20] [-json]

  Fetches the current dataset and prints the view selected by the flags.
  Omitted flags fall back to the configured defaults.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.market, "market", "", "Market filter: KR, US or ALL")
	f.StringVar(&c.query, "q", "", "Case-insensitive name or code search")
	f.BoolVar(&c.hideLow, "hide-low", false, "Hide domestic ETFs below the low trading value threshold")
	f.StringVar(&c.sort, "sort", "", "Sort field, e.g. estimatedTradingValue, name, fee")
	f.StringVar(&c.dir, "dir", "", "Sort direction: asc or desc")
	f.IntVar(&c.limit, "n", 0, "Print at most n rows (0 = all)")
	f.BoolVar(&c.asJSON, "json", false, "Print records as JSON")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.board.Load(ctx); err != nil {
		fail("%s (%v)", a.board.State().Error, err)
		return subcommands.ExitFailure
	}

	filters := a.board.Filters()
	sortState := a.board.Sort()
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "market":
			filters.Market = model.Market(c.market)
		case "q":
			filters.SearchTerm = c.query
		case "hide-low":
			filters.HideLowValue = c.hideLow
		case "sort":
			sortState.Field = model.SortField(c.sort)
		case "dir":
			sortState.Direction = model.Direction(c.dir)
		}
	})
	if err := a.board.SetFilters(filters); err != nil {
		fail("%v", err)
		return subcommands.ExitUsageError
	}
	if err := a.board.SetSort(sortState); err != nil {
		fail("%v", err)
		return subcommands.ExitUsageError
	}

	records, err := a.board.View()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	if c.limit > 0 && len(records) > c.limit {
		records = records[:c.limit]
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	fmt.Print(report.FormatState(a.board.State(), time.Now()))
	if err := report.WriteTable(os.Stdout, records); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
