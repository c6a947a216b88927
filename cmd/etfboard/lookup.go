package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"ETFBoard/internal/metadata"
	"ETFBoard/internal/report"
)

type lookupCmd struct{}

func (*lookupCmd) Name() string     { return "lookup" }
func (*lookupCmd) Synopsis() string { return "search the market data feed by ETF name" }
func (*lookupCmd) Usage() string {
	return `etfboard lookup <name>

  Queries the feed for ETFs whose name contains <name> on the latest
  trading day, merged with the static metadata.
`
}

func (*lookupCmd) SetFlags(*flag.FlagSet) {}

func (*lookupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fail("a name is required.")
		return subcommands.ExitUsageError
	}
	name := strings.Join(f.Args(), " ")

	a, err := openApp()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	records, err := a.fetcher.SearchByName(ctx, name)
	if err != nil {
		fail("searching %q: %v", name, err)
		return subcommands.ExitFailure
	}
	lookup, err := a.metadata.Load(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	records = metadata.Merge(records, lookup)

	if len(records) == 0 {
		fmt.Printf("No results found for '%s'.\n", name)
		return subcommands.ExitSuccess
	}
	fmt.Printf("Found %d results for '%s':\n\n", len(records), name)
	if err := report.WriteTable(os.Stdout, records); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
