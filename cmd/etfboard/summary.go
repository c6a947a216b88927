package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"ETFBoard/internal/report"
)

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the summary cards" }
func (*summaryCmd) Usage() string {
	return `etfboard summary

  Prints the market counts, the top mover excluding leveraged and inverse
  funds, and the most traded domestic ETF.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fmt.Print(report.FormatState(a.board.State(), time.Now()))
	fmt.Print(report.FormatSummary(a.board.Summary()))
	return subcommands.ExitSuccess
}
