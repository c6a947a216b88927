package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"ETFBoard/internal/scheduler"
	"ETFBoard/internal/server"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard JSON API" }
func (*serveCmd) Usage() string {
	return `etfboard serve [-addr :8080]

  Loads the dataset, starts the optional refresh schedule and serves the
  JSON API until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides server.addr")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}

	// A failed first load is reported through the state endpoint.
	if err := a.board.Load(ctx); err != nil {
		a.log.Error("initial load failed", zap.Error(err))
	}

	sched := scheduler.NewScheduler(ctx, a.board, a.log)
	if err := sched.Register(a.cfg.Schedule.RefreshCron); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		a.log.Info("RUN_ON_START enabled, refreshing now")
		go sched.RunNow()
	}

	if err := server.NewServer(addr, a.board, a.log).Start(ctx); err != nil {
		a.log.Error("http server", zap.Error(err))
		return subcommands.ExitFailure
	}
	a.log.Info("etfboard stopped")
	return subcommands.ExitSuccess
}
