package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
)

// ScheduleCmd repeats a search on a cron expression until interrupted.
// Each run uses the same flags as a one-shot search.
type ScheduleCmd struct {
	Cron   string `help:"Cron expression (standard 5-field syntax)." default:"0 * * * *"`
	Titles string `arg:"" optional:"" help:"Job titles (comma-separated). Optional when --query-file is provided."`
	Boards string `help:"Comma-separated list of boards (default: all configured)." default:"all"`
	RunNow bool   `name:"run-now" help:"Run one search immediately before waiting for the schedule."`
	SearchOptions
}

func (s *ScheduleCmd) Run(ctx *Context) error {
	if s.RunNow {
		if err := runSearch(ctx, s.Titles, s.Boards, s.SearchOptions); err != nil {
			ctx.UI.Warnf("search failed: %v", err)
		}
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(s.Cron, func() {
		if err := runSearch(ctx, s.Titles, s.Boards, s.SearchOptions); err != nil {
			ctx.UI.Warnf("scheduled search failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid --cron %q: %w", s.Cron, err)
	}

	ctx.UI.Infof("Scheduled searches with %q; press Ctrl-C to stop.", s.Cron)
	scheduler.Start()
	defer scheduler.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
