package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NatureDaily/internal/app"
	"NatureDaily/internal/config"
	"NatureDaily/internal/logging"
)

func main() {
	var (
		once     = flag.Bool("once", false, "run the pipeline once and exit (default mode)")
		schedule = flag.Bool("schedule", false, "run every day at scheduler.dailyAt")
		selfTest = flag.Bool("test", false, "send a test email and crawl the first journal")
		date     = flag.String("date", "", "report date YYYY-MM-DD (default: today in the scheduler timezone)")
		browser  = flag.Bool("browser", false, "render listing pages with headless Chrome")
		cfgPath  = flag.String("config", "", "path to the YAML config (overrides NATURE_DAILY_CONFIG)")
	)
	flag.Parse()

	if modes(*once, *schedule, *selfTest) > 1 {
		fmt.Fprintln(os.Stderr, "choose only one of -once, -schedule, -test")
		os.Exit(2)
	}

	if *cfgPath != "" {
		os.Setenv("NATURE_DAILY_CONFIG", *cfgPath)
	}
	cfg := config.Load()
	if *browser {
		cfg.Crawler.Browser = true
	}
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *selfTest:
		err = application.RunTest(ctx)
	case *schedule:
		err = application.RunSchedule(ctx)
	default:
		var day time.Time
		day, err = reportDay(*date, application.Today())
		if err == nil {
			err = application.RunOnce(ctx, day)
		}
	}

	if err != nil {
		logger.Error("application stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}

func modes(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func reportDay(value string, today time.Time) (time.Time, error) {
	if value == "" {
		return today, nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, today.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -date %q: %w", value, err)
	}
	return day, nil
}
