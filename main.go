package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osbornjw-stats/lizsample/config"
	"github.com/osbornjw-stats/lizsample/export"
	"github.com/osbornjw-stats/lizsample/population"
	"github.com/osbornjw-stats/lizsample/sampling"
	"github.com/osbornjw-stats/lizsample/server"
	"github.com/osbornjw-stats/lizsample/session"
	"github.com/osbornjw-stats/lizsample/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Draw samples without graphics and log the summaries")
	serve := flag.Bool("serve", false, "Serve the HTTP API instead of opening a window")
	addr := flag.String("addr", "", "HTTP listen address (empty = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for exported samples, summaries and config snapshot")
	seed := flag.Int64("seed", 0, "Sampling RNG seed (0 = config, then time-based)")
	size := flag.Int("size", 0, "Simple random sample size (0 = use config)")
	bias := flag.Bool("bias", false, "Weight selection by catch probability (field conditions)")
	stratified := flag.Bool("stratified", false, "Use stratified sampling with per-habitat quotas")
	quota := flag.String("quota", "", "Stratified quotas, e.g. Beach=25,Caves=25 (empty = config quota for every habitat)")
	draws := flag.Int("draws", 1, "Number of samples to draw in headless mode")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Command line overrides
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *size > 0 {
		cfg.Sampling.TotalSize = *size
	}
	if set["bias"] {
		cfg.Sampling.Bias = *bias
	}
	if set["stratified"] {
		cfg.Sampling.Stratified = *stratified
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	quotas := cfg.DefaultQuotas()
	if *quota != "" {
		q, err := sampling.ParseQuotas(*quota)
		if err != nil {
			slog.Error("invalid -quota", "error", err)
			os.Exit(1)
		}
		quotas = q
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Sampling.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	src := population.NewSource(rngSeed)

	// The population is fixed for the life of the process. Generating it here
	// turns a bad habitat table into a startup failure.
	cache := population.NewCache(cfg.Derived.Habitats, cfg.Population.Seed)
	pop, err := cache.Get()
	if err != nil {
		slog.Error("failed to generate population", "error", err)
		os.Exit(1)
	}

	out, err := export.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	opts := sampling.Options{
		Stratified: cfg.Sampling.Stratified,
		Bias:       cfg.Sampling.Bias,
		TotalSize:  cfg.Sampling.TotalSize,
		Quotas:     quotas,
	}

	switch {
	case *serve:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cache, src, server.Options{
			HistogramBins: cfg.Sampling.HistogramBins,
			Metrics:       cfg.Server.Metrics,
		})
		slog.Info("starting server", "addr", cfg.Server.Addr, "seed", rngSeed)
		if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}

	case *headless:
		sess := session.New(sampling.NewSampler(pop, src), cfg.Sampling.HistogramBins)
		slog.Info("starting headless sampling",
			"seed", rngSeed,
			"draws", *draws,
			"strategy", fmt.Sprint(opts.Strategy()),
		)
		if err := runHeadless(sess, opts, *draws, out); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}

	default:
		sess := session.New(sampling.NewSampler(pop, src), cfg.Sampling.HistogramBins)
		app := ui.NewApp(cfg, sess, out)
		app.Run()
	}
}

// runHeadless draws n samples, logging each summary and exporting it when
// an output directory is configured.
func runHeadless(sess *session.Session, opts sampling.Options, n int, out *export.OutputManager) error {
	for i := 0; i < n; i++ {
		if _, err := sess.Draw(opts); err != nil {
			return err
		}
		if out == nil {
			continue
		}
		if _, err := sess.Export(out); err != nil {
			return err
		}
	}
	if out != nil {
		slog.Info("output written", "dir", out.Dir())
	}
	return nil
}
