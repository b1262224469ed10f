// Package main repeats sampling trials to compare how far each strategy's
// estimate lands from the true mean on average.
//
// Usage: go run ./cmd/trials -trials 1000 -output runs/compare
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/osbornjw-stats/lizsample/config"
	"github.com/osbornjw-stats/lizsample/export"
	"github.com/osbornjw-stats/lizsample/population"
	"github.com/osbornjw-stats/lizsample/sampling"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Millisecond)
	if d < time.Second {
		return d.String()
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	trials := flag.Int("trials", 0, "Trials per strategy (0 = use config)")
	size := flag.Int("size", 0, "Simple random sample size (0 = use config)")
	quota := flag.String("quota", "", "Stratified quotas, e.g. Beach=25,Caves=25 (empty = config quota for every habitat)")
	seed := flag.Int64("seed", 1, "Sampling RNG seed")
	outputDir := flag.String("output", "", "Output directory for trials.csv per strategy (empty = print only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	n := cfg.Sampling.Trials
	if *trials > 0 {
		n = *trials
	}
	total := cfg.Sampling.TotalSize
	if *size > 0 {
		total = *size
	}
	quotas := cfg.DefaultQuotas()
	if *quota != "" {
		if quotas, err = sampling.ParseQuotas(*quota); err != nil {
			log.Fatalf("invalid -quota: %v", err)
		}
	}

	pop, err := population.NewCache(cfg.Derived.Habitats, cfg.Population.Seed).Get()
	if err != nil {
		log.Fatalf("failed to generate population: %v", err)
	}

	strategies := []sampling.Strategy{
		sampling.SimpleRandom{TotalSize: total},
		sampling.SimpleRandom{TotalSize: total, Bias: true},
		sampling.Stratified{Quotas: quotas},
	}

	fmt.Printf("Population: %d lizards, true mean %.2f g (seed %d)\n", pop.Len(), pop.TrueMean(), pop.Seed())
	fmt.Printf("Running %d trials per strategy, sampling seed %d\n\n", n, *seed)

	startTime := time.Now()
	for i, strategy := range strategies {
		// Each strategy gets its own stream so results do not depend on order.
		src := population.NewSource(*seed + int64(i))
		started := time.Now()
		report, err := sampling.RunTrials(pop, strategy, n, src)
		if err != nil {
			log.Printf("%s: %v", strategy, err)
			continue
		}

		fmt.Printf("%s\n", strategy)
		fmt.Printf("  mean error %+.3f g  sd %.3f  rmse %.3f  (%s)\n",
			report.MeanError, report.ErrorStdDev, report.RMSE, formatDuration(time.Since(started)))
		for _, share := range report.Shares {
			fmt.Printf("  %-10s sample %5.1f%%  population %5.1f%%\n",
				share.Habitat, 100*share.MeanSampleShare, 100*share.PopulationShare)
		}

		if *outputDir != "" {
			if err := writeReport(filepath.Join(*outputDir, strategy.Kind()), cfg, report); err != nil {
				log.Printf("failed to write %s results: %v", strategy.Kind(), err)
			}
		}
		fmt.Println()
	}

	fmt.Printf("Done in %s\n", formatDuration(time.Since(startTime)))
}

func writeReport(dir string, cfg *config.Config, report sampling.TrialReport) error {
	om, err := export.NewOutputManager(dir)
	if err != nil {
		return err
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		return err
	}
	path, err := om.WriteTrials(report)
	if err != nil {
		return err
	}
	fmt.Printf("  trials saved to: %s\n", path)
	return nil
}
