package main

import (
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/time/rate"

	"github.com/sells-group/leaderboard-cli/internal/config"
	"github.com/sells-group/leaderboard-cli/internal/fetcher"
	"github.com/sells-group/leaderboard-cli/internal/monitoring"
	"github.com/sells-group/leaderboard-cli/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one leaderboard page and write address/points pairs",
	Long: `Issues a single GET to the leaderboard API, extracts address/points pairs and
writes them to the output file.

Flat responses ({"data": [{"address", "points"}]}) are written as a list of
records. Participant responses ({"data": {"participants": [...]}}) keep only
addresses tagged "stash" and are written as an address -> points mapping.

Examples:
  # Fetch the first 2000 entries into leaderboard_data.json
  fetch --url https://leaderboard.example.com/api/v1/leaderboard

  # Fetch the next window as YAML
  fetch --skip 2000 --limit 500 --format yaml --output page2.yaml

  # Force the mapping layout for a flat response
  fetch --layout map`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	addFetchFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func addFetchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("url", "", "leaderboard API endpoint (overrides config)")
	f.Int("skip", 0, "pagination offset (overrides config)")
	f.Int("limit", 0, "pagination window size (overrides config)")
	f.String("output", "", "output file path (overrides config)")
	f.String("format", "", "output format: json, yaml, csv or xlsx (overrides config)")
	f.String("layout", "", "output layout: auto, list or map (overrides config)")
	f.String("shape", "", "response shape: auto, flat or participants (overrides config)")
	f.Duration("timeout", 0, "request timeout (overrides config)")
}

// applyFetchOverrides copies explicitly set flags onto c.
func applyFetchOverrides(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("url") {
		c.Source.URL, _ = f.GetString("url")
	}
	if f.Changed("skip") {
		c.Source.Skip, _ = f.GetInt("skip")
	}
	if f.Changed("limit") {
		c.Source.Limit, _ = f.GetInt("limit")
	}
	if f.Changed("output") {
		c.Output.Path, _ = f.GetString("output")
	}
	if f.Changed("format") {
		c.Output.Format, _ = f.GetString("format")
	}
	if f.Changed("layout") {
		c.Output.Layout, _ = f.GetString("layout")
	}
	if f.Changed("shape") {
		c.Output.Shape, _ = f.GetString("shape")
	}
	if f.Changed("timeout") {
		d, _ := f.GetDuration("timeout")
		c.Source.TimeoutSecs = int(math.Ceil(d.Seconds()))
	}
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyFetchOverrides(cmd, cfg)
	if err := cfg.Validate("fetch"); err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", cmd.Name()))

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Source.UserAgent,
		Timeout:   cfg.Source.Timeout(),
		RateLimit: rate.Limit(cfg.Source.RateLimit),
	})

	var opts []pipeline.Option
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, pipeline.WithRecorder(monitoring.NewRecorder()))
	}

	summary, err := pipeline.New(f, cfg, opts...).Run(ctx)
	if err != nil {
		return err
	}

	log.Debug("fetch finished", zap.String("run_id", summary.RunID))

	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(cmd.OutOrStdout(), "Wrote %d entries (%d addresses, %v points) to %s in %s\n",
		summary.Stats.Entries,
		summary.Stats.UniqueAddresses,
		summary.Stats.TotalPoints,
		summary.Output,
		summary.Duration.Round(time.Millisecond),
	)
	return nil
}
