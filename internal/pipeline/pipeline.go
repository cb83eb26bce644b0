// Package pipeline runs one fetch -> parse -> write pass over a leaderboard page.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leaderboard-cli/internal/config"
	"github.com/sells-group/leaderboard-cli/internal/export"
	"github.com/sells-group/leaderboard-cli/internal/fetcher"
	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
	"github.com/sells-group/leaderboard-cli/internal/monitoring"
	"github.com/sells-group/leaderboard-cli/internal/resilience"
)

// Summary describes a completed run.
type Summary struct {
	RunID    string
	URL      string
	Shape    leaderboard.Shape
	Layout   export.Layout
	Output   string
	Stats    leaderboard.Stats
	Duration time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder records run metrics on rec.
func WithRecorder(rec *monitoring.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = rec
	}
}

// Pipeline orchestrates a single leaderboard fetch.
type Pipeline struct {
	cfg      *config.Config
	fetcher  fetcher.Fetcher
	recorder *monitoring.Recorder
}

// New creates a Pipeline that downloads with f according to cfg.
func New(f fetcher.Fetcher, cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, fetcher: f}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run fetches one page, extracts entries and writes the output file. The
// output file is only touched once the response has been fetched and parsed,
// so a failed run leaves any previous output in place.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID))

	summary, err := p.run(ctx, log)
	elapsed := time.Since(start)

	if p.recorder != nil {
		var stats leaderboard.Stats
		if summary != nil {
			stats = summary.Stats
		}
		p.recorder.ObserveRun(err, stats, elapsed)
		if path := p.cfg.Metrics.Textfile; path != "" {
			if werr := p.recorder.WriteTextfile(path); werr != nil {
				log.Warn("pipeline: failed to write metrics", zap.Error(werr))
			}
		}
	}

	if err != nil {
		log.Error("pipeline: run failed",
			zap.String("status", monitoring.StatusFor(err)),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	summary.RunID = runID
	summary.Duration = elapsed
	log.Info("pipeline: run complete",
		zap.String("shape", string(summary.Shape)),
		zap.String("output", summary.Output),
		zap.Int("entries", summary.Stats.Entries),
		zap.Int("unique_addresses", summary.Stats.UniqueAddresses),
		zap.Duration("elapsed", elapsed),
	)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger) (*Summary, error) {
	src := p.cfg.Source
	out := p.cfg.Output

	url, err := fetcher.BuildURL(src.URL, src.Skip, src.Limit)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build url")
	}
	log.Info("pipeline: fetching leaderboard", zap.String("url", url))

	body, err := p.fetcher.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch")
	}
	defer body.Close() //nolint:errcheck

	res, err := parse(body, out.Shape)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: parse")
	}

	layout := export.LayoutFor(export.Layout(out.Layout), res.Shape)
	opts := export.Options{Layout: layout, Format: export.Format(out.Format)}
	if err := export.Write(out.Path, res.Entries, opts); err != nil {
		return nil, eris.Wrap(err, "pipeline: write")
	}

	return &Summary{
		URL:    url,
		Shape:  res.Shape,
		Layout: layout,
		Output: out.Path,
		Stats:  leaderboard.Summarize(res.Entries),
	}, nil
}

func parse(r io.Reader, shape string) (*leaderboard.Result, error) {
	if shape == "" || shape == "auto" {
		return leaderboard.Parse(r)
	}
	return leaderboard.ParseShape(r, leaderboard.Shape(shape))
}
