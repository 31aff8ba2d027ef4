// Package flow runs the playlist build from artist selection to summary.
package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deepcut/internal/catalog"
	"deepcut/internal/cover"
	"deepcut/internal/events"
	"deepcut/internal/playlist"
	"deepcut/internal/porter"
	"deepcut/internal/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Service is everything a run needs from the streaming service.
type Service interface {
	catalog.API
	porter.Editor
	cover.Uploader
}

// Options describe one build.
type Options struct {
	Artists      []playlist.Artist
	AlbumTypes   []playlist.AlbumType
	ExcludeShort bool
	Strategy     playlist.Strategy
	Target       porter.Target

	// CoverURL is uploaded as the playlist image unless NoCover is set.
	CoverURL string
	NoCover  bool

	// DryRun collects tracks without touching any playlist. When ExportPath
	// is set the collected list is written there as CSV.
	DryRun     bool
	ExportPath string
}

// Result of a successful run.
type Result struct {
	RunID     string
	Playlist  playlist.Playlist
	Collected int
	Added     int
	DryRun    bool
}

// ExportRow is one line of the dry-run CSV.
type ExportRow struct {
	Position int    `csv:"position"`
	ID       string `csv:"id"`
	URI      string `csv:"uri"`
}

// Runner executes builds against a service.
type Runner struct {
	api         Service
	logger      *zap.Logger
	batchPause  time.Duration
	concurrency int
}

// NewRunner creates a runner. batchPause spaces playlist adds and
// concurrency bounds parallel detail lookups.
func NewRunner(api Service, logger *zap.Logger, batchPause time.Duration, concurrency int) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		api:         api,
		logger:      logger,
		batchPause:  batchPause,
		concurrency: concurrency,
	}
}

// Run executes one build, reporting through sink. It always ends with a
// DoneEvent followed by a return to the Idle state. Side effects made before
// a failure are not rolled back.
func (r *Runner) Run(ctx context.Context, opts Options, sink events.Sink) (Result, error) {
	res := Result{RunID: uuid.NewString(), DryRun: opts.DryRun}
	logger := r.logger.With(zap.String("run_id", res.RunID))
	started := time.Now()

	logger.Info("flow started",
		zap.Int("artists", len(opts.Artists)),
		zap.String("strategy", string(opts.Strategy)),
		zap.String("mode", string(opts.Target.Mode)),
		zap.Bool("dry_run", opts.DryRun))

	err := r.run(ctx, opts, sink, logger, &res)

	category := playlist.Classify(err)
	if err != nil {
		logger.Error("flow failed", zap.String("category", string(category)), zap.Error(err))
		sink.Logf(events.SeverityError, "%s: %v", capitalize(string(category)), err)
	} else {
		logger.Info("flow finished",
			zap.Int("collected", res.Collected),
			zap.Int("added", res.Added),
			zap.Duration("took", time.Since(started)))
	}

	sink.Emit(events.DoneEvent{
		Playlist:  res.Playlist,
		Collected: res.Collected,
		Added:     res.Added,
		DryRun:    res.DryRun,
		Err:       err,
		Category:  category,
	})
	sink.Emit(events.StateEvent{State: events.StateIdle})
	return res, err
}

func (r *Runner) run(ctx context.Context, opts Options, sink events.Sink, logger *zap.Logger, res *Result) error {
	sink.Emit(events.StateEvent{State: events.StateValidating})
	if err := Validate(opts); err != nil {
		return err
	}

	sink.Emit(events.StateEvent{State: events.StateCollectingCatalog})
	sink.Logf(events.SeverityInfo, "Collecting tracks for %d artist(s) with strategy %s", len(opts.Artists), opts.Strategy)
	collector := catalog.NewCollector(r.api, logger, sink, r.concurrency)
	uris, err := collector.Collect(ctx, catalog.Request{
		Artists:      opts.Artists,
		AlbumTypes:   opts.AlbumTypes,
		ExcludeShort: opts.ExcludeShort,
		Strategy:     opts.Strategy,
	})
	if err != nil {
		return err
	}
	res.Collected = len(uris)
	sink.Logf(events.SeveritySuccess, "Collected %d unique tracks", len(uris))
	if len(uris) == 0 {
		return &playlist.ConfigError{Message: "no tracks to add"}
	}

	if opts.DryRun {
		return r.export(opts, uris, sink)
	}

	sink.Emit(events.StateEvent{State: events.StateManagingPlaylist})
	p := porter.NewPorter(r.api, logger, sink, r.batchPause)
	target := opts.Target
	if target.Mode == playlist.ModeNew && target.Description == "" {
		target.Description = Description(opts.Artists)
	}
	pl, err := p.Prepare(ctx, target)
	if err != nil {
		return err
	}
	res.Playlist = pl

	sink.Emit(events.StateEvent{State: events.StateAddingTracks})
	sink.Logf(events.SeverityWarn, "Adding tracks to the playlist (%d total)...", len(uris))
	sink.Progress(events.PhaseAdding, 0, len(uris), 0)
	added, err := p.AddTracks(ctx, pl.ID, uris, func(added, total int) {
		sink.Progress(events.PhaseAdding, added, total, added)
	})
	res.Added = added
	if err != nil {
		return err
	}

	if !opts.NoCover {
		sink.Emit(events.StateEvent{State: events.StateUploadingCover})
		cover.NewSetter(r.api, logger, sink).Set(ctx, pl.ID, opts.CoverURL)
	}

	sink.Emit(events.StateEvent{State: events.StateSummarizing})
	final, err := p.Check(ctx, pl.ID)
	if err != nil {
		return fmt.Errorf("fetching playlist summary: %w", err)
	}
	res.Playlist = final
	sink.Logf(events.SeveritySuccess, "Done. Playlist '%s' now has %d tracks, %d added", final.Name, final.TrackCount, added)
	return nil
}

func (r *Runner) export(opts Options, uris []string, sink events.Sink) error {
	if opts.ExportPath == "" {
		sink.Logf(events.SeverityInfo, "Dry run: no playlist was changed")
		return nil
	}

	rows := lo.Map(uris, func(uri string, i int) ExportRow {
		return ExportRow{Position: i + 1, ID: strings.TrimPrefix(uri, "spotify:track:"), URI: uri}
	})
	if err := utils.WriteToCsvFile(opts.ExportPath, rows); err != nil {
		return fmt.Errorf("writing %s: %w", opts.ExportPath, err)
	}
	sink.Logf(events.SeveritySuccess, "Dry run: wrote %d tracks to %s", len(rows), opts.ExportPath)
	return nil
}

// Validate checks the options before any call to the service.
func Validate(opts Options) error {
	if len(opts.Artists) == 0 {
		return &playlist.ConfigError{Message: "select at least one artist"}
	}
	if _, err := playlist.ParseStrategy(string(opts.Strategy)); err != nil {
		return err
	}
	if opts.Strategy != playlist.StrategyIceberg && len(opts.AlbumTypes) == 0 {
		return &playlist.ConfigError{Message: "select at least one album type"}
	}
	if opts.DryRun {
		return nil
	}
	return porter.Validate(opts.Target)
}

// Description is the default description of a new playlist.
func Description(artists []playlist.Artist) string {
	names := lo.Map(artists, func(a playlist.Artist, _ int) string { return a.Name })
	return "Created by deepcut. Artists: " + strings.Join(names, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
