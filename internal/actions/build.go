package actions

import (
	"context"
	"fmt"
	"os"
	"strings"

	"deepcut/internal/adapters"
	"deepcut/internal/config"
	"deepcut/internal/events"
	"deepcut/internal/flow"
	"deepcut/internal/playlist"
	"deepcut/internal/porter"
	"deepcut/internal/session"
	"deepcut/internal/ui"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v2"
)

// buildFlags are the build options as given on the command line. Empty
// values fall back to the configured defaults.
type buildFlags struct {
	Strategy     string
	AlbumTypes   []string
	ExcludeShort *bool
	Public       *bool
	Mode         string
	Name         string
	Playlist     string
	Description  string
	NoCover      bool
	DryRun       bool
	Export       string
}

func flagsFrom(c *cli.Context) buildFlags {
	f := buildFlags{
		Strategy:    c.String("strategy"),
		AlbumTypes:  c.StringSlice("album-types"),
		Mode:        c.String("mode"),
		Name:        c.String("name"),
		Playlist:    c.String("playlist"),
		Description: c.String("description"),
		NoCover:     c.Bool("no-cover"),
		DryRun:      c.Bool("dry-run"),
		Export:      c.String("export"),
	}
	if c.IsSet("exclude-short") {
		v := c.Bool("exclude-short")
		f.ExcludeShort = &v
	}
	if c.IsSet("public") {
		v := c.Bool("public")
		f.Public = &v
	}
	return f
}

// resolveOptions merges flags over defaults and parses them. Artists are
// filled in separately.
func resolveOptions(f buildFlags, d config.Defaults) (flow.Options, error) {
	var opts flow.Options

	strategy, err := playlist.ParseStrategy(firstNonEmpty(f.Strategy, d.Strategy))
	if err != nil {
		return opts, err
	}
	names := f.AlbumTypes
	if len(names) == 0 {
		names = d.AlbumTypes
	}
	types, err := playlist.ParseAlbumTypes(splitList(names))
	if err != nil {
		return opts, err
	}
	mode, err := playlist.ParseMode(firstNonEmpty(f.Mode, d.Mode))
	if err != nil {
		return opts, err
	}

	opts = flow.Options{
		AlbumTypes:   types,
		ExcludeShort: d.ExcludeShort,
		Strategy:     strategy,
		Target: porter.Target{
			Mode:        mode,
			Name:        f.Name,
			ExistingID:  f.Playlist,
			Public:      d.Public,
			Description: f.Description,
		},
		NoCover:    f.NoCover,
		DryRun:     f.DryRun || f.Export != "",
		ExportPath: f.Export,
	}
	if f.ExcludeShort != nil {
		opts.ExcludeShort = *f.ExcludeShort
	}
	if f.Public != nil {
		opts.Target.Public = *f.Public
	}
	return opts, nil
}

// Build collects tracks for the selected artists and fills a playlist.
func Build(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	interactive := !c.Bool("no-input")

	opts, err := resolveOptions(flagsFrom(c), app.Config.Defaults)
	if err != nil {
		return Report(err)
	}

	adapter, err := app.Adapter(c.Context, interactive)
	if err != nil {
		return Report(err)
	}

	for _, name := range c.StringSlice("artist") {
		if err := addArtist(c.Context, adapter, app.Session, name); err != nil {
			return Report(err)
		}
	}
	if interactive {
		if err := promptArtists(c.Context, adapter, app.Session); err != nil {
			return Report(err)
		}
		if err := promptTarget(&opts); err != nil {
			return Report(err)
		}
	}
	opts.Artists = app.Session.Artists()
	opts.CoverURL = app.Session.CoverURL()

	runner := flow.NewRunner(adapter, app.Logger, app.Config.BatchPause, app.Config.DetailConcurrency)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	queue := events.NewQueue(64)
	errc := make(chan error, 1)
	go func() {
		defer queue.Close()
		errc <- app.Session.Run(ctx, func(ctx context.Context) error {
			res, err := runner.Run(ctx, opts, queue.Sink())
			if err == nil && !res.DryRun {
				app.Session.SetPlaylistID(res.Playlist.ID)
			}
			return err
		})
	}()

	if c.Bool("plain") {
		ui.Print(os.Stdout, queue.Events())
	} else if _, err := ui.Run(queue.Events(), cancel); err != nil {
		app.Logger.Sugar().Warnw("live view unavailable, printing plain output", "error", err)
		ui.Print(os.Stdout, queue.Events())
	}

	return Report(<-errc)
}

// addArtist resolves name to an artist and adds it to the selection.
func addArtist(ctx context.Context, a *adapters.SpotifyAdapter, s *session.Session, name string) error {
	var artist playlist.Artist
	lookup := func(ctx context.Context) error {
		var err error
		artist, err = a.SearchArtist(ctx, name)
		return err
	}
	if err := spinner.New().Title(fmt.Sprintf("Searching for %s...", name)).Context(ctx).ActionWithErr(lookup).Run(); err != nil {
		return err
	}
	if s.AddArtist(artist) {
		fmt.Printf("Selected %s (%d followers)\n", artist.Name, artist.Followers)
	} else {
		fmt.Printf("%s is already selected\n", artist.Name)
	}
	return nil
}

// promptArtists asks for more artists until the user stops. At least one
// artist must end up selected.
func promptArtists(ctx context.Context, a *adapters.SpotifyAdapter, s *session.Session) error {
	for {
		if len(s.Artists()) > 0 {
			more := false
			if err := huh.NewConfirm().
				Title(fmt.Sprintf("Selected: %s. Add another artist?", artistNames(s.Artists()))).
				Value(&more).
				Run(); err != nil {
				return err
			}
			if !more {
				return nil
			}
		}

		var name string
		if err := huh.NewInput().
			Title("Search for an artist").
			Value(&name).
			Run(); err != nil {
			return err
		}
		if strings.TrimSpace(name) == "" {
			continue
		}

		err := addArtist(ctx, a, s, name)
		if playlist.IsNotFound(err) {
			fmt.Printf("No artist found for %q\n", name)
			continue
		}
		if err != nil {
			return err
		}
	}
}

// promptTarget asks for the playlist name or ID when the mode needs one.
func promptTarget(opts *flow.Options) error {
	if opts.DryRun {
		return nil
	}
	switch opts.Target.Mode {
	case playlist.ModeNew:
		if strings.TrimSpace(opts.Target.Name) != "" {
			return nil
		}
		return huh.NewInput().
			Title("Name of the new playlist").
			Value(&opts.Target.Name).
			Run()
	default:
		if playlist.ParseID(opts.Target.ExistingID) != "" {
			return nil
		}
		return huh.NewInput().
			Title(fmt.Sprintf("Playlist ID or URL to %s", strings.ToLower(string(opts.Target.Mode)))).
			Value(&opts.Target.ExistingID).
			Run()
	}
}

func artistNames(artists []playlist.Artist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// splitList accepts both repeated flags and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
