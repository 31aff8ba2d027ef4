package actions

import (
	"context"
	"fmt"

	"deepcut/internal/playlist"
	"deepcut/internal/porter"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v2"
)

// Search looks up the best matching artist for each argument.
func Search(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return Report(&playlist.ConfigError{Message: "an artist name is required"})
	}

	for _, name := range c.Args().Slice() {
		var artist playlist.Artist
		lookup := func(ctx context.Context) error {
			a, err := app.Adapter(ctx, false)
			if err != nil {
				return err
			}
			artist, err = a.SearchArtist(ctx, name)
			return err
		}
		err := spinner.New().Title(fmt.Sprintf("Searching for %s...", name)).Context(c.Context).ActionWithErr(lookup).Run()
		if playlist.IsNotFound(err) {
			fmt.Printf("No artist found for %q\n", name)
			continue
		}
		if err != nil {
			return Report(err)
		}
		printArtist(artist)
	}
	return nil
}

// Check shows a preview of an existing playlist.
func Check(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}

	input := c.Args().First()
	if input == "" && !c.Bool("no-input") {
		if err := huh.NewInput().
			Title("Enter the playlist ID or URL").
			Value(&input).
			Run(); err != nil {
			return Report(err)
		}
	}

	var pl playlist.Playlist
	check := func(ctx context.Context) error {
		a, err := app.Adapter(ctx, false)
		if err != nil {
			return err
		}
		pl, err = porter.NewPorter(a, app.Logger, nil, 0).Check(ctx, input)
		return err
	}
	if err := spinner.New().Title("Checking playlist...").Context(c.Context).ActionWithErr(check).Run(); err != nil {
		return Report(err)
	}

	printPlaylist(pl)
	app.Session.SetPlaylistID(pl.ID)
	return nil
}

// Delete unfollows a playlist after confirmation.
func Delete(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}

	input := c.Args().First()
	if input == "" && !c.Bool("no-input") {
		if err := huh.NewInput().
			Title("Enter the playlist ID or URL to delete").
			Value(&input).
			Run(); err != nil {
			return Report(err)
		}
	}
	if playlist.ParseID(input) == "" {
		return Report(&playlist.ConfigError{Message: "a playlist ID or URL is required"})
	}

	if !c.Bool("yes") {
		confirmed := false
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete playlist %s?", playlist.ParseID(input))).
			Description("The playlist is removed from your library. This cannot be undone here.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run(); err != nil {
			return Report(err)
		}
		if !confirmed {
			fmt.Println("Nothing deleted.")
			return nil
		}
	}

	remove := func(ctx context.Context) error {
		a, err := app.Adapter(ctx, false)
		if err != nil {
			return err
		}
		return porter.NewPorter(a, app.Logger, nil, 0).Delete(ctx, input)
	}
	if err := spinner.New().Title("Deleting playlist...").Context(c.Context).ActionWithErr(remove).Run(); err != nil {
		return Report(err)
	}

	fmt.Printf("Playlist %s deleted.\n", playlist.ParseID(input))
	return nil
}

func printArtist(a playlist.Artist) {
	fmt.Printf("%s  (%d followers)\n  id:  %s\n", a.Name, a.Followers, a.ID)
	if a.URL != "" {
		fmt.Printf("  url: %s\n", a.URL)
	}
}

func printPlaylist(pl playlist.Playlist) {
	visibility := "private"
	if pl.Public {
		visibility = "public"
	}
	fmt.Printf("%s  (%d tracks, %s, by %s)\n  id:  %s\n", pl.Name, pl.TrackCount, visibility, pl.Owner, pl.ID)
	if pl.Description != "" {
		fmt.Printf("  %s\n", pl.Description)
	}
	if pl.URL != "" {
		fmt.Printf("  url: %s\n", pl.URL)
	}
}
