package actions

import (
	"context"
	"fmt"

	"deepcut/internal/playlist"

	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v2"
)

// Login runs the browser login flow and caches the token.
func Login(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	m, err := app.authManager()
	if err != nil {
		return Report(err)
	}

	client, err := m.Login(c.Context)
	if err != nil {
		return Report(err)
	}
	app.client = client

	return Whoami(c)
}

// Logout removes the cached token.
func Logout(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}
	m, err := app.authManager()
	if err != nil {
		return Report(err)
	}
	if err := m.Logout(); err != nil {
		return Report(err)
	}
	fmt.Println("Logged out.")
	return nil
}

// Whoami prints the account of the cached token.
func Whoami(c *cli.Context) error {
	app, err := appFrom(c)
	if err != nil {
		return err
	}

	var user playlist.User
	fetch := func(ctx context.Context) error {
		a, err := app.Adapter(ctx, false)
		if err != nil {
			return err
		}
		user, err = a.CurrentUser(ctx)
		return err
	}
	if err := spinner.New().Title("Checking account...").Context(c.Context).ActionWithErr(fetch).Run(); err != nil {
		return Report(err)
	}

	fmt.Println("You are logged in as:", user.DisplayName, "("+user.ID+")")
	if user.URL != "" {
		fmt.Println(user.URL)
	}
	return nil
}
