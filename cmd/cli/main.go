package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ocontest/ocontest-cli/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login         commands.LoginCmd         `cmd:"" help:"Log in to the platform"`
		Logout        commands.LogoutCmd        `cmd:"" help:"Log out and clear stored credentials"`
		Register      commands.RegisterCmd      `cmd:"" help:"Create a creator or brand account"`
		Whoami        commands.WhoamiCmd        `cmd:"" help:"Show the current session"`
		Token         commands.TokenCmd         `cmd:"" help:"Show the decoded access token claims"`
		Contests      commands.ContestsCmd      `cmd:"" help:"Browse and manage contests"`
		Videos        commands.VideosCmd        `cmd:"" help:"Browse and manage videos"`
		Notifications commands.NotificationsCmd `cmd:"" help:"Read platform notifications"`

		Server   string `help:"API base URL" env:"OCONTEST_API_URL" default:"https://api.ocontest.xyz/api"`
		StateDir string `help:"Directory for stored credentials" env:"OCONTEST_STATE_DIR"`
		Debug    bool   `help:"Enable debug mode."`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	err := cmd.Run(&commands.Globals{
		Debug:    cli.Debug,
		Version:  version,
		Server:   cli.Server,
		StateDir: cli.StateDir,
	})
	cmd.FatalIfErrorf(err)
}
