package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/wolfeidau/membership/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		User   commands.UserCmd   `cmd:"" help:"Manage users"`
		Org    commands.OrgCmd    `cmd:"" help:"Manage organizations"`
		Invite commands.InviteCmd `cmd:"" help:"Manage invitations"`
		Audit  commands.AuditCmd  `cmd:"" help:"Show the audit trail of an entity"`
		Keygen commands.KeygenCmd `cmd:"" help:"Generate a token signing key pair"`
		Token  commands.TokenCmd  `cmd:"" help:"Generate a JWT token"`

		Server  string        `help:"Server URL" default:"https://localhost:8443" env:"MEMBERSHIP_SERVER"`
		Bearer  string        `name:"token" help:"Bearer token" env:"MEMBERSHIP_TOKEN"`
		As      uuid.UUID     `help:"Act as this user ID on servers started with --no-auth" env:"MEMBERSHIP_ACTOR_ID"`
		Timeout time.Duration `help:"Request timeout" default:"30s"`
		Debug   bool          `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("membership"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:   cli.Debug,
		Version: version,
		Server:  cli.Server,
		Token:   cli.Bearer,
		ActorID: cli.As,
		Timeout: cli.Timeout,
	})
	cmd.FatalIfErrorf(err)
}
