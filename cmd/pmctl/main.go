// Command pmctl is a terminal front end for the project board API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/yukikurage/project-board-api/internal/client"
)

const usage = `usage: pmctl [-api URL] [-token-file PATH] <command> [args]

commands:
  register -name N -email E -password P [-role R]
  login -email E -password P
  logout
  me
  profile [-name N] [-email E]
  password -current P -new P
  stats
  projects [-keyword K]
  project create -title T [-description D] [-due YYYY-MM-DD]
  project update ID [-title T] [-description D] [-status S] [-due YYYY-MM-DD|""]
  project delete ID
  tasks -project ID [-keyword K]
  task create -project ID -title T [-description D] [-priority P] [-due YYYY-MM-DD]
  task update ID [-title T] [-description D] [-status S] [-priority P] [-due YYYY-MM-DD|""] [-assignee ID]
  task delete ID
  board -project ID
  move -project ID -task ID -status S
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pmctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pmctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apiURL := fs.String("api", envOr("PMCTL_API", "http://localhost:5000"), "API base URL")
	tokenFile := fs.String("token-file", envOr("PMCTL_TOKEN_FILE", defaultTokenPath()), "where the token is kept")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if fs.NArg() == 0 {
		return errors.New("missing command\n" + usage)
	}

	tokens := tokenStore{path: *tokenFile}
	token, err := tokens.Load()
	if err != nil {
		return err
	}

	a := &app{
		api:    client.New(*apiURL, client.WithToken(token)),
		tokens: tokens,
		out:    stdout,
	}
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".pmctl-token"
	}
	return filepath.Join(dir, "pmctl", "token")
}
