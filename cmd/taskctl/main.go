// Command taskctl is a terminal client for the taskboard API.
//
// Usage:
//
//	taskctl [-server URL] [-session FILE] <command> [flags] [args]
//
// Run "taskctl help" for the list of commands.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/taskboard-api/internal/client"
)

const (
	defaultServer = "http://localhost:8080"
	serverEnv     = "TASKBOARD_URL"
)

// errUsage marks errors caused by bad invocation; they print usage.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}
	if err := app.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// cli holds everything a command needs. Fields are set by run from global
// flags unless a test injected them first.
type cli struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	server   string
	sessions client.SessionStore
	api      *client.Client
	session  *client.Session
}

type command struct {
	summary string
	run     func(c *cli, ctx context.Context, args []string) error
}

func commands() map[string]command {
	return map[string]command{
		"register": {"create an account and log in", (*cli).register},
		"login":    {"log in and remember the session", (*cli).login},
		"logout":   {"forget the stored session", (*cli).logout},
		"whoami":   {"show the logged-in user", (*cli).whoami},
		"health":   {"check the server", (*cli).health},
		"tasks":    {"list, show, create, update and delete tasks", (*cli).tasks},
		"users":    {"manage users (admin)", (*cli).users},
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	server := fs.String("server", envOr(serverEnv, defaultServer), "taskboard API base URL (env "+serverEnv+")")
	sessionPath := fs.String("session", "", "session file (default: <user config dir>/taskboard/session.json)")
	fs.Usage = func() { c.usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 || rest[0] == "help" {
		c.usage(fs)
		return nil
	}
	cmd, ok := commands()[rest[0]]
	if !ok {
		c.usage(fs)
		return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}

	if err := c.setup(*server, *sessionPath); err != nil {
		return err
	}
	return cmd.run(c, ctx, rest[1:])
}

// setup builds the API client and restores any stored session.
func (c *cli) setup(server, sessionPath string) error {
	c.server = server
	if c.sessions == nil {
		if sessionPath == "" {
			p, err := client.DefaultSessionPath()
			if err != nil {
				return err
			}
			sessionPath = p
		}
		c.sessions = client.NewFileSessionStore(sessionPath)
	}

	api, err := client.New(server)
	if err != nil {
		return err
	}
	c.api = api

	sess, err := c.sessions.Load()
	switch {
	case errors.Is(err, client.ErrNoSession):
		return nil
	case err != nil:
		return err
	}
	if sess.Expired(c.now()) {
		fmt.Fprintln(c.errOut, "stored session has expired; please log in again")
		return c.sessions.Clear()
	}
	c.session = sess
	c.api.SetToken(sess.Token)
	return nil
}

// requireSession fails fast when no one is logged in.
func (c *cli) requireSession() error {
	if c.session == nil {
		return errors.New("not logged in; run \"taskctl login\" first")
	}
	return nil
}

// authFailed clears a session the server no longer accepts.
func (c *cli) authFailed(err error) error {
	if client.IsUnauthorized(err) && c.session != nil {
		if cerr := c.sessions.Clear(); cerr != nil {
			fmt.Fprintln(c.errOut, "warning:", cerr)
		}
		c.session = nil
		return fmt.Errorf("%w; session cleared, please log in again", err)
	}
	return err
}

func (c *cli) usage(fs *flag.FlagSet) {
	fmt.Fprintln(c.errOut, "Usage: taskctl [global flags] <command> [flags] [args]")
	fmt.Fprintln(c.errOut)
	fmt.Fprintln(c.errOut, "Commands:")
	cmds := commands()
	for _, name := range []string{"register", "login", "logout", "whoami", "health", "tasks", "users"} {
		fmt.Fprintf(c.errOut, "  %-9s %s\n", name, cmds[name].summary)
	}
	fmt.Fprintln(c.errOut)
	fmt.Fprintln(c.errOut, "Global flags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
