package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/client"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *cli) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := c.flagSet("register")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted without echo when omitted)")
	role := fs.String("role", "", "role: user or admin (server may ignore)")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	req, err := c.accountRequest(*username, *email, *password, *role)
	if err != nil {
		return err
	}
	res, err := c.api.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.remember(res)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := c.flagSet("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted without echo when omitted)")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	e, err := c.valueOrPrompt(*email, "Email")
	if err != nil {
		return err
	}
	pw, err := c.passwordOrPrompt(*password)
	if err != nil {
		return err
	}

	res, err := c.api.Login(ctx, e, pw)
	if err != nil {
		return err
	}
	return c.remember(res)
}

func (c *cli) remember(res *api.AuthResponse) error {
	sess := &client.Session{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User}
	if err := c.sessions.Save(sess); err != nil {
		return err
	}
	c.session = sess
	c.api.SetToken(res.Token)
	fmt.Fprintf(c.out, "%s Logged in as %s (%s).\n", res.Message, res.User.Username, res.User.Role)
	return nil
}

func (c *cli) logout(_ context.Context, _ []string) error {
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	c.session = nil
	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func (c *cli) whoami(ctx context.Context, _ []string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	me, err := c.api.Me(ctx)
	if err != nil {
		return c.authFailed(err)
	}
	fmt.Fprintf(c.out, "%s <%s> role=%s id=%s\n", me.Username, me.Email, me.Role, me.ID)
	return nil
}

func (c *cli) health(ctx context.Context, _ []string) error {
	res, err := c.api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %s (%s)\n", res.Status, res.Message, c.server)
	return nil
}

// accountRequest fills the register payload, prompting for anything missing.
func (c *cli) accountRequest(username, email, password, role string) (api.RegisterRequest, error) {
	var err error
	if username, err = c.valueOrPrompt(username, "Username"); err != nil {
		return api.RegisterRequest{}, err
	}
	if email, err = c.valueOrPrompt(email, "Email"); err != nil {
		return api.RegisterRequest{}, err
	}
	if password, err = c.passwordOrPrompt(password); err != nil {
		return api.RegisterRequest{}, err
	}
	return api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.Role(role),
	}, nil
}
