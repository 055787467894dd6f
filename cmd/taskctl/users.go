package main

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (c *cli) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: users <list|add|rm>", errUsage)
	}
	if err := c.requireSession(); err != nil {
		return err
	}

	var err error
	switch sub, rest := args[0], args[1:]; sub {
	case "list":
		err = c.listUsers(ctx)
	case "add":
		err = c.addUser(ctx, rest)
	case "rm":
		err = c.removeUser(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown users command %q", errUsage, sub)
	}
	return c.authFailed(err)
}

func (c *cli) listUsers(ctx context.Context) error {
	users, err := c.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role, u.CreatedAt.Format(dateLayout))
	}
	return tw.Flush()
}

func (c *cli) addUser(ctx context.Context, args []string) error {
	fs := c.flagSet("users add")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "initial password (prompted without echo when omitted)")
	role := fs.String("role", "user", "user or admin")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	req, err := c.accountRequest(*username, *email, *password, *role)
	if err != nil {
		return err
	}
	u, err := c.api.AddUser(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "User %s created with id %s (%s).\n", u.Username, u.ID, u.Role)
	return nil
}

func (c *cli) removeUser(ctx context.Context, args []string) error {
	id, err := singleID(args, "users rm <id>")
	if err != nil {
		return err
	}
	msg, err := c.api.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}
