package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompt prints label and reads one trimmed line.
func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.errOut, label+": ")
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal and
// falls back to a plain line otherwise, so scripts can pipe it in.
func (c *cli) promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return c.prompt("Password")
	}
	fmt.Fprint(c.errOut, "Password: ")
	pw, err := readPassword(fd)
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// valueOrPrompt returns v, asking for it when empty.
func (c *cli) valueOrPrompt(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return c.prompt(label)
}

func (c *cli) passwordOrPrompt(v string) (string, error) {
	if v != "" {
		return v, nil
	}
	return c.promptPassword()
}
