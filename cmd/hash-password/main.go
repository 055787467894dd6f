// Command hash-password prints bcrypt hashes for passwords read from stdin,
// one per line, for seeding users directly into a database.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", 10, "bcrypt cost (4-31)")
	flag.Parse()

	if err := run(context.Background(), os.Stdin, os.Stdout, *cost); err != nil {
		fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer, cost int) error {
	hasher := auth.NewBcryptHasher(cost)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		password := strings.TrimRight(scanner.Text(), "\r")
		if password == "" {
			continue
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, hash)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
