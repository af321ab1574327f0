package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/vaultx/internal/client/client"
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

type command struct {
	usage   string
	private bool
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"ping":   {usage: "ping", run: (*App).Ping},
	"keygen": {usage: "keygen [-passphrase]", run: (*App).Keygen},
	"signup": {usage: "signup", run: (*App).Signup},
	"login":  {usage: "login", run: (*App).Login},
	"logout": {usage: "logout", run: (*App).Logout},
	"list":   {usage: "list [-type secret|key|password]", private: true, run: (*App).List},
	"get":    {usage: "get <id>", private: true, run: (*App).Get},
	"add":    {usage: "add -title <title> [-type t] [-description d] [-multiline]", private: true, run: (*App).Add},
	"delete": {usage: "delete <id>", private: true, run: (*App).Delete},
	"backup": {usage: "backup [-download]", private: true, run: (*App).Backup},
}

var commandOrder = []string{"ping", "keygen", "signup", "login", "logout", "list", "get", "add", "delete", "backup"}

// Exec runs one command line.
func (a *App) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if args[0] == "help" {
		a.printHelp()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q, see `vaultctl help`", ErrUsage, args[0])
	}
	if cmd.private && !a.isLoggedIn() {
		return client.ErrNotLoggedIn
	}

	err := cmd.run(a, ctx, args[1:])
	if errors.Is(err, ErrUsage) {
		return fmt.Errorf("%w: vaultctl %s", ErrUsage, cmd.usage)
	}
	if cmd.private && errors.Is(err, client.ErrUnauthorized) {
		_ = a.clearSession(ctx)
		return fmt.Errorf("%w, log in again", err)
	}
	return err
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.out, "  %s\n", commands[name].usage)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseArgs(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() != positional {
		return nil, ErrUsage
	}
	return fs.Args(), nil
}
