package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the prompt needs.
type execIface interface {
	Exec(ctx context.Context, args []string) error
}

// runREPL reads commands line by line until EOF, "exit" or "quit". Command
// errors are printed and the loop goes on. Commands prompt on the same
// reader, so it must not be wrapped in another buffer.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "vaultctl%s> ", prefixed(statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				fmt.Fprintln(out)
				return
			}
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		}

		if err := a.Exec(ctx, parts); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

func prefixed(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
