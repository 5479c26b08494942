package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	CheckIn(ctx context.Context) error
	List(ctx context.Context) error
	Attach(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit". Command errors are printed and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("deadbox> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		if parts[0] == "exit" || parts[0] == "quit" {
			printlnFn("Bye!")
			return
		}
		if parts[0] == "help" {
			printHelp(a.isLoggedIn())
			continue
		}

		if err := dispatch(ctx, a, parts); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func printHelp(loggedIn bool) {
	if loggedIn {
		printlnFn("Available commands: me, checkin, (l)ist, attach <id> <file>, logout, exit")
	} else {
		printlnFn("Available commands: register, login, exit")
	}
}

var errUnknownCommand = errors.New("unknown command")

func dispatch(ctx context.Context, a execIface, parts []string) error {
	switch parts[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "me":
		return a.Me(ctx)
	case "checkin":
		return a.CheckIn(ctx)
	case "l", "list":
		return a.List(ctx)
	case "attach":
		return a.Attach(ctx, parts[1:])
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, parts[0])
	}
}

// RunCommand executes a single command from the command line.
func (a *App) RunCommand(ctx context.Context, args []string) error {
	if args[0] == "help" {
		printHelp(a.isLoggedIn())
		return nil
	}
	return dispatch(ctx, a, args)
}
