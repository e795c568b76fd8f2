package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Upload(ctx context.Context) error
	List(ctx context.Context) error
	Delete(ctx context.Context) error
	Metrics(ctx context.Context) error
	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	Deactivate(ctx context.Context) error
	Sync(ctx context.Context) error
	Rekey(ctx context.Context) error
}

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		s = a.sess.User.Username + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// runREPL starts a simple read-eval-print loop for the vault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cfdi %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: upload, (l)ist, delete, metrics, users, adduser, deactivate, sync, rekey, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "metrics":
			_ = a.Metrics(ctx)

		case "users":
			_ = a.Users(ctx)

		case "adduser":
			_ = a.AddUser(ctx)

		case "deactivate":
			_ = a.Deactivate(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "rekey":
			_ = a.Rekey(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
