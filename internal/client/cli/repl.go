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

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Confirm(ctx context.Context) error
	Resend(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Analyze(ctx context.Context, args []string) error
	Pipeline(ctx context.Context, args []string) error
	Cameras(ctx context.Context) error
	Camera(ctx context.Context, args []string) error
	AddCamera(ctx context.Context) error
	EditCamera(ctx context.Context, args []string) error
	DelCamera(ctx context.Context, args []string) error
}

var _ execIface = (*App)(nil)

const (
	helpSignedOut = "Available commands: login, register, confirm, resend, forgot, reset, help, exit"
	helpSignedIn  = "Available commands: whoami, analyze <url> [--frame], pipeline <url> [--frame], " +
		"cameras, camera <id>, addcamera, editcamera <id>, delcamera <id>, logout, help, exit"
)

// runREPL reads commands from reader until EOF or exit/quit. Handlers print
// their own results, so their errors are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("camkeeper %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "login":
			_ = a.Login(ctx)
		case "register":
			_ = a.Register(ctx)
		case "confirm":
			_ = a.Confirm(ctx)
		case "resend":
			_ = a.Resend(ctx)
		case "forgot":
			_ = a.Forgot(ctx)
		case "reset":
			_ = a.Reset(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "analyze":
			_ = a.Analyze(ctx, args)
		case "pipeline":
			_ = a.Pipeline(ctx, args)
		case "cameras":
			_ = a.Cameras(ctx)
		case "camera":
			_ = a.Camera(ctx, args)
		case "addcamera":
			_ = a.AddCamera(ctx)
		case "editcamera":
			_ = a.EditCamera(ctx, args)
		case "delcamera":
			_ = a.DelCamera(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
