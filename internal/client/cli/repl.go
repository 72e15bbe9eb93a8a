package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ListForms(ctx context.Context, search string) error
	ShowForm(ctx context.Context, id string) error
	Submit(ctx context.Context, formID string) error
	ListSubmissions(ctx context.Context, status string) error
	ShowSubmission(ctx context.Context, id string) error
	AdminForms(ctx context.Context, status string) error
	CreateForm(ctx context.Context, path string) error
	FormAction(ctx context.Context, action, id string) error
	AdminSubmissions(ctx context.Context, status string) error
	Review(ctx context.Context, id, status, notes string) error
	Stats(ctx context.Context) error
}

const (
	helpGuest  = "Available commands: register, login, exit"
	helpClient = "Available commands: whoami, forms [search], form <id>, submit <form-id>, submissions [status], submission <id>, logout, exit"
	helpAdmin  = "Available commands: whoami, admin-forms [status], create-form <file>, activate|archive|duplicate|delete-form <id>, admin-submissions [status], review <id> <status> [notes], stats, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the onboarding CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done, or
// when the user types "exit" or "quit".
//
// Errors from the auth commands are not printed here because the session
// store already notifies the user; everything else is reported inline.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("onboard %s> ", statusFn()))

		line, err := in.ReadString('\n')
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
			switch {
			case a.isAdmin():
				printlnFn(helpAdmin)
			case a.isLoggedIn():
				printlnFn(helpClient)
			default:
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			report(a.WhoAmI(ctx))

		case "forms":
			report(a.ListForms(ctx, strings.Join(args, " ")))

		case "form":
			if len(args) == 0 {
				printlnFn("Usage: form <id>")
				continue
			}
			report(a.ShowForm(ctx, args[0]))

		case "submit":
			if len(args) == 0 {
				printlnFn("Usage: submit <form-id>")
				continue
			}
			report(a.Submit(ctx, args[0]))

		case "submissions":
			report(a.ListSubmissions(ctx, first(args)))

		case "submission":
			if len(args) == 0 {
				printlnFn("Usage: submission <id>")
				continue
			}
			report(a.ShowSubmission(ctx, args[0]))

		case "admin-forms":
			report(a.AdminForms(ctx, first(args)))

		case "create-form":
			if len(args) == 0 {
				printlnFn("Usage: create-form <file.json|file.yaml>")
				continue
			}
			report(a.CreateForm(ctx, args[0]))

		case "activate", "archive", "duplicate", "delete-form":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			report(a.FormAction(ctx, cmd, args[0]))

		case "admin-submissions":
			report(a.AdminSubmissions(ctx, first(args)))

		case "review":
			if len(args) < 2 {
				printlnFn("Usage: review <id> <status> [notes]")
				continue
			}
			report(a.Review(ctx, args[0], args[1], strings.Join(args[2:], " ")))

		case "stats":
			report(a.Stats(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil && !errors.Is(err, errDenied) {
		printlnFn("Error:", err)
	}
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
