// Package cli implements the operator client: one-shot signup, login, and
// verify commands against the authentication API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mbortnikov/marketauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type App struct {
	client *APIClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *Config) *App {
	return &App{
		client: NewAPIClient(c.ServerEndpointAddr),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run executes the named command. Supported commands: signup, login, verify.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "signup":
		return a.SignUp(ctx)
	case "login":
		return a.Login(ctx)
	case "verify":
		return a.Verify(ctx, args[1:])
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "usage: marketauth [-s addr] <signup|login|verify <token>>")
}

// SignUp prompts for an email, phone, and password and creates an account.
// The password byte slice is wiped before returning.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	phone, err := getSimpleText(a.reader, "Enter phone (E.164, e.g. +15551234567)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	result, err := a.client.SignUp(ctx, email, phone, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created: %s (%s)\n", result.ID, result.AccountType)
	return nil
}

// Login prompts for credentials and prints the identity token on success.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Token: %s\n", token)
	return nil
}

// Verify asks the server to dispatch a verification code for the token's
// subject. The token comes from a prior login.
func (a *App) Verify(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := getSimpleText(a.reader, "Enter token", a.out)
		if err != nil {
			return err
		}
		token = t
	}

	expiresAt, err := a.client.RequestVerification(ctx, token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Verification code sent, valid until %s\n", expiresAt.Format("15:04 MST"))
	return nil
}
