package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultx/internal/client/client"
	"github.com/dmitrijs2005/vaultx/internal/common"
)

// getSimpleText and getHidden are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getHidden = GetHidden

func (a *App) Ping(ctx context.Context, args []string) error {
	if _, err := parseArgs(newFlagSet("ping"), args, 0); err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is up\n", a.config.ServerEndpointAddr)
	return nil
}

func (a *App) Signup(ctx context.Context, args []string) error {
	if _, err := parseArgs(newFlagSet("signup"), args, 0); err != nil {
		return err
	}

	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getHidden("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.api.Signup(ctx, username, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s created, you can log in now\n", u.Email)
	return nil
}

// Login authenticates and stores the session. Accounts with two-factor
// authentication get a second prompt for the authenticator code.
func (a *App) Login(ctx context.Context, args []string) error {
	if _, err := parseArgs(newFlagSet("login"), args, 0); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getHidden("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	rctx, cancel := a.requestContext(ctx)
	resp, err := a.api.Login(rctx, email, string(password))
	cancel()
	if err != nil {
		return err
	}

	if resp.TwoFactorRequired {
		code, err := getSimpleText(a.reader, "Authenticator code", a.out)
		if err != nil {
			return err
		}

		rctx, cancel := a.requestContext(ctx)
		resp, err = a.api.CompleteSecondFactor(rctx, resp.UserID, code)
		cancel()
		if err != nil {
			return err
		}
	}

	if err := a.saveSession(ctx, email); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	name := email
	if resp.User != nil && resp.User.Username != "" {
		name = resp.User.Username
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", name)
	return nil
}

func (a *App) Logout(ctx context.Context, args []string) error {
	if _, err := parseArgs(newFlagSet("logout"), args, 0); err != nil {
		return err
	}
	if !a.isLoggedIn() {
		return client.ErrNotLoggedIn
	}
	if err := a.clearSession(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
