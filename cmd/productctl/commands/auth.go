package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/fairyhunter13/product-console/internal/model"
	"github.com/fairyhunter13/product-console/internal/obs"
)

// LoginAction exchanges credentials for a token and stores it.
func LoginAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	cred := model.Credentials{Username: cmd.String("username"), Password: cmd.String("password")}
	if cred.Password == "" {
		fmt.Fprint(ac.Out, "Password: ")
		line, err := bufio.NewReader(ac.In).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		cred.Password = strings.TrimRight(line, "\r\n")
	}
	tok, err := ac.Client.Login(ctx, cred)
	if err != nil {
		return err
	}
	if err := ac.Tokens.SetToken(ctx, tok); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	obs.Logger.Debug("login_succeeded", "username", cred.Username, "api", ac.Client.BaseURL())
	fmt.Fprintln(ac.Out, "Logged in")
	return nil
}

// LogoutAction removes the stored token.
func LogoutAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	if err := ac.Tokens.RemoveToken(ctx); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	fmt.Fprintln(ac.Out, "Logged out")
	return nil
}
