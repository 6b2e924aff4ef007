package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fairyhunter13/product-console/internal/apiclient"
	"github.com/fairyhunter13/product-console/internal/auth"
	"github.com/fairyhunter13/product-console/internal/config"
)

// AppContext holds what every command needs: config, API client and token store.
type AppContext struct {
	Config config.Config
	Client *apiclient.Client
	Tokens auth.TokenStore
	Out    io.Writer
	In     io.Reader
}

// NewAppContext loads configuration and applies flag overrides.
func NewAppContext(cmd *cli.Command) (*AppContext, error) {
	cfg, err := config.LoadFile(cmd.String("env"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := cmd.String("api-url"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := cmd.String("token-file"); v != "" {
		cfg.TokenFile = v
	}
	root := cmd.Root()
	out, in := root.Writer, root.Reader
	if out == nil {
		out = os.Stdout
	}
	if in == nil {
		in = os.Stdin
	}
	return &AppContext{
		Config: cfg,
		Client: apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.APITimeout)),
		Tokens: auth.NewFileStore(cfg.TokenFile),
		Out:    out,
		In:     in,
	}, nil
}

// Token returns the stored token or apiclient.ErrNoToken.
func (ac *AppContext) Token(ctx context.Context) (string, error) {
	tok, err := ac.Tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", apiclient.ErrNoToken
	}
	return tok, nil
}
