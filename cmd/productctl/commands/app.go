// Package commands implements the productctl subcommands.
package commands

import "github.com/urfave/cli/v3"

func productFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "product name", Required: required},
		&cli.StringFlag{Name: "description", Usage: "product description"},
		&cli.StringFlag{Name: "price", Usage: "price, e.g. 9.99", Required: required},
		&cli.StringFlag{Name: "stock", Usage: "units in stock", Required: required},
	}
}

// NewApp builds the productctl command tree.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:  "productctl",
		Usage: "manage products through the product API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Usage: "path to .env file", Value: ".env"},
			&cli.StringFlag{Name: "api-url", Usage: "product API base URL (overrides API_BASE_URL)"},
			&cli.StringFlag{Name: "token-file", Usage: "token file path (overrides TOKEN_FILE)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "log in and store the token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "prompted when omitted"},
				},
				Action: LoginAction,
			},
			{
				Name:   "logout",
				Usage:  "remove the stored token",
				Action: LogoutAction,
			},
			{
				Name:   "check",
				Usage:  "test API connectivity with the stored token",
				Action: CheckAction,
			},
			{
				Name:  "products",
				Usage: "product commands",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list products",
						Action: ProductListAction,
					},
					{
						Name:   "create",
						Usage:  "create a product",
						Flags:  productFlags(true),
						Action: ProductCreateAction,
					},
					{
						Name:   "update",
						Usage:  "update a product",
						Flags:  append([]cli.Flag{&cli.StringFlag{Name: "id", Required: true}}, productFlags(false)...),
						Action: ProductUpdateAction,
					},
					{
						Name:  "delete",
						Usage: "delete a product",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Required: true},
							&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip confirmation"},
						},
						Action: ProductDeleteAction,
					},
				},
			},
		},
	}
}
