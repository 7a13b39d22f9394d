package main

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"
)

var nameFlag = cli.StringFlag{
	Name:  "name",
	Usage: "the display name of the wallet",
}

var local = cli.Command{
	Name:  "local",
	Usage: "manage the wallets stored on the daemon installation",
	Subcommands: []*cli.Command{
		{
			Name:  "init",
			Usage: "set the password of the local wallets",
			Flags: []cli.Flag{
				&passwordFlag,
				&cli.StringFlag{
					Name:  "hint",
					Usage: "an optional password hint, stored in clear",
				},
			},
			Action: localInitAction,
		},
		{
			Name:   "list",
			Usage:  "list the local wallets",
			Flags:  []cli.Flag{&passwordFlag},
			Action: localListAction,
		},
		{
			Name:   "new",
			Usage:  "generate a new local wallet",
			Flags:  []cli.Flag{&passwordFlag, &nameFlag},
			Action: localNewAction,
		},
		{
			Name:  "import",
			Usage: "import a local wallet from a mnemonic or a hex private key",
			Flags: []cli.Flag{
				&passwordFlag,
				&nameFlag,
				&cli.StringFlag{
					Name:     "secret",
					Usage:    "12 words mnemonic or hex encoded private key",
					Required: true,
				},
			},
			Action: localImportAction,
		},
		{
			Name:      "remove",
			Usage:     "remove a local wallet",
			ArgsUsage: "<id>",
			Flags:     []cli.Flag{&passwordFlag},
			Action:    localRemoveAction,
		},
		{
			Name:      "use",
			Usage:     "unlock the session with a local wallet",
			ArgsUsage: "<id>",
			Flags:     []cli.Flag{&passwordFlag},
			Action:    localUseAction,
		},
		{
			Name:   "hint",
			Usage:  "print the password hint",
			Action: localHintAction,
		},
		{
			Name:   "exists",
			Usage:  "tell whether local wallets are stored",
			Action: localExistsAction,
		},
		{
			Name:   "reset",
			Usage:  "delete every local wallet and the password hint",
			Flags:  []cli.Flag{&passwordFlag},
			Action: localResetAction,
		},
	},
}

func localInitAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if _, err := client.do(http.MethodPost, "/v1/local/init", map[string]string{
		"password": ctx.String("password"),
		"hint":     ctx.String("hint"),
	}, nil); err != nil {
		return err
	}
	fmt.Println("Local wallets initialized")
	return nil
}

func localListAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	reply, err := client.do(http.MethodGet, "/v1/local/wallets", nil, map[string]string{
		"X-Wallet-Password": ctx.String("password"),
	})
	if err != nil {
		return err
	}
	printJSON(reply)
	return nil
}

func localNewAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/local/wallets", map[string]string{
		"password": ctx.String("password"),
		"name":     ctx.String("name"),
	})
}

func localImportAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/local/import", map[string]string{
		"password": ctx.String("password"),
		"secret":   ctx.String("secret"),
		"name":     ctx.String("name"),
	})
}

func localRemoveAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	client, err := getClient()
	if err != nil {
		return err
	}
	walletID := ctx.Args().First()
	if _, err := client.do(http.MethodDelete, "/v1/local/wallets/"+walletID, map[string]string{
		"password": ctx.String("password"),
	}, nil); err != nil {
		return err
	}
	fmt.Printf("Wallet %s removed\n", walletID)
	return nil
}

func localUseAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	client, err := getClient()
	if err != nil {
		return err
	}
	walletID := ctx.Args().First()
	reply, err := client.do(http.MethodPost, "/v1/local/unlock", map[string]string{
		"password": ctx.String("password"),
		"id":       walletID,
	}, nil)
	if err != nil {
		return err
	}
	if err := setState(map[string]string{walletIDKey: walletID}); err != nil {
		return err
	}
	printJSON(reply)
	return nil
}

func localHintAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodGet, "/v1/local/hint", nil)
}

func localExistsAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodGet, "/v1/local/exists", nil)
}

func localResetAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if _, err := client.do(http.MethodDelete, "/v1/local", map[string]string{
		"password": ctx.String("password"),
	}, nil); err != nil {
		return err
	}
	if err := setState(map[string]string{walletIDKey: ""}); err != nil {
		return err
	}
	fmt.Println("Local wallets deleted")
	return nil
}
