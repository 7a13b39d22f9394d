package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"
)

var passwordFlag = cli.StringFlag{
	Name:     "password",
	Usage:    "the password used to encrypt the wallet",
	Required: true,
}

var createwallet = cli.Command{
	Name:  "create",
	Usage: "create a new wallet and unlock it",
	Flags: []cli.Flag{
		&passwordFlag,
		&cli.BoolFlag{
			Name:  "force",
			Usage: "overwrite the existing wallet of the user",
		},
	},
	Action: createWalletAction,
}

var importwallet = cli.Command{
	Name:  "import",
	Usage: "import a wallet from a mnemonic or a hex private key and unlock it",
	Flags: []cli.Flag{
		&passwordFlag,
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "12 words mnemonic or hex encoded private key",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "overwrite the existing wallet of the user",
		},
	},
	Action: importWalletAction,
}

var unlockwallet = cli.Command{
	Name:   "unlock",
	Usage:  "unlock the wallet with the given password",
	Flags:  []cli.Flag{&passwordFlag},
	Action: unlockWalletAction,
}

var lockwallet = cli.Command{
	Name:   "lock",
	Usage:  "lock the wallet and wipe the key from the daemon memory",
	Action: lockWalletAction,
}

var logout = cli.Command{
	Name:   "logout",
	Usage:  "lock the wallet and end the session on the daemon",
	Action: logoutAction,
}

var changepassword = cli.Command{
	Name:  "changepassword",
	Usage: "change the password of the locked wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "current_password",
			Usage:    "the current password of the wallet",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "new_password",
			Usage:    "the new password of the wallet",
			Required: true,
		},
	},
	Action: changePasswordAction,
}

var status = cli.Command{
	Name:   "status",
	Usage:  "get the status of the wallet session",
	Action: statusAction,
}

var balance = cli.Command{
	Name:   "balance",
	Usage:  "refresh and print the balance of the unlocked wallet",
	Action: balanceAction,
}

var network = cli.Command{
	Name:   "network",
	Usage:  "get info about the ledger network the daemon is connected to",
	Action: networkAction,
}

func createWalletAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if err := checkNoWallet(ctx, client); err != nil {
		return err
	}

	reply, err := client.do(http.MethodPost, "/v1/wallet/create", map[string]string{
		"password": ctx.String("password"),
	}, nil)
	if err != nil {
		return err
	}

	var created struct {
		Address  string `json:"address"`
		Mnemonic string `json:"mnemonic"`
	}
	if err := json.Unmarshal([]byte(reply), &created); err != nil {
		return err
	}

	fmt.Println("Wallet created and unlocked")
	fmt.Println("address:", created.Address)
	fmt.Println()
	fmt.Println("Write down the recovery phrase, it will not be shown again:")
	fmt.Println(created.Mnemonic)
	return nil
}

func importWalletAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if err := checkNoWallet(ctx, client); err != nil {
		return err
	}

	reply, err := client.do(http.MethodPost, "/v1/wallet/import", map[string]string{
		"password": ctx.String("password"),
		"secret":   ctx.String("secret"),
	}, nil)
	if err != nil {
		return err
	}

	fmt.Println("Wallet imported and unlocked")
	printJSON(reply)
	return nil
}

// checkNoWallet prevents overwriting the vault of the user unless forced.
func checkNoWallet(ctx *cli.Context, client *client) error {
	if ctx.Bool("force") {
		return nil
	}
	reply, err := client.do(http.MethodGet, "/v1/wallet/exists", nil, nil)
	if err != nil {
		return err
	}
	var exists struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal([]byte(reply), &exists); err != nil {
		return err
	}
	if exists.Exists {
		return errors.New(
			"a wallet already exists for this user, use --force to overwrite it",
		)
	}
	return nil
}

func unlockWalletAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/wallet/unlock", map[string]string{
		"password": ctx.String("password"),
	})
}

func lockWalletAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/wallet/lock", nil)
}

func logoutAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if _, err := client.do(http.MethodPost, "/v1/wallet/logout", nil, nil); err != nil {
		return err
	}
	if err := setState(map[string]string{walletIDKey: ""}); err != nil {
		return err
	}
	fmt.Println("Session ended")
	return nil
}

func changePasswordAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if _, err := client.do(http.MethodPost, "/v1/wallet/password", map[string]string{
		"current": ctx.String("current_password"),
		"next":    ctx.String("new_password"),
	}, nil); err != nil {
		return err
	}

	fmt.Println("Password changed")
	return nil
}

func statusAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodGet, "/v1/wallet/status", nil)
}

func balanceAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/wallet/balance", nil)
}

func networkAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodGet, "/v1/network", nil)
}

func doAndPrint(method, path string, body interface{}) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	reply, err := client.do(method, path, body, nil)
	if err != nil {
		return err
	}
	printJSON(reply)
	return nil
}
