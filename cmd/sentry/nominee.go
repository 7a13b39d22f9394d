package main

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"
)

var nominee = cli.Command{
	Name:  "nominee",
	Usage: "manage the nominee of the inheritance contract",
	Subcommands: []*cli.Command{
		{
			Name:   "get",
			Usage:  "get the current nominee",
			Action: getNomineeAction,
		},
		{
			Name:  "set",
			Usage: "register a nominee on chain and mirror it in the profile",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Usage:    "the nominee address",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "email",
					Usage: "the nominee contact email",
				},
				&cli.IntFlag{
					Name:     "share",
					Usage:    "the share of funds for the nominee, between 1 and 100",
					Required: true,
				},
			},
			Action: setNomineeAction,
		},
		{
			Name:   "remove",
			Usage:  "remove the current nominee",
			Action: removeNomineeAction,
		},
		{
			Name:  "fund",
			Usage: "deposit coins into the inheritance contract",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "amount",
					Usage:    "the amount to deposit, in coins",
					Required: true,
				},
			},
			Action: fundAction,
		},
		{
			Name:   "claim",
			Usage:  "claim the funds left to the unlocked wallet as nominee",
			Action: claimAction,
		},
		{
			Name:   "contract",
			Usage:  "get the balance held by the inheritance contract",
			Action: contractBalanceAction,
		},
	},
}

func getNomineeAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodGet, "/v1/nominee", nil)
}

func setNomineeAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPut, "/v1/nominee", map[string]interface{}{
		"address": ctx.String("address"),
		"email":   ctx.String("email"),
		"share":   ctx.Int("share"),
	})
}

func removeNomineeAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if _, err := client.do(http.MethodDelete, "/v1/nominee", nil, nil); err != nil {
		return err
	}
	fmt.Println("Nominee removed")
	return nil
}

func fundAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/nominee/fund", map[string]string{
		"amount": ctx.String("amount"),
	})
}

func claimAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/nominee/claim", nil)
}

func contractBalanceAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodGet, "/v1/nominee/contract", nil)
}
