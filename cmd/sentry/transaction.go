package main

import (
	"net/http"

	"github.com/urfave/cli/v2"
)

var send = cli.Command{
	Name:  "send",
	Usage: "send coins from the unlocked wallet and wait for confirmation",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the recipient address",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to send, in coins",
			Required: true,
		},
	},
	Action: sendAction,
}

var history = cli.Command{
	Name:   "history",
	Usage:  "list the most recent transactions of the session",
	Action: historyAction,
}

var receipt = cli.Command{
	Name:      "receipt",
	Usage:     "check the status of a transaction by hash",
	ArgsUsage: "<hash>",
	Action:    receiptAction,
}

func sendAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodPost, "/v1/transactions", map[string]string{
		"to":     ctx.String("to"),
		"amount": ctx.String("amount"),
	})
}

func historyAction(ctx *cli.Context) error {
	return doAndPrint(http.MethodGet, "/v1/transactions", nil)
}

func receiptAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	return doAndPrint(http.MethodGet, "/v1/transactions/"+ctx.Args().First(), nil)
}
