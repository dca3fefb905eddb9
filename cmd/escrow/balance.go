package main

import (
	"net/http"

	"github.com/tdex-network/tdex-escrow/pkg/mathutil"
	"github.com/urfave/cli/v2"
)

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the balances of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "owner",
			Usage: "the account owner, defaults to the identity in the local state",
		},
		&precisionFlag,
	},
	Action: balanceAction,
}

var faucet = cli.Command{
	Name:  "faucet",
	Usage: "mint funds to an account, if enabled by the daemon",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "address",
			Usage: "the account to fund, defaults to the identity in the local state",
		},
		&cli.StringFlag{
			Name:     "asset",
			Usage:    "the asset to mint",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to mint",
			Required: true,
		},
		&precisionFlag,
	},
	Action: faucetAction,
}

func balanceAction(ctx *cli.Context) error {
	owner, err := getIdentity(ctx, "owner")
	if err != nil {
		return err
	}

	reply := struct {
		Owner    string `json:"owner"`
		Balances []struct {
			Asset  string `json:"asset"`
			Amount uint64 `json:"amount"`
		} `json:"balances"`
	}{}
	if err := doRequest(
		http.MethodGet, "/v1/balances/"+owner, nil, &reply,
	); err != nil {
		return err
	}

	precision := ctx.Uint("precision")
	balances := make(map[string]string, len(reply.Balances))
	for _, b := range reply.Balances {
		balances[b.Asset] = mathutil.FromBaseUnits(b.Amount, precision)
	}

	printRespJSON(map[string]interface{}{
		"owner":    reply.Owner,
		"balances": balances,
	})
	return nil
}

func faucetAction(ctx *cli.Context) error {
	to, err := getIdentity(ctx, "address")
	if err != nil {
		return err
	}
	amount, err := mathutil.ToBaseUnits(ctx.String("amount"), ctx.Uint("precision"))
	if err != nil {
		return err
	}

	if err := doRequest(http.MethodPost, "/v1/faucet", map[string]interface{}{
		"address": to,
		"asset":   ctx.String("asset"),
		"amount":  amount,
	}, nil); err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"address": to,
		"asset":   ctx.String("asset"),
		"amount":  amount,
	})
	return nil
}
