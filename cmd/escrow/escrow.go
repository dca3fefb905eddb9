package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tdex-network/tdex-escrow/pkg/mathutil"
	"github.com/urfave/cli/v2"
)

var (
	precisionFlag = cli.UintFlag{
		Name:  "precision",
		Usage: "the number of decimal places of amounts, 0 for base units",
		Value: 0,
	}
	seedFlag = cli.Uint64Flag{
		Name:     "seed",
		Usage:    "the seed identifying the escrow among those of the maker",
		Required: true,
	}
	makerFlag = cli.StringFlag{
		Name:  "maker",
		Usage: "the maker identity, defaults to the one in the local state",
	}
	escrowAddressFlag = cli.StringFlag{
		Name:     "address",
		Usage:    "the escrow address",
		Required: true,
	}
)

var address = cli.Command{
	Name:  "address",
	Usage: "derive the escrow and vault addresses for a maker and seed",
	Flags: []cli.Flag{
		&makerFlag,
		&seedFlag,
	},
	Action: addressAction,
}

var makeescrow = cli.Command{
	Name:  "make",
	Usage: "open an escrow depositing an asset in exchange for another",
	Flags: []cli.Flag{
		&makerFlag,
		&seedFlag,
		&cli.StringFlag{
			Name:     "deposit",
			Usage:    "the amount of deposit asset to lock into the escrow",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "deposit_asset",
			Usage:    "the asset to deposit",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "receive",
			Usage:    "the amount of receive asset requested in exchange",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "receive_asset",
			Usage:    "the asset requested in exchange",
			Required: true,
		},
		&precisionFlag,
	},
	Action: makeEscrowAction,
}

var takeescrow = cli.Command{
	Name:  "take",
	Usage: "settle an escrow paying the requested amount to its maker",
	Flags: []cli.Flag{
		&escrowAddressFlag,
		&cli.StringFlag{
			Name:  "taker",
			Usage: "the taker identity, defaults to the one in the local state",
		},
	},
	Action: takeEscrowAction,
}

var refundescrow = cli.Command{
	Name:  "refund",
	Usage: "close an escrow giving the deposit back to its maker",
	Flags: []cli.Flag{
		&escrowAddressFlag,
		&makerFlag,
	},
	Action: refundEscrowAction,
}

var info = cli.Command{
	Name:  "info",
	Usage: "get info about an open escrow",
	Flags: []cli.Flag{
		&escrowAddressFlag,
	},
	Action: infoAction,
}

var list = cli.Command{
	Name:  "list",
	Usage: "list open escrows, optionally filtered by maker",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "maker",
			Usage: "the maker to filter escrows by",
		},
	},
	Action: listAction,
}

func addressAction(ctx *cli.Context) error {
	maker, err := getIdentity(ctx, "maker")
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("maker", maker)
	query.Set("seed", strconv.FormatUint(ctx.Uint64("seed"), 10))

	var reply map[string]interface{}
	if err := doRequest(
		http.MethodGet, "/v1/address?"+query.Encode(), nil, &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func makeEscrowAction(ctx *cli.Context) error {
	maker, err := getIdentity(ctx, "maker")
	if err != nil {
		return err
	}
	precision := ctx.Uint("precision")
	deposit, err := mathutil.ToBaseUnits(ctx.String("deposit"), precision)
	if err != nil {
		return fmt.Errorf("invalid deposit: %w", err)
	}
	receive, err := mathutil.ToBaseUnits(ctx.String("receive"), precision)
	if err != nil {
		return fmt.Errorf("invalid receive: %w", err)
	}

	var reply map[string]interface{}
	if err := doRequest(http.MethodPost, "/v1/escrows", map[string]interface{}{
		"maker":         maker,
		"seed":          ctx.Uint64("seed"),
		"deposit":       deposit,
		"receive":       receive,
		"deposit_asset": ctx.String("deposit_asset"),
		"receive_asset": ctx.String("receive_asset"),
	}, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func takeEscrowAction(ctx *cli.Context) error {
	taker, err := getIdentity(ctx, "taker")
	if err != nil {
		return err
	}

	var reply map[string]interface{}
	if err := doRequest(
		http.MethodPost, "/v1/escrows/"+ctx.String("address")+"/take",
		map[string]string{"taker": taker}, &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func refundEscrowAction(ctx *cli.Context) error {
	maker, err := getIdentity(ctx, "maker")
	if err != nil {
		return err
	}

	var reply map[string]interface{}
	if err := doRequest(
		http.MethodPost, "/v1/escrows/"+ctx.String("address")+"/refund",
		map[string]string{"maker": maker}, &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func infoAction(ctx *cli.Context) error {
	var reply map[string]interface{}
	if err := doRequest(
		http.MethodGet, "/v1/escrows/"+ctx.String("address"), nil, &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func listAction(ctx *cli.Context) error {
	path := "/v1/escrows"
	if maker := ctx.String("maker"); maker != "" {
		path += "?maker=" + url.QueryEscape(maker)
	}

	var reply map[string]interface{}
	if err := doRequest(http.MethodGet, path, nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}
