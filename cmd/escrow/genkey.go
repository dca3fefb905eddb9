package main

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/urfave/cli/v2"
)

var genkey = cli.Command{
	Name:  "genkey",
	Usage: "generate a new identity key pair",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "save",
			Usage: "store the public key as default identity in the local state",
		},
	},
	Action: genKeyAction,
}

func genKeyAction(ctx *cli.Context) error {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return err
	}
	pubkey := hex.EncodeToString(schnorr.SerializePubKey(key.PubKey()))

	if ctx.Bool("save") {
		if err := setState(map[string]string{"pubkey": pubkey}); err != nil {
			return err
		}
	}

	fmt.Fprintln(ctx.App.Writer, "private key:", hex.EncodeToString(key.Serialize()))
	fmt.Fprintln(ctx.App.Writer, "public key:", pubkey)
	return nil
}
