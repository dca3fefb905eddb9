package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var webhook = cli.Command{
	Name:  "webhook",
	Usage: "manage webhooks notified of escrow events",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "add a webhook registered for some event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "endpoint",
					Usage:    "the endpoint where to notify the webhook",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "the eventual secret to authenticate requests",
					Value: "",
				},
				&cli.StringFlag{
					Name: "event",
					Usage: "the event for which the webhook gets notified: " +
						"ESCROW_OPENED, ESCROW_SETTLED, ESCROW_REFUNDED or * for any",
					Value: "*",
				},
			},
			Action: addWebhookAction,
		},
		{
			Name:  "list",
			Usage: "list the webhooks registered for some event, all if not set",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "event",
					Usage: "the event to filter hooks by",
				},
			},
			Action: listWebhooksAction,
		},
		{
			Name:  "remove",
			Usage: "remove a webhook by its id",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Usage:    "the id of the webhook to remove",
					Required: true,
				},
			},
			Action: removeWebhookAction,
		},
	},
}

func addWebhookAction(ctx *cli.Context) error {
	reply := struct {
		Id string `json:"id"`
	}{}
	if err := doRequest(http.MethodPost, "/v1/webhooks", map[string]string{
		"event":    ctx.String("event"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	}, &reply); err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, "hook id:", reply.Id)
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	path := "/v1/webhooks"
	if event := ctx.String("event"); event != "" {
		path += "?event=" + url.QueryEscape(event)
	}

	var reply map[string]interface{}
	if err := doRequest(http.MethodGet, path, nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	if err := doRequest(
		http.MethodDelete, "/v1/webhooks/"+ctx.String("id"), nil, nil,
	); err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, "removed webhook", ctx.String("id"))
	return nil
}
