package application

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const (
	EventEscrowOpened   = pubsub.EventEscrowOpened
	EventEscrowSettled  = pubsub.EventEscrowSettled
	EventEscrowRefunded = pubsub.EventEscrowRefunded
	EventAny            = ports.AnyTopic
)

type WebhookInfo = pubsub.WebhookInfo

type PubSubService interface {
	AddWebhook(
		ctx context.Context, event, endpoint, secret string,
	) (string, error)
	RemoveWebhook(ctx context.Context, id string) error
	ListWebhooks(ctx context.Context, event string) ([]WebhookInfo, error)
	Close()
}

func NewPubSubService(
	pubsubSvc ports.PubSub, stream ports.EventStream,
) PubSubService {
	return pubsub.NewService(pubsubSvc, stream)
}
