package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const (
	EventEscrowOpened   = "ESCROW_OPENED"
	EventEscrowSettled  = "ESCROW_SETTLED"
	EventEscrowRefunded = "ESCROW_REFUNDED"
)

var (
	// ErrWebhookManagerNotInitialized is returned when managing webhooks
	// without a configured pubsub service.
	ErrWebhookManagerNotInitialized = errors.New(
		"webhook manager is not initialized",
	)
	// ErrUnknownEvent ...
	ErrUnknownEvent = errors.New("unknown webhook event type")

	supportedEvents = map[string]struct{}{
		EventEscrowOpened:   {},
		EventEscrowSettled:  {},
		EventEscrowRefunded: {},
		ports.AnyTopic:      {},
	}
)

// WebhookInfo is the public info of a registered webhook.
type WebhookInfo struct {
	Id        string `json:"id"`
	Event     string `json:"event"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

// Service notifies escrow events to webhooks and, optionally, to the clients
// of an in-process event stream. Both targets are optional.
type Service struct {
	pubsub ports.PubSub
	stream ports.EventStream
	now    func() time.Time
}

func NewService(pubsub ports.PubSub, stream ports.EventStream) *Service {
	return &Service{pubsub, stream, time.Now}
}

func (s *Service) PubSub() ports.PubSub {
	return s.pubsub
}

func (s *Service) AddWebhook(
	_ context.Context, event, endpoint, secret string,
) (string, error) {
	if s.pubsub == nil {
		return "", ErrWebhookManagerNotInitialized
	}
	if _, ok := supportedEvents[event]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	return s.pubsub.Subscribe(event, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if s.pubsub == nil {
		return ErrWebhookManagerNotInitialized
	}
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

// ListWebhooks returns the webhooks registered for the given event, those
// registered for any event included. An empty event lists all webhooks.
func (s *Service) ListWebhooks(
	_ context.Context, event string,
) ([]WebhookInfo, error) {
	if s.pubsub == nil {
		return nil, ErrWebhookManagerNotInitialized
	}
	if event != ports.UnspecifiedTopic {
		if _, ok := supportedEvents[event]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
		}
	}

	subs := s.pubsub.ListSubscriptionsForTopic(event)
	webhooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, WebhookInfo{
			Id:        sub.Id(),
			Event:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return webhooks, nil
}

func (s *Service) PublishEscrowOpenedEvent(escrow domain.EscrowHandle) error {
	event := EventEscrowOpened
	payload := s.newPayload(event)
	payload["escrow"] = getEscrowPayload(escrow.Address, escrow.Escrow)
	payload["vault"] = escrow.Vault.Address.String()
	payload["deposit"] = escrow.Deposit

	return s.publish(event, payload)
}

func (s *Service) PublishEscrowSettledEvent(settlement domain.Settlement) error {
	event := EventEscrowSettled
	payload := s.newPayload(event)
	payload["escrow"] = getEscrowPayload(settlement.Address, settlement.Escrow)
	payload["taker"] = settlement.Counterparty.String()
	payload["amount_released"] = settlement.Deposit
	payload["amount_paid"] = settlement.Escrow.Receive
	payload["storage_deposit_returned"] = settlement.StorageDeposit

	return s.publish(event, payload)
}

func (s *Service) PublishEscrowRefundedEvent(settlement domain.Settlement) error {
	event := EventEscrowRefunded
	payload := s.newPayload(event)
	payload["escrow"] = getEscrowPayload(settlement.Address, settlement.Escrow)
	payload["amount_refunded"] = settlement.Deposit
	payload["storage_deposit_returned"] = settlement.StorageDeposit

	return s.publish(event, payload)
}

func (s *Service) Close() {
	if s.stream != nil {
		s.stream.Close()
	}
	if s.pubsub != nil {
		s.pubsub.Store().Close()
	}
}

func (s *Service) newPayload(event string) map[string]interface{} {
	now := s.now()
	return map[string]interface{}{
		"id":        uuid.New().String(),
		"event":     event,
		"timestamp": now.Unix(),
		"date":      now.UTC().Format(time.RFC3339),
	}
}

func (s *Service) publish(event string, payload map[string]interface{}) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if s.stream != nil {
		s.stream.Broadcast(event, message)
	}
	if s.pubsub == nil {
		return nil
	}
	return s.pubsub.Publish(event, string(message))
}

func getEscrowPayload(
	address domain.Pubkey, escrow domain.Escrow,
) map[string]interface{} {
	return map[string]interface{}{
		"address":       address.String(),
		"seed":          escrow.Seed,
		"maker":         escrow.Maker.String(),
		"deposit_asset": escrow.AssetA.String(),
		"receive_asset": escrow.AssetB.String(),
		"receive":       escrow.Receive,
		"creation_date": time.Unix(escrow.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}
