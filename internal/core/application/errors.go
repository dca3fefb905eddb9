package application

import (
	"errors"

	"github.com/tdex-network/tdex-escrow/internal/core/application/ledger"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
)

var (
	// ErrFaucetDisabled ...
	ErrFaucetDisabled = ledger.ErrFaucetDisabled
	// ErrWebhookManagerNotInitialized is returned when attempting to add,
	// remove or list webhooks without a configured pubsub service.
	ErrWebhookManagerNotInitialized = pubsub.ErrWebhookManagerNotInitialized
	// ErrUnknownEvent ...
	ErrUnknownEvent = pubsub.ErrUnknownEvent
	// ErrUnsupportedDBType ...
	ErrUnsupportedDBType = errors.New("db type not supported")
)
