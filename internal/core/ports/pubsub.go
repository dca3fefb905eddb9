package ports

const AnyTopic = "*"
const UnspecifiedTopic = ""

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// PubSubStore defines the methods to manage the internal store of a PubSub
// service.
type PubSubStore interface {
	// Close should be used to gracefully close the connection with the store.
	Close() error
}

// PubSub defines the methods of a pubsub service and its internal store.
// Subscriptions are persisted so that they survive restarts.
type PubSub interface {
	// Store returns the internal store.
	Store() PubSubStore
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes some client defined by its id for a topic.
	Unsubscribe(topic, id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed for
	// a certain topic.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish publishes a message for a certain topic. All clients subscribed
	// for such topic will receive the message.
	Publish(topic string, message string) error
}

// EventStream fans out published messages to the connected clients.
type EventStream interface {
	// Broadcast sends the message to all clients listening for the topic.
	Broadcast(topic string, message []byte)
	// Close disconnects all clients.
	Close()
}
