package application_test

import (
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

// **** PubSub ****

type mockPubSub struct {
	mock.Mock
}

func (m *mockPubSub) Store() ports.PubSubStore {
	args := m.Called()

	var res ports.PubSubStore
	if a := args.Get(0); a != nil {
		res = a.(ports.PubSubStore)
	}
	return res
}

func (m *mockPubSub) Subscribe(topic, endpoint, secret string) (string, error) {
	args := m.Called(topic, endpoint, secret)
	return args.String(0), args.Error(1)
}

func (m *mockPubSub) Unsubscribe(topic, id string) error {
	args := m.Called(topic, id)
	return args.Error(0)
}

func (m *mockPubSub) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	args := m.Called(topic)

	var res []ports.Subscription
	if a := args.Get(0); a != nil {
		res = a.([]ports.Subscription)
	}
	return res
}

func (m *mockPubSub) Publish(topic string, message string) error {
	args := m.Called(topic, message)
	return args.Error(0)
}

type mockPubSubStore struct {
	mock.Mock
}

func (m *mockPubSubStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// **** EventStream ****

type mockEventStream struct {
	lock     sync.Mutex
	messages map[string][][]byte
	closed   bool
}

func newMockEventStream() *mockEventStream {
	return &mockEventStream{messages: make(map[string][][]byte)}
}

func (m *mockEventStream) Broadcast(topic string, message []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.messages[topic] = append(m.messages[topic], message)
}

func (m *mockEventStream) Close() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closed = true
}

func (m *mockEventStream) count(topic string) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.messages[topic])
}

// **** Subscription ****

type subscription struct {
	id, topic, endpoint string
	secured             bool
}

func (s subscription) Topic() string    { return s.topic }
func (s subscription) Id() string       { return s.id }
func (s subscription) IsSecured() bool  { return s.secured }
func (s subscription) NotifyAt() string { return s.endpoint }
