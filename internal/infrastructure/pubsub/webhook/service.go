package webhookpubsub

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/pkg/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

const maxResponseSize = 1024

type service struct {
	store      *store
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// NewService returns a PubSub that notifies subscribers by making POST
// requests to their endpoints. Subscriptions are persisted in datadir.
func NewService(
	datadir string, requestTimeout time.Duration,
) (ports.PubSub, error) {
	if len(datadir) <= 0 {
		return nil, fmt.Errorf("missing datadir")
	}
	store, err := newStore(datadir)
	if err != nil {
		return nil, err
	}

	return &service{
		store:      store,
		httpClient: &http.Client{Timeout: requestTimeout},
		cb:         circuitbreaker.NewCircuitBreaker("webhook"),
	}, nil
}

func (ws *service) Store() ports.PubSubStore {
	return ws.store
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	return ws.addSubscription(sub)
}

func (ws *service) Unsubscribe(_, id string) error {
	return ws.removeSubscription(id)
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	return ws.listSubscriptionsForTopic(topic).toPortable()
}

func (ws *service) Publish(topic string, message string) error {
	subs := ws.listSubscriptionsForTopic(topic)

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(sub, topic, message) })
	}
	return eg.Wait()
}

func (ws *service) addSubscription(sub *Subscription) (string, error) {
	subID := []byte(sub.ID)
	ss, err := ws.store.get(subsBucket, subID)
	if err != nil {
		return "", err
	}
	if ss != nil {
		return sub.ID, nil
	}

	if err := ws.store.put(subsBucket, subID, sub.Serialize()); err != nil {
		return "", err
	}
	if err := ws.addSubscriptionForTopic(sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) removeSubscription(subID string) error {
	buf, err := ws.store.get(subsBucket, []byte(subID))
	if err != nil {
		return err
	}
	if buf == nil {
		return ErrSubscriptionNotFound
	}

	if err := ws.store.remove(subsBucket, []byte(subID)); err != nil {
		return err
	}

	sub, err := NewSubscriptionFromBytes(buf)
	if err != nil {
		return err
	}
	return ws.removeSubscriptionForTopic(sub)
}

// listSubscriptionsForTopic returns the subscriptions for the given topic
// plus those for any topic. The unspecified topic returns all of them.
func (ws *service) listSubscriptionsForTopic(topic string) subscriptions {
	subs := ws.getSubscriptionsForTopic(topic)
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic := ws.getSubscriptionsForTopic(ports.AnyTopic)
		subs = append(subs, subsForAnyTopic...)
	}
	return subs
}

func (ws *service) addSubscriptionForTopic(sub *Subscription) error {
	return ws.store.update(
		subsByEventBucket, []byte(sub.Event),
		func(value []byte) ([]byte, error) {
			subs := splitSubscriptions(value)
			subs = append(subs, sub.Serialize())
			return bytes.Join(subs, separator), nil
		},
	)
}

func (ws *service) removeSubscriptionForTopic(sub *Subscription) error {
	return ws.store.update(
		subsByEventBucket, []byte(sub.Event),
		func(value []byte) ([]byte, error) {
			subs := splitSubscriptions(value)

			index := -1
			for i, buf := range subs {
				ss, _ := NewSubscriptionFromBytes(buf)
				if ss != nil && ss.ID == sub.ID {
					index = i
					break
				}
			}
			if index < 0 {
				return value, nil
			}

			subs = append(subs[:index], subs[index+1:]...)
			if len(subs) <= 0 {
				return nil, nil
			}
			return bytes.Join(subs, separator), nil
		},
	)
}

func (ws *service) getSubscriptionsForTopic(topic string) subscriptions {
	rawSubs := ws.getSerializedSubscriptions(topic)
	subs := make(subscriptions, 0, len(rawSubs))
	for _, buf := range rawSubs {
		sub, err := NewSubscriptionFromBytes(buf)
		if err != nil {
			continue
		}
		subs = append(subs, *sub)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs
}

func (ws *service) getSerializedSubscriptions(topic string) [][]byte {
	if topic == ports.UnspecifiedTopic {
		subs := make([][]byte, 0)
		subsByTopic, _ := ws.store.getAll(subsByEventBucket)
		for _, list := range subsByTopic {
			subs = append(subs, bytes.Split(list, separator)...)
		}
		return subs
	}

	subs, _ := ws.store.get(subsByEventBucket, []byte(topic))
	return splitSubscriptions(subs)
}

func splitSubscriptions(list []byte) [][]byte {
	if len(list) <= 0 {
		return nil
	}
	return bytes.Split(list, separator)
}

func (ws *service) doRequest(sub Subscription, topic, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequest(
			http.MethodPost, sub.Endpoint, strings.NewReader(payload),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if sub.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"event": topic,
				"iat":   time.Now().Unix(),
			})
			tokenString, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tokenString))
		}

		resp, err := ws.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			return nil, fmt.Errorf(
				"webhook %s responded with status %d: %s",
				sub.ID, resp.StatusCode, body,
			)
		}
		return nil, nil
	})

	return err
}
