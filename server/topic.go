package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/circadence-andrew/stompest/frame"
)

// Implements server.Dispatcher. Every message goes to all subscribers.
type topicSubscription struct {
	clientWriteChan chan frame.Frame
}

type Topic struct {
	Destination string
	mu          sync.Mutex
	Subscribers map[string]*topicSubscription
}

func NewTopic(destination string) *Topic {
	return &Topic{
		Destination: destination,
		Subscribers: make(map[string]*topicSubscription),
	}
}

func (t *Topic) Send(fr frame.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for subscriptionId, sub := range t.Subscribers {
		out := fr.Clone()
		out.SetHeader(frame.HdrMessageId, uuid.NewString())
		out.SetHeader(frame.HdrSubscription, subscriptionId)
		sub.clientWriteChan <- *out
	}
}

func (t *Topic) Subscribe(fr frame.Frame, options SubscriptionOptions) {
	subscriptionId, _ := fr.Header(frame.HdrId)
	sub := topicSubscription{
		clientWriteChan: options.ClientWriteChan,
	}
	t.mu.Lock()
	t.Subscribers[subscriptionId] = &sub
	t.mu.Unlock()
}

func (t *Topic) Unsubscribe(subscriptionId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.Subscribers, subscriptionId)
}
