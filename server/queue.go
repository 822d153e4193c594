package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/circadence-andrew/stompest/frame"
)

// Implements server.Dispatcher. Every message goes to exactly one
// subscriber.
type queueSubscription struct {
	stop chan struct{}
}

type Queue struct {
	Destination   string
	ch            chan frame.Frame
	mu            sync.Mutex
	Subscriptions map[string]*queueSubscription
}

func NewQueue(destination string) *Queue {
	return &Queue{
		Destination:   destination,
		ch:            make(chan frame.Frame, 8),
		Subscriptions: make(map[string]*queueSubscription),
	}
}

func (q *Queue) Send(fr frame.Frame) {
	q.ch <- fr
}

func (q *Queue) Subscribe(fr frame.Frame, options SubscriptionOptions) {
	subscriptionId, _ := fr.Header(frame.HdrId)
	ack, ok := fr.Header(frame.HdrAck)
	if !ok {
		ack = frame.AckAuto
	}
	sub := queueSubscription{
		stop: make(chan struct{}),
	}
	q.mu.Lock()
	q.Subscriptions[subscriptionId] = &sub
	q.mu.Unlock()
	go func() {
		var wg sync.WaitGroup
		for {
			select {
			case <-sub.stop:
				return
			case fr := <-q.ch:
				out := fr.Clone()
				out.SetHeader(frame.HdrMessageId, uuid.NewString())
				out.SetHeader(frame.HdrSubscription, subscriptionId)
				var msgId string
				if ack != frame.AckAuto {
					msgId = uuid.NewString()
					out.SetHeader(frame.HdrAck, msgId)
				}
				options.ClientWriteChan <- *out
				if ack != frame.AckAuto {
					wg.Add(1)
					options.AddAckCallback(msgId, wg.Done)
					wg.Wait()
				}
			}
		}
	}()
}

func (q *Queue) Unsubscribe(subscriptionId string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if sub, ok := q.Subscriptions[subscriptionId]; ok {
		close(sub.stop)
		delete(q.Subscriptions, subscriptionId)
	}
}
