package server

import (
	"github.com/circadence-andrew/stompest/frame"
)

type SubscriptionOptions struct {
	ClientWriteChan chan frame.Frame
	AddAckCallback  func(msgId string, cb func())
}

// Dispatcher routes MESSAGE frames for one destination.
type Dispatcher interface {
	Send(fr frame.Frame)
	Subscribe(fr frame.Frame, options SubscriptionOptions)
	Unsubscribe(subscriptionId string)
}
