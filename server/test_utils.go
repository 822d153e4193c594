package server

import (
	"encoding/hex"
	"math/rand"

	"github.com/circadence-andrew/stompest/frame"
)

func randomBytes(size int) []byte {
	buf := make([]byte, size)
	out := make([]byte, size*2)
	rand.Read(buf)
	hex.Encode(out, buf)
	return out
}

func randomString(size int) string {
	return string(randomBytes(size))
}

func makeSubscriptionFrame(subId, destination string) *frame.Frame {
	fr := frame.New(frame.CmdSubscribe)
	fr.SetHeader(frame.HdrId, subId)
	fr.SetHeader(frame.HdrDestination, destination)
	return fr
}

func makeSendFrame(destination, body string) *frame.Frame {
	fr := frame.New(frame.CmdSend)
	fr.SetHeader(frame.HdrDestination, destination)
	fr.SetBody([]byte(body))
	return fr
}
