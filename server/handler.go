package server

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/circadence-andrew/stompest/frame"
)

const serverHeader = "stompd/0.1"

// Handler serves a single client connection: a read loop parsing frames,
// a process loop handling them and a write loop rendering replies and
// dispatched messages. reader and writer may be nil in tests; frames are
// then fed through Handle and read from outChan directly.
type Handler struct {
	Server        *Server
	version       frame.Version
	reader        *frame.Reader
	inChan        chan frame.Frame
	outChan       chan frame.Frame
	subscriptions map[string]Dispatcher
	ackMu         sync.Mutex
	waitingAcks   map[string]func()
}

func NewHandler(server *Server, reader io.Reader, writer io.Writer) *Handler {
	handler := Handler{
		Server:        server,
		version:       frame.DefaultVersion,
		inChan:        make(chan frame.Frame),
		outChan:       make(chan frame.Frame),
		subscriptions: make(map[string]Dispatcher),
		waitingAcks:   make(map[string]func()),
	}
	if reader != nil {
		handler.reader = frame.NewReader(reader)
	}
	if writer != nil {
		go handler.writeLoop(writer)
	}
	if handler.reader != nil {
		go handler.readLoop()
	}
	go handler.processLoop()
	return &handler
}

func (h *Handler) readLoop() {
	for {
		u, err := h.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				log.Debug().Msg("client closed connection")
			} else {
				log.Warn().Err(err).Msg("read failed")
				h.Err(err.Error())
			}
			h.Disconnect()
			return
		}
		if u.Empty() {
			continue
		}
		fr := u.(*frame.Frame)
		framesRead.WithLabelValues(fr.Command()).Inc()
		h.inChan <- *fr
	}
}

func (h *Handler) writeLoop(w io.Writer) {
	writer := frame.NewWriter(w)
	for fr := range h.outChan {
		// frames dispatched from other clients may carry their producer's
		// version; the wire form follows this connection's negotiated one
		fr.SetVersionValue(h.version)
		if err := writer.Write(&fr); err != nil {
			log.Warn().Err(err).Str("frame", fr.Info()).Msg("write failed")
			return
		}
		framesWritten.WithLabelValues(fr.Command()).Inc()
	}
}

func (h *Handler) processLoop() {
	for fr := range h.inChan {
		h.Handle(fr)
	}
}

func (h *Handler) addAckCallBack(msgId string, cb func()) {
	h.ackMu.Lock()
	h.waitingAcks[msgId] = cb
	h.ackMu.Unlock()
}

func (h *Handler) takeAckCallBack(msgId string) (func(), bool) {
	h.ackMu.Lock()
	defer h.ackMu.Unlock()
	cb, ok := h.waitingAcks[msgId]
	if ok {
		delete(h.waitingAcks, msgId)
	}
	return cb, ok
}

func (h *Handler) Disconnect() {
	for subscriptionId, dispatcher := range h.subscriptions {
		delete(h.subscriptions, subscriptionId)
		dispatcher.Unsubscribe(subscriptionId)
	}
}

func (h *Handler) Err(msg string) {
	fr := frame.New(frame.CmdError)
	fr.SetVersionValue(h.version)
	fr.SetHeader(frame.HdrMessage, msg)
	h.outChan <- *fr
	h.Disconnect()
}

// negotiateVersion picks the highest supported revision out of a
// comma-separated accept-version header. An absent header means a STOMP
// 1.0 client.
func negotiateVersion(accept string) (frame.Version, bool) {
	if accept == "" {
		return frame.V10, true
	}
	var best frame.Version
	for _, part := range strings.Split(accept, ",") {
		v, err := frame.ParseVersion(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best, best != ""
}

func supportedVersionList() string {
	parts := make([]string, 0, 3)
	for _, v := range frame.Versions() {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ",")
}

func (h *Handler) connect(fr frame.Frame) {
	accept, _ := fr.Header(frame.HdrAcceptVersion)
	version, ok := negotiateVersion(accept)
	if !ok {
		h.Err("supported versions are " + supportedVersionList())
		return
	}
	h.version = version
	if h.reader != nil {
		h.reader.Version = version
	}
	log.Debug().Str("version", string(version)).Msg("client connected")
	connected := frame.New(frame.CmdConnected)
	connected.SetVersionValue(version)
	connected.SetHeader(frame.HdrVersion, string(version))
	connected.SetHeader(frame.HdrSession, uuid.NewString())
	connected.SetHeader(frame.HdrServer, serverHeader)
	connected.SetHeader(frame.HdrHeartBeat, "0,0")
	h.outChan <- *connected
}

func (h *Handler) Handle(fr frame.Frame) {
	switch fr.Command() {

	case frame.CmdConnect, frame.CmdStomp:
		h.connect(fr)
		return

	case frame.CmdDisconnect:
		h.Disconnect()

	case frame.CmdSubscribe:
		destination, ok := fr.Header(frame.HdrDestination)
		if !ok {
			h.Err("Missing destination header")
			return
		}
		subscriptionId, ok := fr.Header(frame.HdrId)
		if !ok {
			h.Err("Missing subscription id header")
			return
		}
		dispatcher := h.Server.GetDispatcher(destination)
		h.subscriptions[subscriptionId] = dispatcher
		options := SubscriptionOptions{
			ClientWriteChan: h.outChan,
			AddAckCallback:  h.addAckCallBack,
		}
		dispatcher.Subscribe(fr, options)

	case frame.CmdUnsubscribe:
		subscriptionId, ok := fr.Header(frame.HdrId)
		if !ok {
			h.Err("Missing subscription id header")
			return
		}
		if dispatcher, ok := h.subscriptions[subscriptionId]; ok {
			delete(h.subscriptions, subscriptionId)
			dispatcher.Unsubscribe(subscriptionId)
		}

	case frame.CmdSend:
		destination, ok := fr.Header(frame.HdrDestination)
		if !ok {
			h.Err("Missing destination header")
			return
		}
		dispatcher := h.Server.GetDispatcher(destination)
		outFr := fr.Clone()
		outFr.SetCommand(frame.CmdMessage)
		dispatcher.Send(*outFr)

	case frame.CmdAck:
		id, ok := fr.Header(frame.HdrId)
		if !ok {
			h.Err("Missing Id header")
			return
		}
		if cb, ok := h.takeAckCallBack(id); ok {
			cb()
		}
	}

	if receiptId, ok := fr.Header(frame.HdrReceipt); ok {
		recFrame := frame.New(frame.CmdReceipt)
		recFrame.SetVersionValue(h.version)
		recFrame.SetHeader(frame.HdrReceiptId, receiptId)
		h.outChan <- *recFrame
	}
}
