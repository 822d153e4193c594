package server

import (
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

type Server struct {
	mu          sync.Mutex
	Dispatchers map[string]Dispatcher
	NotifyChan  chan struct{}
	listener    net.Listener
}

func NewServer() *Server {
	return &Server{
		Dispatchers: make(map[string]Dispatcher),
	}
}

func (s *Server) GetDispatcher(destination string) Dispatcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	dispatcher, ok := s.Dispatchers[destination]
	if !ok {
		if strings.HasPrefix(destination, "/queue") {
			dispatcher = NewQueue(destination)
		} else {
			dispatcher = NewTopic(destination)
		}
		s.Dispatchers[destination] = dispatcher
	}
	return dispatcher
}

// ListenAndServe accepts connections on addr and runs one Handler per
// connection until Stop closes the listener. NotifyChan, when set,
// receives a single value once the listener is ready.
func (s *Server) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	log.Info().Str("addr", addr).Msg("stomp server listening")
	if s.NotifyChan != nil {
		s.NotifyChan <- struct{}{}
	}
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		connectionsTotal.Inc()
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection accepted")
		NewHandler(s, conn, conn)
	}
}

func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
		s.listener = nil
	}
}
