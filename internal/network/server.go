package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultMaxDatagram = 64 * 1024
	readPoll           = 500 * time.Millisecond
)

// Handler is called on its own goroutine for every envelope of the type it
// was registered for.
type Handler func(ctx context.Context, addr *net.UDPAddr, env Envelope)

// Server is one UDP socket that both sends and receives envelopes.
type Server struct {
	conn    *net.UDPConn
	logger  *log.Logger
	maxSize int
	seq     atomic.Uint64

	mu       sync.RWMutex
	handlers map[MessageType][]Handler
}

func Listen(listenAddr string, logger *log.Logger, maxSize int) (*Server, error) {
	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve udp addr: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}
	s := &Server{
		conn:     conn,
		logger:   logger,
		maxSize:  maxSize,
		handlers: make(map[MessageType][]Handler),
	}
	if s.maxSize <= 0 {
		s.maxSize = defaultMaxDatagram
	}
	if s.logger == nil {
		s.logger = log.New(log.Writer(), "network ", log.LstdFlags|log.Lmicroseconds)
	}
	return s, nil
}

func (s *Server) Close() error     { return s.conn.Close() }
func (s *Server) LocalAddr() string { return s.conn.LocalAddr().String() }

func (s *Server) Register(msgType MessageType, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[msgType] = append(s.handlers[msgType], handler)
}

// Serve reads datagrams until ctx is done or the socket fails. Undecodable
// datagrams are logged and skipped.
func (s *Server) Serve(ctx context.Context) error {
	buf := make([]byte, s.maxSize)
	for ctx.Err() == nil {
		env, from, err := s.receive(buf)
		switch {
		case err == nil:
			s.dispatch(ctx, from, env)
		case isTimeout(err):
		case ctx.Err() != nil:
		case errors.Is(err, errUndecodable):
			s.logger.Printf("%v", err)
		default:
			return err
		}
	}
	return ctx.Err()
}

var errUndecodable = errors.New("undecodable datagram")

func (s *Server) receive(buf []byte) (Envelope, *net.UDPAddr, error) {
	_ = s.conn.SetReadDeadline(time.Now().Add(readPoll))
	n, from, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return Envelope{}, nil, err
	}
	// Decode copies what it keeps, so buf can be reused.
	env, err := Decode(buf[:n])
	if err != nil {
		return Envelope{}, from, fmt.Errorf("%w from %s: %v", errUndecodable, from, err)
	}
	return env, from, nil
}

func (s *Server) dispatch(ctx context.Context, from *net.UDPAddr, env Envelope) {
	s.mu.RLock()
	handlers := append([]Handler(nil), s.handlers[env.Type]...)
	s.mu.RUnlock()
	for _, h := range handlers {
		go h(ctx, from, env)
	}
}

func isTimeout(err error) bool {
	var nErr net.Error
	return errors.As(err, &nErr) && nErr.Timeout()
}

// Send encodes one envelope and writes it to every address. An envelope over
// the size limit is not sent anywhere. Per-address failures are joined.
func (s *Server) Send(msg MessageType, payload any, addrs ...string) error {
	data, err := s.envelope(msg, payload)
	if err != nil {
		return err
	}
	if len(data) > s.maxSize {
		return fmt.Errorf("%s message is %d bytes, limit %d", msg, len(data), s.maxSize)
	}
	var errs []error
	for _, addr := range addrs {
		if err := s.writeTo(addr, data); err != nil {
			errs = append(errs, fmt.Errorf("send %s to %s: %w", msg, addr, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Server) writeTo(addr string, data []byte) error {
	target, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(data, target)
	return err
}

func (s *Server) envelope(msg MessageType, payload any) ([]byte, error) {
	var raw json.RawMessage
	switch p := payload.(type) {
	case nil:
		raw = json.RawMessage("null")
	case []byte:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msg, err)
		}
		raw = b
	}
	return Encode(Envelope{
		Type:      msg,
		Timestamp: time.Now().UTC(),
		Seq:       s.seq.Add(1),
		Payload:   raw,
	})
}
