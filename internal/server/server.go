package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"skycycle/internal/config"
	"skycycle/internal/environment"
	"skycycle/internal/network"
	"skycycle/internal/trace"
)

const keepAliveInterval = 5 * time.Second

type Server struct {
	cfg    *config.Config
	id     string
	logger *log.Logger

	engineMu sync.Mutex
	engine   *environment.Engine
	tick     uint64

	board   *dayNightBoard
	hub     *frameHub
	udp     *network.Server
	trace   *trace.Writer
	httpSrv *http.Server

	lastStream    time.Time
	lastKeepAlive time.Time
}

func New(cfg *config.Config) (*Server, error) {
	envCfg, err := cfg.Cycle.Environment()
	if err != nil {
		return nil, fmt.Errorf("cycle config: %w", err)
	}
	logger := log.New(log.Writer(), "skycycle ", log.LstdFlags|log.Lmicroseconds)
	board := newDayNightBoard()
	engine := environment.New(envCfg,
		environment.WithSky(board),
		environment.WithLight(board),
		environment.WithFog(board),
		environment.WithLogger(log.New(log.Writer(), "cycle ", log.LstdFlags|log.Lmicroseconds)),
	)
	board.observe(0, engine.Start())

	id, err := os.Hostname()
	if err != nil || id == "" {
		id = "skycycle"
	}
	return &Server{
		cfg:    cfg,
		id:     id,
		logger: logger,
		engine: engine,
		board:  board,
		hub:    newFrameHub(logger),
	}, nil
}

func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Network.Enabled {
		if err := s.startNetwork(runCtx); err != nil {
			return err
		}
		defer s.udp.Close()
	}

	if s.cfg.Trace.Enabled {
		s.startTrace()
		defer func() {
			if err := s.trace.Close(); err != nil {
				s.logger.Printf("close trace: %v", err)
			}
		}()
	}

	go func() {
		<-runCtx.Done()
		s.hub.close()
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/time", s.handleTime)
	mux.HandleFunc("/phase", s.handlePhase)
	mux.HandleFunc("/ws", s.handleStream)

	addr := fmt.Sprintf("%s:%d", s.cfg.ListenAddress, s.cfg.HTTPPort)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.loop(runCtx)
	}()

	select {
	case <-ctx.Done():
		cancel()
		<-loopDone
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		cancel()
		<-loopDone
		return err
	}
}

// startNetwork binds the UDP socket, answers clock queries and announces the
// service to every configured endpoint.
func (s *Server) startNetwork(ctx context.Context) error {
	udp, err := network.Listen(s.cfg.Network.ListenUDP, nil, s.cfg.Network.MaxDatagramSizeBytes)
	if err != nil {
		return err
	}
	s.udp = udp
	udp.Register(network.MessageClockQuery, s.handleClockQuery)
	hello := network.Hello{ServerID: s.id, Listen: udp.LocalAddr()}
	if err := udp.Send(network.MessageHello, hello, s.cfg.Network.Endpoints...); err != nil {
		s.logger.Printf("hello: %v", err)
	}
	go func() {
		if err := udp.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Printf("udp serve: %v", err)
		}
	}()
	s.logger.Printf("UDP listening on %s, streaming to %d endpoints", udp.LocalAddr(), len(s.cfg.Network.Endpoints))
	return nil
}

func (s *Server) startTrace() {
	s.trace = trace.NewWriter(s.cfg.Trace.Dir, "frames")
	s.logger.Printf("recording frames to %s", s.cfg.Trace.Dir)
}

func (s *Server) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.step(now.Sub(last), now)
			last = now
		}
	}
}

// step advances the engine once and fans the frame out to every reader.
func (s *Server) step(delta time.Duration, now time.Time) environment.Frame {
	s.engineMu.Lock()
	s.tick++
	tick := s.tick
	frame := s.engine.Tick(delta)
	s.board.observe(tick, frame)
	s.engineMu.Unlock()

	s.hub.publish(tick, frame)

	if s.trace != nil {
		if err := s.trace.WriteFrame(tick, frame); err != nil {
			s.logger.Printf("trace tick %d: %v", tick, err)
		}
	}

	if s.udp != nil && len(s.cfg.Network.Endpoints) > 0 {
		if now.Sub(s.lastStream) >= s.cfg.StreamInterval() {
			s.lastStream = now
			update := network.FrameUpdate{ServerID: s.id, Tick: tick, Frame: frame}
			if err := s.udp.Send(network.MessageFrame, update, s.cfg.Network.Endpoints...); err != nil {
				s.logger.Printf("stream tick %d: %v", tick, err)
			}
		}
		if now.Sub(s.lastKeepAlive) >= keepAliveInterval {
			s.lastKeepAlive = now
			keepAlive := network.KeepAlive{ServerID: s.id, Time: now.UTC()}
			if err := s.udp.Send(network.MessageKeepAlive, keepAlive, s.cfg.Network.Endpoints...); err != nil {
				s.logger.Printf("keepAlive: %v", err)
			}
		}
	}
	return frame
}

func (s *Server) handleClockQuery(ctx context.Context, addr *net.UDPAddr, env network.Envelope) {
	var q network.ClockQuery
	if err := env.Unpack(&q); err != nil {
		s.logger.Printf("bad clock query from %s: %v", addr, err)
		return
	}
	_, f := s.snapshotFrame()
	reply := network.ClockReply{
		RequestID:   q.RequestID,
		ServerID:    s.id,
		Hours:       f.Hours,
		Minutes:     f.Minutes,
		Days:        f.Days,
		MinuteOfDay: f.MinuteOfDay,
		Phase:       f.Phase.String(),
	}
	if err := s.udp.Send(network.MessageClockReply, reply, addr.String()); err != nil {
		s.logger.Printf("clock reply to %s: %v", addr, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	s.engineMu.Lock()
	state := s.board.State()
	s.engineMu.Unlock()
	writeJSON(w, state)
}

// handlePhase evaluates the cycle at ?minute=, given either as a minute of
// day or as HH:MM.
func (s *Server) handlePhase(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("minute")
	if raw == "" {
		http.Error(w, "minute query parameter required", http.StatusBadRequest)
		return
	}
	minute, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		minute, err = config.ParseClock(raw)
	}
	if err != nil || math.IsNaN(minute) || math.IsInf(minute, 0) {
		http.Error(w, "invalid minute parameter", http.StatusBadRequest)
		return
	}
	s.engineMu.Lock()
	frame := s.engine.Evaluate(minute)
	s.engineMu.Unlock()
	writeJSON(w, frame)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	tick, f := s.snapshotFrame()
	current, err := json.Marshal(FrameMessage{Type: "frame", Tick: tick, Frame: f})
	if err != nil {
		current = nil
	}
	s.hub.serve(w, r, current)
}

// snapshotFrame reads the board between ticks, never halfway through a push.
func (s *Server) snapshotFrame() (uint64, environment.Frame) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.board.Frame()
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
