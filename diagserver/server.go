package diagserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/ark-vm/whitespace/vm"
	"github.com/gorilla/websocket"
)

// Server serves read-only introspection over a *vm.Machine while it runs.
//
// vm.Machine documents that it offers no internal synchronization: a
// Run loop mutates its instruction pointer, state, and stack on whatever
// goroutine called Run, with no locking of its own. Server never reads
// those fields concurrently with Run to work around that. Instead it
// keeps its own cached snapshot, written only from contexts that are
// already serialized with Run: the step hook (documented to run
// synchronously on Run's goroutine, once per instruction) and Finish
// (to be called by the caller only after Run has returned). handleState
// reads that cache, not the Machine, under Server's own mutex.
type Server struct {
	mu      sync.RWMutex
	machine *vm.Machine
	state   stateResponse
	bcast   *Broadcaster
	http    *http.Server
	upgrade websocket.Upgrader
}

// New builds a Server bound to addr (e.g. ":8787"). Call SetMachine once
// the program's Machine exists, and Start to begin serving in the
// background.
func New(addr string) *Server {
	s := &Server{bcast: NewBroadcaster()}
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/trace", s.handleTrace)
	s.http = &http.Server{Addr: addr, Handler: mux}
	s.upgrade = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return s
}

// SetMachine attaches the Machine this server reports on and wires its step
// hook to the broadcaster, so every executed instruction is published to
// /trace subscribers as a JSON event and cached for /state. Call this
// before starting m.Run, while only one goroutine touches m.
func (s *Server) SetMachine(m *vm.Machine) {
	s.mu.Lock()
	s.machine = m
	s.state = stateResponse{IP: m.IP(), Stack: m.StackSnapshot(), State: stateName(m.State())}
	s.mu.Unlock()

	m.SetStepHook(func(ev vm.Event) {
		b, err := json.Marshal(ev)
		if err == nil {
			s.bcast.Publish(b)
		}
		s.mu.Lock()
		s.state = stateResponse{IP: ev.IP, Stack: ev.Stack, State: ev.State}
		s.mu.Unlock()
	})
}

// Finish records m's terminal state once its Run call has returned. Call
// it from the same goroutine that called Run, after Run returns — at
// that point nothing is still mutating m, so the read is safe.
func (s *Server) Finish(m *vm.Machine) {
	s.mu.Lock()
	s.state = stateResponse{IP: m.IP(), Stack: m.StackSnapshot(), State: stateName(m.State())}
	s.mu.Unlock()
}

// Start begins serving in a background goroutine. Errors other than
// http.ErrServerClosed are sent to errc.
func (s *Server) Start(errc chan<- error) {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()
}

// Close shuts the server down.
func (s *Server) Close() error {
	return s.http.Close()
}

type stateResponse struct {
	IP    int     `json:"ip"`
	Stack []int64 `json:"stack"`
	State string  `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	attached := s.machine != nil
	resp := s.state
	s.mu.RUnlock()
	if !attached {
		http.Error(w, "machine not yet started", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.bcast.Subscribe()
	defer unsubscribe()

	for msg := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func stateName(st vm.State) string {
	return st.String()
}
