package session

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/tessro/herd/internal/event"
	"github.com/tessro/herd/internal/prompt"
)

// DefaultCommand is the agent CLI spawned for new sessions.
const DefaultCommand = "claude"

// Termination escalation grace periods. Each stage is skipped as soon as
// the process is confirmed dead.
const (
	// stdinGrace is the wait after closing stdin before sending SIGTERM.
	stdinGrace = 1 * time.Second

	// termGrace is the wait after SIGTERM before sending SIGKILL.
	termGrace = 2 * time.Second
)

// promptWindow is the number of recent buffer entries handed to the
// prompt detector.
const promptWindow = 50

// Control names a stdin control signal accepted by SendControl.
type Control string

const (
	ControlInterrupt  Control = "interrupt"
	ControlEndOfInput Control = "end-of-input"
	ControlSuspend    Control = "suspend"
)

// controlBytes maps control symbols to the byte written to the agent's stdin.
var controlBytes = map[Control]byte{
	ControlInterrupt:  0x03, // ETX, ^C
	ControlEndOfInput: 0x04, // EOT, ^D
	ControlSuspend:    0x1a, // SUB, ^Z
}

// Manager owns the set of live sessions, keyed by caller-supplied id.
// It is safe for concurrent use; each Manager instance is independent,
// so tests can run several side by side.
type Manager struct {
	command string

	mu sync.RWMutex
	// +checklocks:mu
	sessions map[string]*Session
	// +checklocks:mu
	pending map[string]struct{} // ids mid-spawn, reserved before the process exists

	events event.Emitter[Event]
	log    *slog.Logger
}

// NewManager creates a session manager that spawns command for each
// session. An empty command selects DefaultCommand.
func NewManager(command string) *Manager {
	if command == "" {
		command = DefaultCommand
	}
	return &Manager{
		command:  command,
		sessions: make(map[string]*Session),
		pending:  make(map[string]struct{}),
		log:      slog.With("component", "manager"),
	}
}

// OnEvent registers a handler for session lifecycle events.
func (m *Manager) OnEvent(handler func(Event)) {
	m.events.OnEvent(handler)
}

// SetSink attaches an injectable sink that receives each lifecycle event
// formatted as a timestamped line. Without a sink, events are still
// logged through slog.
func (m *Manager) SetSink(sink Sink) {
	if sink == nil {
		return
	}
	m.events.OnEvent(func(e Event) {
		sink(e.Line())
	})
}

// emit records a lifecycle event through slog and any registered handlers.
func (m *Manager) emit(kind EventKind, id, detail string) {
	e := Event{Time: time.Now(), Kind: kind, SessionID: id, Detail: detail}
	m.log.Info(string(kind), "session", id, "detail", detail)
	m.events.Emit(e)
}

// Create spawns a new agent session with the given working directory and
// arguments. onOutput receives raw output chunks as they arrive; onExit
// fires once with the exit code (nil when signal-killed). The session is
// registered before Create returns.
func (m *Manager) Create(id, cwd string, args []string, onOutput OutputFunc, onExit ExitFunc) (*Session, error) {
	m.mu.Lock()
	if _, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return nil, ErrDuplicateSession
	}
	if _, ok := m.pending[id]; ok {
		m.mu.Unlock()
		return nil, ErrDuplicateSession
	}
	m.pending[id] = struct{}{}
	m.mu.Unlock()

	wrappedExit := func(code *int) {
		if code != nil {
			m.emit(EventExit, id, "code="+strconv.Itoa(*code))
		} else {
			m.emit(EventExit, id, "signal-killed")
		}
		if onExit != nil {
			onExit(code)
		}
	}

	s, err := spawn(id, m.command, cwd, args, onOutput, wrappedExit)

	m.mu.Lock()
	delete(m.pending, id)
	if err == nil {
		m.sessions[id] = s
	}
	m.mu.Unlock()

	if err != nil {
		m.emit(EventError, id, err.Error())
		return nil, err
	}

	m.emit(EventCreate, id, "pid="+strconv.Itoa(s.PID()))
	return s, nil
}

// Get returns the session for id, or ok=false when absent.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns snapshots of all registered sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SendText writes text plus a newline to the session's stdin.
func (m *Manager) SendText(id, text string) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrNotFound
	}
	if err := s.WriteText(text); err != nil {
		return err
	}
	m.emit(EventSend, id, "text")
	return nil
}

// SendControl writes a named control byte to the session's stdin.
// Recognized symbols: interrupt, end-of-input, suspend.
func (m *Manager) SendControl(id string, symbol Control) error {
	b, ok := controlBytes[symbol]
	if !ok {
		return ErrUnknownControl
	}
	s, found := m.Get(id)
	if !found {
		return ErrNotFound
	}
	if err := s.WriteControl(b); err != nil {
		return err
	}
	m.emit(EventSend, id, "control="+string(symbol))
	return nil
}

// GetOutput returns the last n buffered lines concatenated in order.
func (m *Manager) GetOutput(id string, n int) (string, error) {
	s, ok := m.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	return s.Buffer().Last(n), nil
}

// GetAllOutput returns the full buffered output.
func (m *Manager) GetAllOutput(id string) (string, error) {
	s, ok := m.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	return s.Buffer().All(), nil
}

// IsAlive reports whether the session's process is still running.
// Unknown ids are simply not alive. A dead process flips the session
// to offline as a side effect.
func (m *Manager) IsAlive(id string) bool {
	s, ok := m.Get(id)
	if !ok {
		return false
	}
	return s.Alive()
}

// UpdateStatus applies a caller-driven status update.
// No-op when the session does not exist.
func (m *Manager) UpdateStatus(id string, status Status) {
	s, ok := m.Get(id)
	if !ok {
		return
	}
	s.SetStatus(status)
}

// DetectPermissionPrompt scans the session's recent output for an active
// interactive permission prompt.
func (m *Manager) DetectPermissionPrompt(id string) (*prompt.Prompt, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return prompt.Detect(recentLines(s.Buffer())), nil
}

// DetectBypassWarning reports whether the session's recent output contains
// the bypass-permissions warning.
func (m *Manager) DetectBypassWarning(id string) (bool, error) {
	s, ok := m.Get(id)
	if !ok {
		return false, ErrNotFound
	}
	return prompt.DetectBypassWarning(recentLines(s.Buffer())), nil
}

// recentLines returns the detector window: the last promptWindow buffer
// entries with terminators stripped.
func recentLines(rb *RingBuffer) []string {
	entries := rb.Lines(promptWindow)
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = trimTerminator(e)
	}
	return lines
}

func trimTerminator(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		return line[:n-1]
	}
	return line
}

// Kill tears down one session with escalation: close stdin, wait, SIGTERM,
// wait, SIGKILL. The session is removed from the registry once the process
// is confirmed dead. Killing an unknown id is a silent success.
func (m *Manager) Kill(id string) {
	s, ok := m.Get(id)
	if !ok {
		return
	}

	s.CloseStdin()

	if !s.waitExit(stdinGrace) {
		s.Signal(syscall.SIGTERM)
		if !s.waitExit(termGrace) {
			s.Signal(syscall.SIGKILL)
			// SIGKILL cannot be ignored; wait for exit confirmation.
			<-s.Done()
		}
	}

	s.setOffline()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	m.emit(EventKill, id, "")
}

// Shutdown kills every registered session concurrently and waits for all
// teardowns to finish. Calling it again is safe and terminates nothing.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			m.Kill(id)
		}(id)
	}
	wg.Wait()

	if len(ids) > 0 {
		m.log.Info("shutdown complete", "killed", len(ids))
	}
}

// waitExit blocks until the process exits or d elapses.
// Returns true when the process is confirmed dead.
func (s *Session) waitExit(d time.Duration) bool {
	select {
	case <-s.done:
		return true
	case <-time.After(d):
		return false
	}
}

