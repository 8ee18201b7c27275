package session

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/tessro/herd/internal/logging"
)

// Status represents the caller-visible state of a session.
type Status string

const (
	// StatusIdle indicates the agent is waiting for input.
	StatusIdle Status = "idle"

	// StatusWorking indicates the agent is actively processing.
	StatusWorking Status = "working"

	// StatusOffline indicates the process has exited or errored.
	// Offline is terminal; a session cannot leave it.
	StatusOffline Status = "offline"
)

// Environment overlay applied to every spawned agent process.
const (
	// envForceColor keeps the agent CLI emitting colorized output through pipes.
	envForceColor = "FORCE_COLOR=1"

	// envSuppressHooks prevents the event-capture hook from re-invoking herd.
	envSuppressHooks = "HERD_SUPPRESS_HOOKS=1"
)

// readChunkSize is the size of the per-stream read buffer.
const readChunkSize = 4096

// OutputFunc receives raw decoded output chunks as they arrive.
type OutputFunc func(chunk string)

// ExitFunc receives the exit code when the process terminates.
// code is nil when the process was killed by a signal.
type ExitFunc func(code *int)

// Session owns one agent CLI child process: its input stream, buffered
// output, status, and activity timestamp. Sessions are created through
// Manager.Create and torn down through Manager.Kill.
type Session struct {
	id string

	mu sync.RWMutex
	// +checklocks:mu
	cmd *exec.Cmd
	// +checklocks:mu
	stdin io.WriteCloser
	// +checklocks:mu
	status Status
	// +checklocks:mu
	lastActivity time.Time

	pid       int
	createdAt time.Time
	buffer    *RingBuffer

	// done is closed by the monitor goroutine once process exit is confirmed.
	done chan struct{}

	log *slog.Logger
}

// spawn starts the agent process and wires its streams.
// The returned session is running with reader and monitor goroutines attached.
func spawn(id, command, cwd string, args []string, onOutput OutputFunc, onExit ExitFunc) (*Session, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = cwd
	cmd.Env = append(os.Environ(), envForceColor, envSuppressHooks)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: command, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, &SpawnError{Cmd: command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, &SpawnError{Cmd: command, Err: err}
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return nil, &SpawnError{Cmd: command, Err: err}
	}
	if cmd.Process == nil {
		_ = cmd.Wait()
		return nil, &SpawnError{Cmd: command, Err: errNoProcess}
	}

	now := time.Now()
	s := &Session{
		id:           id,
		cmd:          cmd,
		stdin:        stdin,
		status:       StatusIdle,
		pid:          cmd.Process.Pid,
		createdAt:    now,
		lastActivity: now,
		buffer:       NewRingBuffer(DefaultBufferLines),
		done:         make(chan struct{}),
		log:          slog.With("component", "session", "session", id),
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go s.readStream(stdout, onOutput, &readers)
	go s.readStream(stderr, onOutput, &readers)
	go s.monitor(&readers, onExit)

	s.log.Debug("session spawned", "pid", s.pid, "cwd", cwd, "args", args)
	return s, nil
}

// readStream copies one output stream into the ring buffer, chunk by chunk.
// Chunk boundaries are whatever the pipe delivers; the buffer handles
// line framing.
func (s *Session) readStream(r io.Reader, onOutput OutputFunc, readers *sync.WaitGroup) {
	defer logging.LogPanic("session-read-loop", nil)
	defer readers.Done()

	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			_, _ = s.buffer.WriteString(chunk)
			s.touch()
			if onOutput != nil {
				onOutput(chunk)
			}
		}
		if err != nil {
			if err != io.EOF {
				s.log.Debug("stream read ended", "error", err)
			}
			return
		}
	}
}

// monitor waits for both output streams to drain and the process to exit,
// then marks the session offline and reports the exit code.
func (s *Session) monitor(readers *sync.WaitGroup, onExit ExitFunc) {
	defer logging.LogPanic("session-monitor", nil)

	readers.Wait()
	err := s.cmd.Wait()

	var code *int
	if err == nil {
		zero := 0
		code = &zero
	} else if exitErr, ok := err.(*exec.ExitError); ok {
		if c := exitErr.ExitCode(); c >= 0 {
			code = &c
		}
		// c < 0 means killed by signal; leave code nil
	}

	s.setOffline()
	close(s.done)

	if code != nil {
		s.log.Debug("process exited", "pid", s.pid, "code", *code)
	} else {
		s.log.Debug("process terminated by signal", "pid", s.pid)
	}

	if onExit != nil {
		onExit(code)
	}
}

// ID returns the immutable session identifier.
func (s *Session) ID() string {
	return s.id
}

// PID returns the process id assigned at spawn.
func (s *Session) PID() int {
	return s.pid
}

// Status returns the current session status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus applies a caller-driven status update and bumps LastActivity.
// Offline is terminal: once set it cannot be overwritten.
func (s *Session) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusOffline {
		return
	}
	s.status = status
	s.lastActivity = time.Now()
}

// setOffline transitions the session to its terminal state.
func (s *Session) setOffline() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusOffline
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastActivity returns the time of the last byte transfer or status update.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// touch bumps the activity timestamp.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Buffer returns the session's output ring buffer.
func (s *Session) Buffer() *RingBuffer {
	return s.buffer
}

// Done returns a channel closed once process exit has been confirmed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// WriteText writes text plus a newline to the process stdin.
// Fire-and-forget: it does not wait for the agent to respond.
func (s *Session) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusOffline || s.stdin == nil {
		return ErrOffline
	}
	if _, err := io.WriteString(s.stdin, text+"\n"); err != nil {
		return ErrOffline
	}
	s.lastActivity = time.Now()
	return nil
}

// WriteControl writes a single control byte to the process stdin.
func (s *Session) WriteControl(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusOffline || s.stdin == nil {
		return ErrOffline
	}
	if _, err := s.stdin.Write([]byte{b}); err != nil {
		return ErrOffline
	}
	s.lastActivity = time.Now()
	return nil
}

// CloseStdin closes the input stream, signalling end of input to the agent.
// Safe to call more than once.
func (s *Session) CloseStdin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stdin != nil {
		_ = s.stdin.Close()
		s.stdin = nil
	}
}

// Alive re-checks the underlying process state. If the process has died
// the session is flipped to offline before returning false.
func (s *Session) Alive() bool {
	if s.Status() == StatusOffline {
		return false
	}

	select {
	case <-s.done:
		return false
	default:
	}

	// Probe with signal 0: delivery is skipped but liveness is checked.
	s.mu.RLock()
	cmd := s.cmd
	s.mu.RUnlock()

	if cmd == nil || cmd.Process == nil {
		s.setOffline()
		return false
	}
	if err := cmd.Process.Signal(syscall.Signal(0)); err != nil {
		s.setOffline()
		return false
	}
	return true
}

// Signal sends sig to the process. Errors are ignored when the process is
// already gone.
func (s *Session) Signal(sig syscall.Signal) {
	s.mu.RLock()
	cmd := s.cmd
	s.mu.RUnlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(sig)
	}
}

// Info returns a read-only snapshot for status reporting.
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Info{
		ID:           s.id,
		PID:          s.pid,
		Status:       s.status,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
	}
}

// Info is a read-only snapshot of session state.
type Info struct {
	ID           string
	PID          int
	Status       Status
	CreatedAt    time.Time
	LastActivity time.Time
}
