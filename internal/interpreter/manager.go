// Package interpreter drives the subordinate interpreter process (or an
// existing one the server attaches to) and the bus connection to it,
// spec §4.2.
package interpreter

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
	"matlab-language-server/internal/config"
)

// State is the interpreter connection state machine, spec §4.2.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// StatusListener is notified on every state transition, spec §7
// ("a connection-status notification connecting|connected|disconnected
// is emitted on every state transition").
type StatusListener func(State)

// Manager owns the interpreter connection lifecycle: launching (or
// attaching to) the interpreter process, running the handshake, and
// handing out the live Bus once Connected.
type Manager struct {
	cfg config.Config
	bus *bus.Bus

	mu        sync.Mutex
	state     State
	process   *ownedProcess
	listeners []StatusListener

	helperPath string // directory containing the server's MATLAB helper code
}

// New constructs a Manager in the Disconnected state. helperPath is the
// directory of server-provided MATLAB helper code added to the
// interpreter's search path during bootstrap, spec §4.2(a).
func New(cfg config.Config, helperPath string) *Manager {
	m := &Manager{
		cfg:        cfg,
		bus:        bus.New(),
		helperPath: helperPath,
	}
	m.bus.OnLifecycle(func(event bus.LifecycleEvent) {
		if event == bus.Disconnected {
			m.setState(Disconnected)
		}
	})
	return m
}

// OnStatusChange registers a listener for connection-status
// notifications.
func (m *Manager) OnStatusChange(fn StatusListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	listeners := append([]StatusListener{}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Bus returns the underlying transport. Feature providers use it
// directly once EnsureConnection has returned true.
func (m *Manager) Bus() *bus.Bus { return m.bus }

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether the manager is currently in the Connected
// state. Satisfies the small ConnectionState interface the indexer and
// feature providers depend on instead of the full Manager.
func (m *Manager) Connected() bool {
	return m.State() == Connected
}

// EnsureConnection is idempotent: if already Connected it returns true
// immediately; if the connection policy is "never" it returns false
// without attempting anything; otherwise it drives the state machine to
// Connected (spawning or dialing as configured) and returns whether that
// succeeded.
func (m *Manager) EnsureConnection(ctx context.Context) bool {
	if m.cfg.MatlabConnectionTiming == config.TimingNever {
		return false
	}

	m.mu.Lock()
	if m.state == Connected {
		m.mu.Unlock()
		return true
	}
	if m.state == Connecting {
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	m.setState(Connecting)

	var err error
	if m.cfg.IsAttached() {
		err = m.connectAttached(ctx)
	} else {
		err = m.connectOwned(ctx)
	}
	if err != nil {
		common.InterpreterLogger.Error("interpreter connection failed: %v", err)
		m.setState(Disconnected)
		return false
	}

	m.setState(Connected)
	return true
}

// connectOwned implements the owned-process flavor of §4.2: spawn the
// interpreter with a bootstrap instruction, wait for the handshake file,
// load the pinned TLS config from the cert/key it wrote, delete those
// files, then dial the bus.
func (m *Manager) connectOwned(ctx context.Context) error {
	binary, err := resolveBinary(m.cfg.MatlabInstallPath)
	if err != nil {
		return err
	}

	apiKey, err := randomAPIKey()
	if err != nil {
		return err
	}

	bc, err := newBootstrapContext(apiKey)
	if err != nil {
		return err
	}

	bootstrapArgs := buildBootstrapArgs(m.helperPath, bc)
	proc, err := launchOwnedProcess(ctx, binary, m.cfg.MatlabLaunchCommandArgs, bootstrapArgs)
	if err != nil {
		return err
	}

	hsCtx, cancel := context.WithTimeout(ctx, m.cfg.HandshakeTimeout)
	defer cancel()

	hs, err := waitForHandshake(hsCtx, bc.handshakeDir, handshakeFileName)
	if err != nil {
		_ = proc.stop()
		return fmt.Errorf("interpreter: handshake: %w", err)
	}
	common.InterpreterLogger.Info("interpreter handshake received: pid=%d release=%s", hs.PID, hs.Release)

	tlsCfg, err := bus.LoadPinnedTLSConfig(bc.certPath(), bc.keyPath())
	if err != nil {
		_ = proc.stop()
		return fmt.Errorf("interpreter: tls config: %w", err)
	}
	bus.DeleteCertFiles(bc.certPath(), bc.keyPath())

	m.mu.Lock()
	m.process = proc
	m.mu.Unlock()

	go func() {
		<-proc.done
		common.InterpreterLogger.Warn("interpreter process exited: %v", proc.err)
		m.setState(Disconnected)
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", bc.busPort)
	return m.bus.Dial(ctx, bus.DialOptions{Address: addr, TLS: tlsCfg, APIKey: apiKey, Timeout: m.cfg.HandshakeTimeout})
}

// connectAttached implements §4.2's attached-process flavor: dial the
// configured URL and publish the startup bootstrap message, then run
// the 1s reconnect loop in the background for the lifetime of ctx.
func (m *Manager) connectAttached(ctx context.Context) error {
	opts := bus.DialOptions{Address: m.cfg.MatlabURL, TLS: nil, Timeout: m.cfg.HandshakeTimeout}
	if err := m.bus.Dial(ctx, opts); err != nil {
		return err
	}

	if err := m.bus.Publish("/startup", map[string]any{}); err != nil {
		common.InterpreterLogger.Warn("startup publish failed: %v", err)
	}

	go m.bus.RunReconnectLoop(ctx, opts, func() bool { return true })
	return nil
}

// Shutdown closes the transport and, for an owned process, kills the
// child. Transitions to Disconnected and notifies listeners, spec §4.2.
func (m *Manager) Shutdown() error {
	m.bus.Detach()

	m.mu.Lock()
	proc := m.process
	m.process = nil
	m.mu.Unlock()

	var err error
	if proc != nil {
		err = proc.stop()
	}
	m.setState(Disconnected)
	return err
}

func randomAPIKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("interpreter: generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
