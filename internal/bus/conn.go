package bus

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"matlab-language-server/internal/common"
)

// ReconnectDelay is the fixed backoff between reconnect attempts for an
// attached (not server-owned) interpreter connection, spec §4.1/§4.2.
const ReconnectDelay = time.Second

// DialOptions describes how to reach the interpreter's bus endpoint.
type DialOptions struct {
	Address  string // host:port
	TLS      *tls.Config
	APIKey   string
	Timeout  time.Duration
}

// Dial opens a single TLS connection and attaches it to b. The caller
// owns retrying; Dial itself makes one attempt.
func (b *Bus) Dial(ctx context.Context, opts DialOptions) error {
	dialer := &net.Dialer{Timeout: opts.Timeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", opts.Address)
	if err != nil {
		return fmt.Errorf("bus: dial %s: %w", opts.Address, err)
	}

	b.SetAPIKey(opts.APIKey)

	if opts.TLS == nil {
		// Attached-process mode to a URL the interpreter itself secures
		// (or an operator-trusted local endpoint); §4.1's TLS pinning
		// requirement is specific to the owned, server-launched flavor.
		b.Attach(rawConn)
		return nil
	}

	conn := tls.Client(rawConn, opts.TLS)
	if err := conn.HandshakeContext(ctx); err != nil {
		_ = rawConn.Close()
		return fmt.Errorf("bus: tls handshake with %s: %w", opts.Address, err)
	}
	b.Attach(conn)
	return nil
}

// RunReconnectLoop keeps the bus connected to opts.Address for the
// lifetime of ctx, spec §4.2: on every DISCONNECTED event it waits
// ReconnectDelay and dials again, stopping only when ctx is cancelled
// or the caller-supplied shouldReconnect policy check returns false. The
// caller is responsible for the initial connection — this only reacts
// to subsequent disconnects, so it never redials a connection the
// caller just established itself.
//
// It is used only for an attached (externally started) interpreter;
// an owned interpreter process instead drives reconnection from its own
// process-exit handling, since a dead owned process needs relaunching,
// not just redialing.
func (b *Bus) RunReconnectLoop(ctx context.Context, opts DialOptions, shouldReconnect func() bool) {
	disconnected := make(chan struct{}, 1)
	b.OnLifecycle(func(event LifecycleEvent) {
		if event == Disconnected {
			select {
			case disconnected <- struct{}{}:
			default:
			}
		}
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-disconnected:
			if shouldReconnect != nil && !shouldReconnect() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(ReconnectDelay):
			}
			if err := b.Dial(ctx, opts); err != nil {
				common.BusLogger.Warn("reconnect to %s failed: %v", opts.Address, err)
				select {
				case disconnected <- struct{}{}:
				default:
				}
			}
		}
	}
}
