// Package providers implements the thin LSP feature providers of spec
// §4.8: each obtains a live interpreter connection, issues one bus
// round trip, and transforms the reply into LSP response types.
package providers

import (
	"context"
	"time"

	"matlab-language-server/internal/bus"
	"matlab-language-server/internal/common"
)

// ConnectionEnsurer is the sliver of interpreter.Manager every provider
// needs: bring the connection up on demand if the configured policy
// permits, spec §4.8 ("creating one on demand if policy permits").
type ConnectionEnsurer interface {
	EnsureConnection(ctx context.Context) bool
}

// base holds what every provider needs: the transport, the connection
// policy gate, and the local request timeout, spec §5 ("reject locally
// after a reasonable wait").
type base struct {
	bus     *bus.Bus
	conn    ConnectionEnsurer
	timeout time.Duration
}

func newBase(b *bus.Bus, conn ConnectionEnsurer, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return base{bus: b, conn: conn, timeout: timeout}
}

// ensure gates a bus round trip on EnsureConnection, spec §7
// (InterpreterUnavailable when the policy is "never" or launch failed).
func (b base) ensure(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if !b.conn.EnsureConnection(ctx) {
		return nil, nil, common.ErrInterpreterUnavailable
	}
	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	return reqCtx, cancel, nil
}
