package bus

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"matlab-language-server/internal/common"
)

// LifecycleEvent is delivered to every registered listener on a
// transport state change, spec §4.1.
type LifecycleEvent int

const (
	Connected LifecycleEvent = iota
	Disconnected
)

func (e LifecycleEvent) String() string {
	if e == Connected {
		return "connected"
	}
	return "disconnected"
}

type subscriber struct {
	id      string
	channel string
	handler func(json.RawMessage)
}

// Subscription is an opaque handle to a live topic listener, spec §3.
// It must be released by whoever created it.
type Subscription struct {
	id string
}

// Bus is the single logical bidirectional connection to the
// interpreter, spec §4.1. A Bus outlives any one underlying connection:
// Attach/Detach swap the connection out from under live subscribers so
// the interpreter process manager can reconnect without every feature
// provider re-subscribing.
type Bus struct {
	writeMu sync.Mutex
	rw      io.ReadWriteCloser
	apiKey  string
	// disconnectOnce fires DISCONNECTED for the currently attached
	// connection exactly once, whichever of Detach or the read loop
	// notices the connection died first.
	disconnectOnce *sync.Once

	subsMu sync.RWMutex
	subs   map[string][]*subscriber // wire channel -> subscribers

	listenersMu sync.RWMutex
	listeners   []func(LifecycleEvent)

	readDone chan struct{}
}

// SetAPIKey installs the key sent as the X-App-Api-Key header on every
// outbound frame, spec §4.1. Call before Attach.
func (b *Bus) SetAPIKey(key string) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	b.apiKey = key
}

func New() *Bus {
	return &Bus{
		subs: make(map[string][]*subscriber),
	}
}

// OnLifecycle registers a listener invoked on every CONNECTED/
// DISCONNECTED transition, spec §4.1.
func (b *Bus) OnLifecycle(fn func(LifecycleEvent)) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	b.listeners = append(b.listeners, fn)
}

func (b *Bus) fireLifecycle(event LifecycleEvent) {
	b.listenersMu.RLock()
	listeners := append([]func(LifecycleEvent){}, b.listeners...)
	b.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(event)
	}
}

// Attach installs rw as the live connection and starts the read loop.
// Any previously attached connection is detached first (without firing
// a second Disconnected for it — the caller is replacing one connection
// with another, which is a single CONNECTED transition).
func (b *Bus) Attach(rw io.ReadWriteCloser) {
	b.writeMu.Lock()
	prev := b.rw
	prevOnce := b.disconnectOnce
	once := &sync.Once{}
	b.rw = rw
	b.disconnectOnce = once
	b.writeMu.Unlock()

	if prev != nil {
		if prevOnce != nil {
			prevOnce.Do(func() {})
		}
		_ = prev.Close()
	}

	done := make(chan struct{})
	b.readDone = done
	go b.readLoop(rw, once, done)

	b.fireLifecycle(Connected)
}

// Detach closes the live connection, if any, and fires DISCONNECTED.
// Idempotent.
func (b *Bus) Detach() {
	b.writeMu.Lock()
	rw := b.rw
	once := b.disconnectOnce
	b.rw = nil
	b.writeMu.Unlock()

	if rw == nil {
		return
	}
	_ = rw.Close()
	if once != nil {
		once.Do(func() { b.fireLifecycle(Disconnected) })
	}
}

func (b *Bus) isConnected() bool {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.rw != nil
}

// readLoop drains frames from rw until it errors (EOF or otherwise),
// dispatching each to matching subscribers, then fires DISCONNECTED
// exactly once.
func (b *Bus) readLoop(rw io.ReadWriteCloser, once *sync.Once, done chan struct{}) {
	defer close(done)
	fr := newFrameReader(rw)

	for {
		msg, err := fr.readFrame()
		if err != nil {
			b.writeMu.Lock()
			if b.rw == rw {
				b.rw = nil
			}
			b.writeMu.Unlock()
			common.BusLogger.Warn("bus read loop ended: %v", err)
			once.Do(func() { b.fireLifecycle(Disconnected) })
			return
		}
		b.dispatch(msg)
	}
}

func (b *Bus) dispatch(msg Message) {
	channel, ok := stripNamespace(msg.Channel)
	if !ok {
		common.BusLogger.Warn("dropping frame with unexpected channel %q", msg.Channel)
		return
	}

	b.subsMu.RLock()
	handlers := append([]*subscriber{}, b.subs[channel]...)
	b.subsMu.RUnlock()

	for _, sub := range handlers {
		sub.handler(msg.Payload)
	}
}

// Publish delivers payload to every current subscriber of channel.
// Fire-and-forget: publishing on a closed bus fails silently, per spec
// §4.1.
func (b *Bus) Publish(channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bus: marshal payload for %s: %w", channel, err)
	}

	b.writeMu.Lock()
	rw := b.rw
	b.writeMu.Unlock()
	if rw == nil {
		return nil
	}

	msg := Message{Channel: wireChannel(channel), Payload: data}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if b.rw == nil {
		return nil
	}
	if err := writeFrame(b.rw, msg, b.apiKey); err != nil {
		common.BusLogger.Warn("publish to %s failed: %v", channel, err)
		return nil
	}
	return nil
}

// Subscribe registers handler to be invoked once per message received on
// channel (including parametric suffixes the caller appended itself,
// e.g. "<base>/<id>"). Fails with common.ErrTransportClosed if the bus
// has no live connection.
func (b *Bus) Subscribe(channel string, handler func(payload json.RawMessage)) (Subscription, error) {
	if !b.isConnected() {
		return Subscription{}, common.ErrTransportClosed
	}

	id := uuid.NewString()
	sub := &subscriber{id: id, channel: channel, handler: handler}

	b.subsMu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.subsMu.Unlock()

	return Subscription{id: id}, nil
}

// Unsubscribe removes sub's handler. Idempotent — unsubscribing twice,
// or a Subscription that never matched anything, is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	if sub.id == "" {
		return
	}

	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	for channel, list := range b.subs {
		filtered := list[:0]
		for _, s := range list {
			if s.id != sub.id {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) == 0 {
			delete(b.subs, channel)
		} else {
			b.subs[channel] = filtered
		}
	}
}

// AllocateChannelID returns a process-unique string suitable for
// appending to a base channel to form a private reply inbox, spec §3.
func (b *Bus) AllocateChannelID() string {
	return uuid.NewString()
}
