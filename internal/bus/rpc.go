package bus

import (
	"context"
	"encoding/json"
	"fmt"
)

// Call implements the simple request/response channel pairs of spec
// §6.1 that carry no correlation id (the interpreter is single-threaded
// and serializes replies in request order, so a fixed response channel
// is unambiguous). It subscribes to responseChannel, publishes payload
// to requestChannel, and returns the first reply or ctx's error.
func (b *Bus) Call(ctx context.Context, requestChannel, responseChannel string, payload interface{}) (json.RawMessage, error) {
	replies := make(chan json.RawMessage, 1)
	sub, err := b.Subscribe(responseChannel, func(msg json.RawMessage) {
		select {
		case replies <- msg:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer b.Unsubscribe(sub)

	if err := b.Publish(requestChannel, payload); err != nil {
		return nil, fmt.Errorf("bus: publish %s: %w", requestChannel, err)
	}

	select {
	case msg := <-replies:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CallWithID implements the correlation-id request/response pattern,
// spec §4.1: allocate a channel id, subscribe to
// "<baseResponseChannel>/<id>", publish to baseRequestChannel with the
// id merged into the payload via attachID, and unsubscribe on the first
// reply.
func (b *Bus) CallWithID(ctx context.Context, baseRequestChannel, baseResponseChannel string, attachID func(id string) interface{}) (json.RawMessage, error) {
	id := b.AllocateChannelID()
	responseChannel := baseResponseChannel + "/" + id

	replies := make(chan json.RawMessage, 1)
	sub, err := b.Subscribe(responseChannel, func(msg json.RawMessage) {
		select {
		case replies <- msg:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer b.Unsubscribe(sub)

	if err := b.Publish(baseRequestChannel, attachID(id)); err != nil {
		return nil, fmt.Errorf("bus: publish %s: %w", baseRequestChannel, err)
	}

	select {
	case msg := <-replies:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stream implements the streamed-response variant used by the workspace
// indexer, spec §4.5: allocate an id, subscribe to
// "<baseResponseChannel>/<id>", publish once, and invoke onMessage for
// every reply until it reports done, at which point Stream unsubscribes
// and returns.
func (b *Bus) Stream(ctx context.Context, baseRequestChannel, baseResponseChannel string, attachID func(id string) interface{}, onMessage func(json.RawMessage) (done bool)) error {
	id := b.AllocateChannelID()
	responseChannel := baseResponseChannel + "/" + id

	doneCh := make(chan struct{})
	var closeOnce bool

	sub, err := b.Subscribe(responseChannel, func(msg json.RawMessage) {
		if onMessage(msg) {
			if !closeOnce {
				closeOnce = true
				close(doneCh)
			}
		}
	})
	if err != nil {
		return err
	}
	defer b.Unsubscribe(sub)

	if err := b.Publish(baseRequestChannel, attachID(id)); err != nil {
		return fmt.Errorf("bus: publish %s: %w", baseRequestChannel, err)
	}

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
