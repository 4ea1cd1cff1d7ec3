// Package listener implements the event listener service. The listener reads the events emitted by the asset registry
// contract and publishes them to the message broker, keeping in the store the position of the last event relayed so a
// restart resumes where it left off.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Kodjaoglanian/blockvent/lib/ledger"
	"github.com/Kodjaoglanian/blockvent/lib/msg"
	"github.com/Kodjaoglanian/blockvent/lib/store"
)

// ErrStreamClosed is returned when the ledger network ends the event stream.
var ErrStreamClosed = errors.New("event stream closed by the ledger network")

// EventSource streams contract events. It is implemented by *fabric.Session.
type EventSource interface {
	// Events streams the events committed after cp, or from now on when cp is nil.
	Events(ctx context.Context, cp *store.Checkpoint) (<-chan ledger.Event, error)
}

// Listener implements an event listener service for one contract on one channel.
type Listener struct {
	db       store.DB
	mb       msg.MsgBroker
	src      EventSource
	channel  string
	contract string
}

// New instantiates a new listener service.
func New(db store.DB, mb msg.MsgBroker, src EventSource, channel, contract string) *Listener {
	return &Listener{
		db:       db,
		mb:       mb,
		src:      src,
		channel:  channel,
		contract: contract,
	}
}

// Listen relays events until ctx is done, which returns nil. Events are published one at a time and the checkpoint is
// saved after each one, so when publishing fails the relay stops and that event is sent again on the next run.
func (l *Listener) Listen(ctx context.Context) error {
	var cp *store.Checkpoint

	c, err := l.db.LoadCheckpoint(l.channel)

	switch {
	case err == nil:
		cp = &c
		log.Printf("[%s] Resuming after block %d tx %s", l.channel, c.Block, c.TxID)
	case errors.Is(err, store.ErrDataNotFound):
		log.Printf("[%s] No checkpoint found, listening to new events", l.channel)
	default:
		return fmt.Errorf("cannot load checkpoint: %w", err)
	}

	// stop the stream when returning early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := l.src.Events(ctx, cp)
	if err != nil {
		return fmt.Errorf("cannot listen to contract events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Stop listening to contract events", l.channel)

			return nil
		case e, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}

				return ErrStreamClosed
			}

			if err = l.relay(e); err != nil {
				return err
			}
		}
	}
}

// relay publishes e and saves it as the checkpoint.
func (l *Listener) relay(e ledger.Event) error {
	ae := msg.AssetEvent{
		ID:       uuid.NewString(),
		Channel:  l.channel,
		Contract: l.contract,
		Name:     e.Name,
		TxID:     e.TxID,
		Block:    e.Block,
		Payload:  payload(e.Payload),
	}

	if err := l.mb.SendEvent(l.channel, ae); err != nil {
		return fmt.Errorf("cannot publish event %s of tx %s: %w", e.Name, e.TxID, err)
	}

	log.Printf("[%s] Event %s of tx %s in block %d sent as %s", l.channel, e.Name, e.TxID, e.Block, ae.ID)

	if err := l.db.SaveCheckpoint(l.channel, store.Checkpoint{Block: e.Block, TxID: e.TxID}); err != nil {
		return fmt.Errorf("cannot save checkpoint: %w", err)
	}

	return nil
}

// payload returns p as JSON. Contract events carry arbitrary bytes, anything that is not JSON is sent as a string.
func payload(p []byte) json.RawMessage {
	if len(p) == 0 {
		return nil
	}

	if json.Valid(p) {
		return p
	}

	b, _ := json.Marshal(string(p))

	return b
}
