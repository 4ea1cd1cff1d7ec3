// Package amqp implements the message broker interface for AMQP compliant brokers (ie RabbitMQ)
package amqp

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"

	"github.com/Kodjaoglanian/blockvent/lib/msg"
)

// Exchange is the topic exchange asset events are published to ("asset events").
const Exchange = "ae"

// Amqp implements a connection to a broker and a channel for reuse.
type Amqp struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// New instantiates a new amqp broker.
func New(uri string) (msg.MsgBroker, error) {
	r := Amqp{}

	var err error

	if r.conn, err = amqp.Dial(uri); err != nil {
		return &r, fmt.Errorf("cannot dial amqp broker: %w", err)
	}

	r.ch = nil
	log.Printf("Connected to %s", uri)

	return &r, nil
}

// Setup obtains an amqp channel and declares the message broker exchange:
//
// - ae ("asset events"): the listener service publishes contract events to this exchange
func (r *Amqp) Setup(x interface{}) error {
	// obtain a one-use channel
	channel, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()
	// declare exchange
	return channel.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil)
}

// Close terminates gracefully the connection to the AMQP message broker
func (r *Amqp) Close() error {
	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			log.Printf("Error closing amqp.Channel:%v", err)
		}

		r.ch = nil
		log.Printf("amqp.Channel closed!")
	}

	return r.conn.Close()
}

// RoutingKey returns the topic an event is published with: <channel>.<contract>.<event name>.
func RoutingKey(channel string, e msg.AssetEvent) string {
	return channel + "." + e.Contract + "." + e.Name
}

// SendEvent publishes an asset event to the "ae" exchange
func (r *Amqp) SendEvent(channel string, e msg.AssetEvent) (err error) {
	// marshal to JSON
	var jsonDoc []byte
	if jsonDoc, err = json.Marshal(e); err != nil {
		return
	}
	// obtain channel if not present
	if r.ch == nil {
		if r.ch, err = r.conn.Channel(); err != nil {
			return
		}
	}
	// build body
	m := amqp.Publishing{
		Headers:      amqp.Table{"x-event-name": channel + "." + e.TxID},
		MessageId:    e.ID,
		Body:         jsonDoc,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
	}
	// publish
	if err = r.ch.Publish(Exchange, RoutingKey(channel, e), false, false, m); err != nil {
		log.Printf("[%s] Error sending asset event to message broker %v", channel, err)
		// a failed publish closes the channel, get a new one next time
		r.ch = nil
	}

	return
}
