// Package msg defines the interface for different message brokers.
package msg

import (
	"encoding/json"
)

// AssetEvent defines the message the listener service publishes for each contract event relayed from the ledger.
type AssetEvent struct {
	ID       string          `json:"id"`
	Channel  string          `json:"channel"`
	Contract string          `json:"contract"`
	Name     string          `json:"name"`
	TxID     string          `json:"txId"`
	Block    uint64          `json:"block"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// MsgBroker is implemented by the message brokers the listener can publish to.
type MsgBroker interface {
	Setup(interface{}) error
	Close() error

	// methods for listener service
	SendEvent(channel string, e AssetEvent) error
}
