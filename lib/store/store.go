// Package store defines the interface for database implementations to the gateway and listener services.
package store

import (
	"errors"
)

// DB defines required methods for gateways and listeners
type DB interface {
	// methods for gateway service
	GetIdentity(label string) (Identity, error)
	PutIdentity(label string, id Identity) error
	// methods for listener service
	LoadCheckpoint(channel string) (Checkpoint, error)
	SaveCheckpoint(channel string, cp Checkpoint) error
}

// Errors returned
var (
	ErrIdentityNotFound = errors.New("identity was not found in store")
	ErrDataNotFound     = errors.New("data was not found in store")
	ErrBadIdentity      = errors.New("identity must have a certificate, a private key and an MSP id")
)
