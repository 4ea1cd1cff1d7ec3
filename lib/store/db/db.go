// Package db implements the opening and graceful closing of store connections.
package db

import (
	"fmt"

	"github.com/Kodjaoglanian/blockvent/lib/store"
	"github.com/Kodjaoglanian/blockvent/lib/store/file"
	"github.com/Kodjaoglanian/blockvent/lib/store/mongo"
	"github.com/Kodjaoglanian/blockvent/lib/store/postgres"
)

const (
	FILE     string = "file"
	MONGODB  string = "mongodb"
	POSTGRES string = "postgresql"
)

// New returns a new store connection according to the options (store type).
func New(options, connection string) (store.DB, error) {
	switch options {
	case FILE, "":
		return file.New(connection)
	case MONGODB:
		return mongo.New(connection)
	case POSTGRES:
		return postgres.New(connection)
	}

	return nil, fmt.Errorf("unknown store type %q", options)
}

// Close gracefully closes the store connection.
func Close(options string, dh store.DB) error {
	switch options {
	case FILE, "":
		return dh.(*file.File).CloseFile()
	case MONGODB:
		return dh.(*mongo.Mongo).CloseMongo()
	case POSTGRES:
		return dh.(*postgres.Postgres).ClosePostgres()
	}

	return nil
}
