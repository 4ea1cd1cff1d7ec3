// Package postgres implements the interface for PostgreSQL.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" //nolint:gci // load the postgres driver that is used by the system
	migrate "github.com/rubenv/sql-migrate"

	"github.com/Kodjaoglanian/blockvent/lib/store"
)

// migrations creates the tables used by the wallet and the listener.
var migrations = &migrate.MemoryMigrationSource{ //nolint:gochecknoglobals // static schema
	Migrations: []*migrate.Migration{
		{
			Id: "1_identities",
			Up: []string{`CREATE TABLE IF NOT EXISTS identities (
				label       TEXT PRIMARY KEY,
				msp_id      TEXT NOT NULL,
				type        TEXT NOT NULL,
				version     INTEGER NOT NULL,
				certificate TEXT NOT NULL,
				private_key TEXT NOT NULL
			)`},
			Down: []string{`DROP TABLE identities`},
		},
		{
			Id: "2_checkpoints",
			Up: []string{`CREATE TABLE IF NOT EXISTS checkpoints (
				channel TEXT PRIMARY KEY,
				block   BIGINT NOT NULL,
				tx_id   TEXT NOT NULL
			)`},
			Down: []string{`DROP TABLE checkpoints`},
		},
	},
}

// Postgres implements a connection to a PostgreSQL database.
type Postgres struct {
	db *sqlx.DB
}

// identityRow is an identities table row.
type identityRow struct {
	Label       string `db:"label"`
	MspID       string `db:"msp_id"`
	Type        string `db:"type"`
	Version     int    `db:"version"`
	Certificate string `db:"certificate"`
	PrivateKey  string `db:"private_key"`
}

// checkpointRow is a checkpoints table row.
type checkpointRow struct {
	Channel string `db:"channel"`
	Block   int64  `db:"block"`
	TxID    string `db:"tx_id"`
}

// New returns a postgres client connection to the specified database in 'connection' and applies the migrations.
func New(connection string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	n, err := migrate.Exec(db.DB, "postgres", migrations, migrate.Up)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("cannot apply migrations: %w", err)
	}

	if n > 0 {
		log.Printf("Applied %d migrations to the database.", n)
	}

	return &Postgres{db: db}, nil
}

// ClosePostgres will close any database connection. Must be called at termination time.
func (p *Postgres) ClosePostgres() error {
	return p.db.Close()
}

// GetIdentity returns the identity saved under label.
func (p *Postgres) GetIdentity(label string) (store.Identity, error) {
	var r identityRow

	err := p.db.Get(&r, `SELECT label, msp_id, type, version, certificate, private_key
		FROM identities WHERE label = $1`, label)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Identity{}, store.ErrIdentityNotFound
	}

	if err != nil {
		return store.Identity{}, fmt.Errorf("could not get identity %s from db: %w", label, err)
	}

	return store.Identity{
		Credentials: store.Credentials{Certificate: r.Certificate, PrivateKey: r.PrivateKey},
		MspID:       r.MspID,
		Type:        r.Type,
		Version:     r.Version,
	}, nil
}

// PutIdentity saves the identity under label, replacing any previous one.
func (p *Postgres) PutIdentity(label string, id store.Identity) error {
	if !id.Valid() {
		return store.ErrBadIdentity
	}

	_, err := p.db.NamedExec(`INSERT INTO identities (label, msp_id, type, version, certificate, private_key)
		VALUES (:label, :msp_id, :type, :version, :certificate, :private_key)
		ON CONFLICT (label) DO UPDATE SET msp_id = EXCLUDED.msp_id, type = EXCLUDED.type,
			version = EXCLUDED.version, certificate = EXCLUDED.certificate, private_key = EXCLUDED.private_key`,
		identityRow{
			Label:       label,
			MspID:       id.MspID,
			Type:        id.Type,
			Version:     id.Version,
			Certificate: id.Credentials.Certificate,
			PrivateKey:  id.Credentials.PrivateKey,
		})
	if err != nil {
		return fmt.Errorf("could not save identity %s in db: %w", label, err)
	}

	return nil
}

// LoadCheckpoint loads from db the checkpoint for the indicated channel.
func (p *Postgres) LoadCheckpoint(channel string) (store.Checkpoint, error) {
	var r checkpointRow

	err := p.db.Get(&r, `SELECT channel, block, tx_id FROM checkpoints WHERE channel = $1`, channel)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Checkpoint{}, store.ErrDataNotFound
	}

	if err != nil {
		return store.Checkpoint{}, fmt.Errorf("could not load checkpoint for %s: %w", channel, err)
	}

	return store.Checkpoint{Block: uint64(r.Block), TxID: r.TxID}, nil
}

// SaveCheckpoint saves to db the checkpoint for the indicated channel.
func (p *Postgres) SaveCheckpoint(channel string, cp store.Checkpoint) error {
	_, err := p.db.NamedExec(`INSERT INTO checkpoints (channel, block, tx_id) VALUES (:channel, :block, :tx_id)
		ON CONFLICT (channel) DO UPDATE SET block = EXCLUDED.block, tx_id = EXCLUDED.tx_id`,
		checkpointRow{Channel: channel, Block: int64(cp.Block), TxID: cp.TxID})
	if err != nil {
		return fmt.Errorf("could not save checkpoint for %s: %w", channel, err)
	}

	return nil
}

// DeleteCheckpoint deletes from db the checkpoint for the indicated channel.
func (p *Postgres) DeleteCheckpoint(channel string) error {
	_, err := p.db.Exec(`DELETE FROM checkpoints WHERE channel = $1`, channel)

	return err
}
