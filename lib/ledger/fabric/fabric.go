// Package fabric binds the ledger client to a Hyperledger Fabric network through the Fabric Gateway. Sessions sign
// with an identity kept in the wallet store and are pinned to one gateway peer taken from the connection profile.
package fabric

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/hash"
	"github.com/hyperledger/fabric-protos-go-apiv2/gateway"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/Kodjaoglanian/blockvent/lib/config"
	"github.com/Kodjaoglanian/blockvent/lib/ledger"
	"github.com/Kodjaoglanian/blockvent/lib/store"
)

// ErrBadTLSCACert is returned when the TLS CA certificate of the peer cannot be parsed.
var ErrBadTLSCACert = errors.New("cannot parse TLS CA certificate")

// Connector opens Fabric sessions. It implements ledger.Connector.
type Connector struct {
	conf   config.LedgerConfig
	wallet store.DB
}

// New returns a Connector for the channel and contract in conf, signing with the wallet identity conf.Identity.
func New(conf config.LedgerConfig, wallet store.DB) *Connector {
	return &Connector{conf: conf, wallet: wallet}
}

// Connect implements ledger.Connector.
func (c *Connector) Connect() (ledger.Session, error) {
	s, err := c.Open()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Open loads the identity, resolves the gateway peer and connects to it.
func (c *Connector) Open() (*Session, error) {
	id, err := LoadIdentity(c.wallet, c.conf.Identity, c.conf.MSPID, c.conf.CertPath, c.conf.KeyPath)
	if err != nil {
		return nil, err
	}

	cid, sign, err := signer(id)
	if err != nil {
		return nil, fmt.Errorf("identity %s: %w", c.conf.Identity, err)
	}

	profile, err := ReadProfile(c.conf.Profile)
	if err != nil {
		return nil, err
	}

	peer, err := profile.Peer(c.conf.Peer)
	if err != nil {
		return nil, err
	}

	conn, err := dial(peer)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to peer %s: %w", peer.Name, err)
	}

	gw, err := client.Connect(cid, client.WithSign(sign), client.WithHash(hash.SHA256), client.WithClientConnection(conn))
	if err != nil {
		conn.Close()

		return nil, err
	}

	network := gw.GetNetwork(c.conf.Channel)
	log.Printf("Gateway peer %s (%s), channel %s, contract %s", peer.Name, peer.Target, c.conf.Channel, c.conf.Contract)

	return &Session{
		conn:     conn,
		gw:       gw,
		network:  network,
		contract: network.GetContract(c.conf.Contract),
		name:     c.conf.Contract,
	}, nil
}

func dial(p Peer) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()

	if p.TLS {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(p.CACert) {
			return nil, fmt.Errorf("%w: %s", ErrBadTLSCACert, p.Name)
		}

		creds = credentials.NewClientTLSFromCert(pool, p.ServerName)
	}

	return grpc.NewClient(p.Target, grpc.WithTransportCredentials(creds))
}

// Session is a connection to one contract. It implements ledger.Session.
type Session struct {
	conn     *grpc.ClientConn
	gw       *client.Gateway
	network  *client.Network
	contract *client.Contract
	name     string
}

// Evaluate implements ledger.Session.
func (s *Session) Evaluate(name string, args ...string) ([]byte, error) {
	res, err := s.contract.EvaluateTransaction(name, args...)

	return res, details(err)
}

// Submit implements ledger.Session.
func (s *Session) Submit(name string, args ...string) ([]byte, error) {
	res, err := s.contract.SubmitTransaction(name, args...)

	return res, details(err)
}

// Close implements ledger.Session.
func (s *Session) Close() error {
	err := s.gw.Close()
	if cerr := s.conn.Close(); err == nil {
		err = cerr
	}

	return err
}

// Events streams the events of the contract committed after cp, or from now on when cp is nil. The channel is closed
// when ctx is done or the stream fails.
func (s *Session) Events(ctx context.Context, cp *store.Checkpoint) (<-chan ledger.Event, error) {
	var opts []client.ChaincodeEventsOption
	if cp != nil {
		opts = append(opts, client.WithCheckpoint(cp))
	}

	events, err := s.network.ChaincodeEvents(ctx, s.name, opts...)
	if err != nil {
		return nil, details(err)
	}

	out := make(chan ledger.Event)

	go func() {
		defer close(out)

		for e := range events {
			select {
			case out <- ledger.Event{Block: e.BlockNumber, TxID: e.TransactionID, Name: e.EventName, Payload: e.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// details appends to err the messages of the peers that took part in the failed call, which carry the contract's own
// error. err stays reachable with errors.Unwrap.
func details(err error) error {
	if err == nil {
		return nil
	}

	var msgs []string

	for _, d := range status.Convert(err).Details() {
		if e, ok := d.(*gateway.ErrorDetail); ok {
			log.Printf("Error from peer %s (%s): %s", e.GetAddress(), e.GetMspId(), e.GetMessage())
			msgs = append(msgs, e.GetMessage())
		}
	}

	if len(msgs) == 0 {
		return err
	}

	return fmt.Errorf("%w: %s", err, strings.Join(msgs, "; "))
}
