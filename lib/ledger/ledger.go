// Package ledger implements the client side of the asset registry contract. A Client keeps one session to the ledger
// network, connecting lazily, and exposes the contract transactions as operations returning JSON documents.
//
// The contract owns every rule about assets; the client only invokes it and shapes its replies. Query functions are
// evaluated on a peer without creating a transaction, while mutations are submitted for endorsement and commit.
package ledger

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Contract transaction names.
const (
	FnGetAllAssets    = "GetAllAssets"
	FnGetAsset        = "GetAsset"
	FnCreateAsset     = "CreateAsset"
	FnUpdateAsset     = "UpdateAsset"
	FnTransferAsset   = "TransferAsset"
	FnGetAssetHistory = "GetAssetHistory"
)

// Session is an open connection to one contract on one channel.
type Session interface {
	// Evaluate runs a query transaction on a peer and returns its result.
	Evaluate(name string, args ...string) ([]byte, error)
	// Submit endorses and commits a transaction and returns its result.
	Submit(name string, args ...string) ([]byte, error)
	// Close releases the session.
	Close() error
}

// Connector opens sessions to the ledger network.
type Connector interface {
	Connect() (Session, error)
}

// State of the connection to the ledger network.
type State int

const (
	DISCONNECTED State = iota
	CONNECTING
	CONNECTED
)

func (s State) String() string {
	switch s {
	case CONNECTING:
		return "connecting"
	case CONNECTED:
		return "connected"
	default:
		return "disconnected"
	}
}

// Client is the asset registry client. It is safe for concurrent use.
type Client struct {
	connector Connector
	contract  string // used in logs and errors

	mu      sync.RWMutex
	session Session
	state   State

	connecting singleflight.Group
}

// New returns a disconnected Client that opens sessions with connector.
func New(connector Connector, contract string) *Client {
	return &Client{
		connector: connector,
		contract:  contract,
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Connect opens a session if there is none. Concurrent callers share the same attempt: one of them dials and all of
// them get its outcome.
func (c *Client) Connect() error {
	_, err, _ := c.connecting.Do("connect", func() (interface{}, error) {
		c.mu.Lock()
		if c.session != nil {
			c.mu.Unlock()

			return nil, nil
		}

		c.state = CONNECTING
		c.mu.Unlock()

		s, err := c.connector.Connect()

		c.mu.Lock()
		defer c.mu.Unlock()

		connects.WithLabelValues(outcome(err)).Inc()

		if err != nil {
			c.state = DISCONNECTED
			log.Printf("[%s] Error connecting to the ledger network: %v", c.contract, err)

			return nil, err
		}

		c.session = s
		c.state = CONNECTED
		log.Printf("[%s] Connected to the ledger network", c.contract)

		return nil, nil
	})

	return err
}

// Disconnect closes the session, if any. The next operation connects again.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}

	err := c.session.Close()
	c.session = nil
	c.state = DISCONNECTED
	log.Printf("[%s] Disconnected from the ledger network", c.contract)

	return err
}

// ensureSession returns the open session, connecting first when there is none.
func (c *Client) ensureSession() (Session, error) {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()

	if s != nil {
		return s, nil
	}

	if err := c.Connect(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		// disconnected in between
		return nil, ErrNotConnected
	}

	return c.session, nil
}

func (c *Client) evaluate(name string, args ...string) ([]byte, error) {
	s, err := c.ensureSession()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.Evaluate(name, args...)
	observeCall(name, start, err)

	return res, c.check(name, err)
}

func (c *Client) submit(name string, args ...string) ([]byte, error) {
	s, err := c.ensureSession()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.Submit(name, args...)
	observeCall(name, start, err)

	return res, c.check(name, err)
}

// check logs and enriches a remote error.
func (c *Client) check(name string, err error) error {
	if err == nil {
		return nil
	}

	err = enrich(c.contract, name, err)
	log.Printf("[%s] %s failed: %v", c.contract, name, err)

	return err
}

// GetAllAssets returns the JSON list of all assets. An empty reply is an empty list.
func (c *Client) GetAllAssets() (json.RawMessage, error) {
	res, err := c.evaluate(FnGetAllAssets)
	if err != nil {
		return nil, err
	}

	if isEmpty(res) {
		return emptyList(), nil
	}

	if !json.Valid(res) {
		log.Printf("[%s] %s replied with non JSON data: %q", c.contract, FnGetAllAssets, res)

		return wrapList(res), nil
	}

	return res, nil
}

// GetAsset returns the JSON document of the asset id. An empty reply is ErrAssetNotFound.
func (c *Client) GetAsset(id string) (json.RawMessage, error) {
	res, err := c.evaluate(FnGetAsset, id)
	if err != nil {
		return nil, err
	}

	if isEmpty(res) {
		log.Printf("[%s] %s %s: %v", c.contract, FnGetAsset, id, ErrAssetNotFound)

		return nil, ErrAssetNotFound
	}

	if !json.Valid(res) {
		return wrapItem(id, res), nil
	}

	return res, nil
}

// CreateAsset submits a new asset and returns the contract reply, or the asset itself when the contract replies
// nothing.
func (c *Client) CreateAsset(a Asset) (json.RawMessage, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}

	res, err := c.submit(FnCreateAsset, string(doc))
	if err != nil {
		return nil, err
	}

	return c.submitted(a.ID, res, doc), nil
}

// UpdateAsset submits a partial update and returns the contract reply, or the patch itself when the contract replies
// nothing.
func (c *Client) UpdateAsset(p AssetPatch) (json.RawMessage, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	res, err := c.submit(FnUpdateAsset, string(doc))
	if err != nil {
		return nil, err
	}

	return c.submitted(p.ID, res, doc), nil
}

// TransferAsset submits a custody change of asset id to custodian and returns the contract reply, or the new
// custody when the contract replies nothing.
func (c *Client) TransferAsset(id, custodian string) (json.RawMessage, error) {
	res, err := c.submit(FnTransferAsset, id, custodian)
	if err != nil {
		return nil, err
	}

	doc, _ := json.Marshal(struct {
		ID          string `json:"id"`
		Responsavel string `json:"responsavel"`
	}{id, custodian})

	return c.submitted(id, res, doc), nil
}

// GetAssetHistory returns the JSON history of asset id as the contract replies it. An empty reply is an empty list.
func (c *Client) GetAssetHistory(id string) (json.RawMessage, error) {
	res, err := c.evaluate(FnGetAssetHistory, id)
	if err != nil {
		return nil, err
	}

	if isEmpty(res) {
		return emptyList(), nil
	}

	if !json.Valid(res) {
		log.Printf("[%s] %s replied with non JSON data: %q", c.contract, FnGetAssetHistory, res)

		return wrapList(res), nil
	}

	return res, nil
}

// submitted shapes the reply of a submitted transaction: the reply when it is JSON, echo when it is empty, and the
// raw data keyed by id otherwise.
func (c *Client) submitted(id string, res, echo []byte) json.RawMessage {
	if isEmpty(res) {
		return echo
	}

	if !json.Valid(res) {
		log.Printf("[%s] asset %s: contract replied with non JSON data: %q", c.contract, id, res)

		return wrapItem(id, res)
	}

	return res
}
