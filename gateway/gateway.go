// Package gateway implements the asset registry gateway service.
//
// This service implements a JSON API over the asset registry contract of a Fabric network and serves the static files
// of the browser client. Every request is answered with the envelope {success, data, error}; the registry rules are
// enforced by the contract, the gateway only checks requests are complete before calling it.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Kodjaoglanian/blockvent/lib/ledger"
)

// Ledger is the asset registry used by the gateway. It is implemented by *ledger.Client.
type Ledger interface {
	GetAllAssets() (json.RawMessage, error)
	GetAsset(id string) (json.RawMessage, error)
	CreateAsset(a ledger.Asset) (json.RawMessage, error)
	UpdateAsset(p ledger.AssetPatch) (json.RawMessage, error)
	TransferAsset(id, custodian string) (json.RawMessage, error)
	GetAssetHistory(id string) (json.RawMessage, error)
	Disconnect() error
}

// Gateway contains the data necessary to deliver the service.
type Gateway struct {
	lc       Ledger
	public   string // static files root
	validate *validator.Validate
	s        *http.Server  // http server
	ss       *http.Server  // https server
	sc       chan struct{} // closed when servers have been shut down
}

// New returns a pointer to a new Gateway service over lc, serving static files from the public directory.
func New(lc Ledger, public string) *Gateway {
	return &Gateway{
		lc:       lc,
		public:   public,
		validate: validator.New(),
		sc:       make(chan struct{}),
	}
}

// Stop closes the ledger session and then shuts down the http servers implementing the API.
func (g *Gateway) Stop() {
	var err error
	// close the ledger session first
	if err = g.lc.Disconnect(); err != nil {
		log.Printf("Error closing ledger session:%v", err)
	}
	// shutdown http servers
	if g.s != nil {
		if err = g.s.Shutdown(context.Background()); err != nil {
			log.Printf("Error in http server shutdown:%v", err)
		}
	}

	if g.ss != nil {
		if err = g.ss.Shutdown(context.Background()); err != nil {
			log.Printf("Error in https server shutdown:%v", err)
		}
	}

	close(g.sc) // indicate shutdowns have finished
}
