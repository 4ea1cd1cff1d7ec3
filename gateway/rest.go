package gateway

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Kodjaoglanian/blockvent/lib/util"
)

const timeout = 15

// API paths. Any path starting with one of them is answered by the API, never by the static file server.
const (
	pathAssets   = "/assets"
	pathAsset    = "/asset"
	pathHistory  = "/history"
	pathCreate   = "/create"
	pathUpdate   = "/update"
	pathTransfer = "/transfer"
)

var apiPrefixes = []string{pathAssets, pathAsset, pathHistory, pathCreate, pathUpdate, pathTransfer} //nolint:gochecknoglobals

// Handler returns the http handler of the API and the static files.
func (g *Gateway) Handler() http.Handler {
	r := mux.NewRouter()

	// API definition
	api := r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return util.HasAnyPrefix(req.URL.Path, apiPrefixes)
	}).Subrouter()
	api.HandleFunc(pathAssets, g.assetsHandler).Methods(http.MethodGet)     // list all assets
	api.HandleFunc(pathAsset, g.assetHandler).Methods(http.MethodGet)       // get one asset
	api.HandleFunc(pathHistory, g.historyHandler).Methods(http.MethodGet)   // get the history of an asset
	api.HandleFunc(pathCreate, g.createHandler).Methods(http.MethodPost)    // create an asset
	api.HandleFunc(pathUpdate, g.updateHandler).Methods(http.MethodPost)    // update some fields of an asset
	api.HandleFunc(pathTransfer, g.transferHandler).Methods(http.MethodPost) // transfer an asset
	api.NotFoundHandler = http.HandlerFunc(g.notFoundHandler)
	api.MethodNotAllowedHandler = http.HandlerFunc(g.notFoundHandler)

	// everything else is a static file
	r.PathPrefix("/").HandlerFunc(g.staticHandler)

	return cors(instrument(r))
}

// Init sets up and starts the http/https server to service the API. If sslPort, sslCert and sslKey are informed, it
// will also start an https (TLS) server on the specified endpoint. It returns once Stop has shut the servers down.
func (g *Gateway) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var err, errTLS error

	h := g.Handler()

	// start http server
	if port != "" {
		g.s = &http.Server{
			Handler:      h,
			Addr:         endpoint + ":" + port,
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			if e := g.s.ListenAndServe(); !errors.Is(e, http.ErrServerClosed) {
				err = e
				log.Printf("Error in http server:%v", e)
			}
		}()

		log.Printf("Listening to API http requests on %s:%s", endpoint, port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		g.ss = &http.Server{
			Handler:      h,
			Addr:         endpoint + ":" + sslPort,
			WriteTimeout: timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		go func() {
			if e := g.ss.ListenAndServeTLS(sslCert, sslKey); !errors.Is(e, http.ErrServerClosed) {
				errTLS = e
				log.Printf("Error in https server:%v", e)
			}
		}()

		log.Printf("Listening to API https requests on %s:%s", endpoint, sslPort)
	}
	// wait for servers to be shutdown
	<-g.sc

	return fmt.Sprintf("shutdown http server:%v, https server:%v", err, errTLS)
}

// cors allows requests from any origin and answers preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Access-Control-Allow-Origin", "*")
		rw.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		rw.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			rw.WriteHeader(http.StatusOK)

			return
		}

		next.ServeHTTP(rw, r)
	})
}
