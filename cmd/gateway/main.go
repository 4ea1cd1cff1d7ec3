// Package main: gateway service.
//
// The gateway connects to the ledger network lazily: a failed connection at startup is logged and retried by the
// first request that needs the ledger.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kodjaoglanian/blockvent/gateway"
	"github.com/Kodjaoglanian/blockvent/lib/config"
	"github.com/Kodjaoglanian/blockvent/lib/ledger"
	"github.com/Kodjaoglanian/blockvent/lib/ledger/fabric"
	"github.com/Kodjaoglanian/blockvent/lib/store/db"
)

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json file")
	monitor := flag.Bool("m", false, "flag to monitor the server with Prometheus at http://localhost:9100/metrics")
	flag.Parse()

	// extract configuration
	conf, err := config.ExtractConfiguration(*confPath)
	if err != nil {
		panic(err)
	}

	log.Printf("Configuration:%+v", conf)

	// open the identity wallet
	wallet, err := db.New(conf.StoreType, conf.StoreConn)
	if err != nil {
		panic(err)
	}

	defer func() {
		errClose := db.Close(conf.StoreType, wallet)
		log.Printf("Closing %s store: %v", conf.StoreType, errClose)
	}()

	// load Prometheus monitor
	if *monitor {
		go func() {
			log.Println("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", promhttp.Handler())
			log.Printf("Metrics API: %v", http.ListenAndServe(":9100", h))
		}()
	}

	// connect to the ledger network, a failure is retried on first use
	lc := ledger.New(fabric.New(conf.Ledger, wallet), conf.Ledger.Contract)
	if err = lc.Connect(); err != nil {
		log.Printf("Starting without a ledger connection, it will be retried on the next request: %v", err)
	}

	// create gateway service
	g := gateway.New(lc, conf.Public)

	// capture CTRL+C or docker's SIGTERM for gracious exit
	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		// close the ledger session, then the http servers
		g.Stop()
	}()

	// init API, wait for its return and log response
	log.Printf("Gateway: %s\n", g.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))
}
