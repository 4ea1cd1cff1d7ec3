// Package main: listener service.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kodjaoglanian/blockvent/lib/config"
	"github.com/Kodjaoglanian/blockvent/lib/ledger/fabric"
	"github.com/Kodjaoglanian/blockvent/lib/msg"
	"github.com/Kodjaoglanian/blockvent/lib/msg/amqp"
	"github.com/Kodjaoglanian/blockvent/lib/store/db"
	"github.com/Kodjaoglanian/blockvent/listener"
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

	// open the store holding the wallet and checkpoints
	dbConn, err := db.New(conf.StoreType, conf.StoreConn)
	if err != nil {
		panic(err)
	}

	defer func() {
		errClose := db.Close(conf.StoreType, dbConn)
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

	// load message broker
	var mb msg.MsgBroker

	switch conf.MbType {
	case "amqp":
		if mb, err = amqp.New(conf.MbConn); err != nil {
			time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

			if mb, err = amqp.New(conf.MbConn); err != nil {
				panic(err)
			}
		}

		if err = mb.Setup(nil); err != nil {
			panic(err)
		}

		defer func() {
			errClose := mb.Close()
			log.Printf("Closing messageBroker: %v", errClose)
		}()
	default:
		log.Printf("Unknown message broker type: %s\n", conf.MbType)

		return
	}

	// connect to the ledger network
	s, err := fabric.New(conf.Ledger, dbConn).Open()
	if err != nil {
		log.Printf("Cannot connect to the ledger network: %v", err)

		return
	}

	defer s.Close()

	// capture CTRL+C or docker's SIGTERM for gracious exit
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		cancel()
	}()

	// relay events until killed
	l := listener.New(dbConn, mb, s, conf.Ledger.Channel, conf.Ledger.Contract)
	log.Printf("Listener: %v\n", l.Listen(ctx))
}
