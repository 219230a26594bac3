package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agregados/pkg/api"
	"agregados/pkg/config"
	"agregados/pkg/orders"
	"agregados/pkg/rowstore"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	dev := flag.Bool("dev", false, "Use an in-memory store instead of Google Sheets")
	migrate := flag.Bool("migrate", false, "Backfill order ids at startup if the column is missing")
	configFile := flag.String("config", "agregados.toml", "Config file path")

	flag.Parse()
	if *verbose {
		// Set the log level to debug
		log.SetLevel(log.DebugLevel)
	}
	// Set the log format to include a leading timestamp in ISO8601 format
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	_ = godotenv.Load()

	cfg, err := config.New(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store rowstore.Store
	if *dev {
		store = rowstore.NewMemory(nil)
		log.Warn("Dev mode: using in-memory store, nothing will persist")
	} else {
		store, err = rowstore.NewSheets(
			context.Background(),
			cfg.Store.Settings.CredentialsFile,
			cfg.Store.Settings.SpreadsheetID,
			cfg.Store.Settings.SheetName,
		)
		if err != nil {
			log.Fatalf("Failed to connect to spreadsheet: %v", err)
		}
	}

	if *migrate {
		added, err := orders.NewResolver(store).Migrate(context.Background())
		if err != nil {
			// No safe way to run without stable identifiers.
			log.Fatalf("Identifier migration failed: %v", err)
		}
		if added > 0 {
			log.Infof("Migration backfilled %d order ids", added)
		}
	}

	router := api.GetRouter(store)
	if router != nil {
		go startServer(router, cfg.Store.Settings.ListenAddress)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

mainloop:
	// In all cases, just exit and let the container restart from scratch.
	// There's less to get wrong doing it this way.
	for {
		select {
		case <-signalChan:
			log.Info("Signalled, breaking main loop")
			break mainloop
		}
	}
}

func startServer(router http.Handler, addr string) {
	server := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	log.Infof("listening for HTTP on: %s", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("ListenAndServeError", err)
	}
}
