package main

import (
	"context"
	"flag"

	"agregados/pkg/config"
	"agregados/pkg/orders"
	"agregados/pkg/rowstore"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// One-shot identifier backfill for a spreadsheet that predates the
// id_pedido column. Safe to re-run; does nothing once the column exists.
func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configFile := flag.String("config", "agregados.toml", "Config file path")

	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	_ = godotenv.Load()

	cfg, err := config.New(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	store, err := rowstore.NewSheets(
		ctx,
		cfg.Store.Settings.CredentialsFile,
		cfg.Store.Settings.SpreadsheetID,
		cfg.Store.Settings.SheetName,
	)
	if err != nil {
		log.Fatalf("Failed to connect to spreadsheet: %v", err)
	}

	added, err := orders.NewResolver(store).Migrate(ctx)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if added == 0 {
		log.Info("Nothing to do, id column already present")
		return
	}
	log.Infof("Backfilled %d order ids", added)
}
