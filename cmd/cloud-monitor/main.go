// Command cloud-monitor serves the export run-log debugging interface.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/banshee-data/depthcloud/internal/clouddb"
	"github.com/banshee-data/depthcloud/internal/monitor"
	"github.com/banshee-data/depthcloud/internal/version"
)

var (
	listen        = flag.String("listen", ":8082", "HTTP listen address")
	dbFile        = flag.String("db", "depthcloud_runs.db", "Path to the SQLite run-log database")
	migrationsDir = flag.String("migrations", "", "Run pending migrations from this directory before serving")
)

func main() {
	flag.Parse()
	log.Println(version.String())

	db, err := clouddb.Open(*dbFile)
	if err != nil {
		log.Fatalf("opening run-log database: %v", err)
	}
	defer db.Close()

	if *migrationsDir != "" {
		if err := db.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("migrating run-log database: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws := monitor.NewWebServer(*listen, db)
	if err := ws.Start(ctx); err != nil {
		log.Fatalf("monitor server: %v", err)
	}
}
