// Command ledgerinspect prints the borrow ledger held in a badger or sqlite data directory.
// Stop the server first: badger is opened read-only and sqlite allows one writer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/ledger"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/render"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

func main() {
	defaultPath := os.Getenv("DATA_PATH")
	if defaultPath == "" {
		defaultPath = os.ExpandEnv("$HOME/Bookshelf/data")
	}
	defaultKey := os.Getenv("LEDGER_KEY")
	if defaultKey == "" {
		defaultKey = ledger.DefaultKey
	}

	dataPath := flag.String("data-path", defaultPath, "data directory holding the ledger database")
	backend := flag.String("backend", "badger", "storage backend: badger or sqlite")
	key := flag.String("key", defaultKey, "ledger slot name")
	verbose := flag.Bool("v", false, "log restore warnings")
	flag.Parse()

	level := "error"
	if *verbose {
		level = "debug"
	}
	logs := logger.New(logger.Config{Writer: os.Stderr, Level: logger.ParseLevel(level)})

	ctx := context.Background()

	var (
		kv     store.KV
		dbPath string
	)
	switch *backend {
	case "badger":
		dbPath = filepath.Join(*dataPath, "ledger")
		db, err := store.OpenBadgerReadOnly(dbPath, logs.Logger)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		kv = db

		printHeader(dbPath, *key)
		keys, err := db.Keys(ctx)
		if err != nil {
			log.Fatalf("Error listing keys: %v", err)
		}
		fmt.Printf("Keys in database: %d\n", len(keys))
		for _, k := range keys {
			fmt.Printf("  %s\n", k)
		}
	case "sqlite":
		dbPath = filepath.Join(*dataPath, "ledger.db")
		db, err := sqlite.Open(dbPath, logs.Logger)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		kv = db

		printHeader(dbPath, *key)
		updated, err := db.UpdatedAt(ctx, *key)
		switch {
		case err == nil:
			fmt.Printf("Last written: %s\n", updated.Local().Format(time.RFC1123))
		case errors.Is(err, store.ErrNotFound):
			fmt.Println("Last written: never")
		default:
			log.Fatalf("Error reading slot timestamp: %v", err)
		}
	default:
		log.Fatalf("Unsupported backend %q (want badger or sqlite)", *backend)
	}
	fmt.Println()

	led := ledger.Open(ctx, kv, ledger.Options{Key: *key, Logger: logs.Logger})
	history := render.History(led.History())

	if history.Empty {
		fmt.Println(history.Placeholder)
		return
	}

	fmt.Println("=== Borrowed Books ===")
	for i, item := range history.Items {
		fmt.Printf("[%d] %s by %s\n", i+1, item.Title, item.Author)
		fmt.Printf("    ID: %d  Borrowed: %s\n", item.ID, item.BorrowedDate)
	}
	fmt.Println()
	fmt.Printf("Total borrowed: %d\n", led.Len())
}

func printHeader(dbPath, key string) {
	fmt.Println("=== Ledger Inspection ===")
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Slot: %s\n", key)
	fmt.Println()
}
