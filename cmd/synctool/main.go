// Package main provides synctool, an operator CLI for the LifeLedger
// offline sync queue: inspect pending mutations, run a drain against
// the configured backend, or clear the queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jwyliao/lifeledger/internal/config"
	"github.com/jwyliao/lifeledger/internal/invalidate"
	"github.com/jwyliao/lifeledger/internal/kv"
	"github.com/jwyliao/lifeledger/internal/logging"
	"github.com/jwyliao/lifeledger/internal/models"
	"github.com/jwyliao/lifeledger/internal/outbox"
	"github.com/jwyliao/lifeledger/internal/syncengine"
	"github.com/jwyliao/lifeledger/internal/transport"
)

func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logging.Init(cfg.LogLevel)

	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	queue, cleanup, err := openQueue(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synctool: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	switch flag.Arg(0) {
	case "status":
		err = runStatus(queue)
	case "drain":
		err = runDrain(cfg, queue)
	case "clear":
		err = runClear(queue, flag.Arg(1) == "--yes")
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "synctool: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: synctool <command>

Commands:
  status        show pending mutations and per-entity counts
  drain         run one drain against the configured backend
  clear --yes   empty the queue`)
}

func openQueue(cfg *config.Config) (*outbox.Queue, func(), error) {
	switch cfg.QueueBackend {
	case config.BackendSQLite:
		store, err := kv.OpenSQLiteStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return outbox.NewQueue(store), func() { store.Close() }, nil
	case config.BackendFile:
		store, err := kv.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return outbox.NewQueue(store), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}

func runStatus(queue *outbox.Queue) error {
	pending, err := queue.ReadAll()
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Println("queue is empty")
		return nil
	}

	perEntity := make(map[models.Entity]int)
	for _, m := range pending {
		perEntity[m.Entity]++
		fmt.Printf("%s  %-6s %-8s retries=%d  %s\n",
			m.Time().Format("2006-01-02 15:04:05"), m.Type, m.Entity, m.RetryCount, m.ID)
	}

	fmt.Printf("\n%d pending", len(pending))
	for entity, count := range perEntity {
		fmt.Printf("  %s=%d", entity, count)
	}
	fmt.Println()
	return nil
}

func runDrain(cfg *config.Config, queue *outbox.Queue) error {
	notifier := invalidate.NewNotifier()
	notifier.RegisterAll(func(entity models.Entity) error {
		fmt.Printf("invalidated %s cache\n", entity)
		return nil
	})

	engine := syncengine.NewEngine(syncengine.Config{
		Queue:     queue,
		Transport: transport.NewHTTPClient(cfg.APIBaseURL, nil),
		Notifier:  notifier,
		OnSynced: func(count int) {
			fmt.Printf("Synced %d offline item(s)\n", count)
		},
	})

	result, err := engine.Drain(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("attempted=%d synced=%d retried=%d evicted=%d in %s\n",
		result.Attempted, result.Synced, result.Retried, result.Evicted, result.Duration)
	return nil
}

func runClear(queue *outbox.Queue, confirmed bool) error {
	n, err := queue.Len()
	if err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("refusing to drop %d pending mutation(s) without --yes", n)
	}
	if err := queue.Clear(); err != nil {
		return err
	}
	fmt.Printf("cleared %d pending mutation(s)\n", n)
	return nil
}
