package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lotto/cmd"
	"lotto/cmd/shell"
	"lotto/config"
	"lotto/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if len(os.Args) > 1 && os.Args[1] == "shell" {
		if err := runShell(ctx); err != nil {
			log.Fatal("Shell error: ", err)
		}
		return
	}

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func runShell(ctx context.Context) error {
	cfg := config.Get()
	cfg.ConfigureLogging()

	app, err := cmd.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return shell.NewShell(app.Handler, os.Stdin, os.Stdout).Run(ctx)
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: lotto migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
