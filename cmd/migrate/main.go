package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/hilal/internal/log"
	"github.com/chrissnell/hilal/pkg/config"
	"github.com/chrissnell/hilal/pkg/migrate"
	_ "modernc.org/sqlite"
)

func main() {
	var (
		dbPath   = flag.String("db", "", "Path to the SQLite configuration database (required)")
		command  = flag.String("command", "status", "Migration command: up, down, to, version, status")
		target   = flag.Int("target", -1, "Target version for down/to commands")
		helpFlag = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}
	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		showHelp()
		os.Exit(1)
	}

	if err := log.Init(false); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	migrator := migrate.NewMigrator(db, config.Migrations(), log.GetSugaredLogger())

	switch *command {
	case "up":
		err = migrator.MigrateUp()
	case "down", "to":
		if *target < 0 {
			fmt.Fprintf(os.Stderr, "Error: -target flag is required for %s command\n", *command)
			os.Exit(1)
		}
		if *command == "down" {
			err = migrator.MigrateDown(*target)
		} else {
			err = migrator.MigrateTo(*target)
		}
	case "version":
		var version int
		if version, err = migrator.GetCurrentVersion(); err == nil {
			fmt.Printf("Current version: %d\n", version)
		}
	case "status":
		err = showStatus(migrator)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}

func showStatus(migrator *migrate.Migrator) error {
	current, err := migrator.GetCurrentVersion()
	if err != nil {
		return err
	}
	pending, err := migrator.GetPendingMigrations()
	if err != nil {
		return err
	}

	fmt.Printf("Current version: %d\n", current)
	fmt.Printf("Pending migrations: %d\n", len(pending))
	for _, m := range pending {
		fmt.Printf("  %d: %s\n", m.Version, m.Name)
	}
	return nil
}

func showHelp() {
	fmt.Println("Configuration Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  migrate -db <config.db> [-command up|down|to|version|status] [-target N]")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  migrate -db hilal.db -command up")
	fmt.Println("  migrate -db hilal.db -command down -target 0")
	fmt.Println("  migrate -db hilal.db -command status")
}
