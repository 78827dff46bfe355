package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
)

const migrationsPath = "migrations"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "up":
		cfg, err := config.Load()
		if err != nil {
			fail("failed to load config: %v", err)
		}
		if err := database.RunMigrations(cfg.Database.URL, migrationsPath); err != nil {
			fail("migration failed: %v", err)
		}
		fmt.Println("migrations applied")
	case "create":
		if len(os.Args) < 3 {
			fail("usage: migrate create <name>")
		}
		if err := database.CreateMigration(migrationsPath, os.Args[2]); err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Printf("created migration %s\n", os.Args[2])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: migrate <up|create <name>>")
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
