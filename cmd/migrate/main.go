package main

import (
	"database/sql"
	"flag"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-canteen/internal/config"
	"ms-canteen/internal/database/migrations"
)

func main() {
	var (
		down = flag.Bool("down", false, "roll back all migrations")
		seed = flag.Bool("seed", false, "apply seed migrations as well as schema")
		dir  = flag.String("dir", "./migrations", "directory containing migration files")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: *dir,
		SeedData:      *seed,
	})
	defer runner.Close()

	if *down {
		log.Println("Rolling back migrations...")
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		log.Println("✅ Rollback complete.")
		return
	}

	if err := runner.RunMigrations(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("✅ Migrations complete.")
}
