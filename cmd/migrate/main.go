package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/damoang/angple-memo/internal/config"
	"github.com/damoang/angple-memo/internal/database"
	"github.com/damoang/angple-memo/internal/migration"
	"github.com/damoang/angple-memo/internal/repository"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	purgeSessions := flag.Bool("purge-sessions", false, "delete expired legacy sessions after migrating")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if files := config.LoadDotEnv(""); len(files) == 0 {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	start := time.Now()
	if err := migration.Run(db); err != nil {
		log.Fatalf("[migrate] FAILED: %v", err)
	}
	log.Printf("[migrate] Schema up to date in %v", time.Since(start))

	if *purgeSessions {
		n, err := repository.NewSessionRepository(db).PurgeExpired(context.Background(), time.Now().UTC())
		if err != nil {
			log.Fatalf("[purge] FAILED: %v", err)
		}
		log.Printf("[purge] Deleted %d expired sessions", n)
	}
}
