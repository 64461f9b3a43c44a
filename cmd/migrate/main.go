package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/anandpskerala/ArticleHubBackend/migrations"
	"github.com/anandpskerala/ArticleHubBackend/pkg/config"
	"github.com/anandpskerala/ArticleHubBackend/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status, version, reset")
	envFile := flag.String("env", "", "path to env file; defaults to an optional ./.env")
	flag.Parse()

	cfg, err := loadConfig(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "articlehub-migrate",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		appLog.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		appLog.Fatal("Failed to set goose dialect", zap.Error(err))
	}

	if err := run(ctx, db, *command); err != nil {
		appLog.Fatal(fmt.Sprintf("Migration %q failed", *command), zap.Error(err))
	}
	appLog.Info("Migration finished", zap.String("command", *command))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadWithPath(path)
}

func run(ctx context.Context, db *sql.DB, command string) error {
	switch command {
	case "up":
		return goose.UpContext(ctx, db, migrations.Dir)
	case "down":
		return goose.DownContext(ctx, db, migrations.Dir)
	case "status":
		return goose.StatusContext(ctx, db, migrations.Dir)
	case "version":
		return goose.VersionContext(ctx, db, migrations.Dir)
	case "reset":
		return goose.ResetContext(ctx, db, migrations.Dir)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
