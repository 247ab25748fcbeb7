package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fortuna/gully/internal/api/rest"
	"github.com/fortuna/gully/internal/cache"
	"github.com/fortuna/gully/internal/logger"
	"github.com/fortuna/gully/internal/query"
	"github.com/fortuna/gully/internal/resolver"
	"github.com/fortuna/gully/internal/store"
	"github.com/fortuna/gully/internal/store/repository"
	"github.com/joho/godotenv"
)

const (
	serviceName    = "gully"
	serviceVersion = "0.2.0"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := loadConfig()
	log := logger.New(logger.ParseLevel(config.LogLevel))

	log.Info("starting service", "service", serviceName, "version", serviceVersion)

	dbPath, err := findDatabase(config.DBPath)
	if err != nil {
		log.Error("no usable database found", "error", err)
		fmt.Fprintln(os.Stderr, "Run the ingester first: gully-ingest --db ipl_data.duckdb --folder /path/to/cricsheet")
		os.Exit(1)
	}

	db, err := store.NewDatabase(dbPath)
	if err != nil {
		log.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if err := db.ValidateSchema(startupCtx); err != nil {
		log.Error("database failed validation", "path", dbPath, "error", err)
		os.Exit(1)
	}
	log.Info("connected to database", "path", dbPath)

	// The resolver snapshots the name universes once at startup; a restart
	// picks up newly ingested data.
	res, err := resolver.Load(startupCtx,
		repository.NewMatchRepository(db),
		repository.NewDeliveryRepository(db),
		resolver.Config{},
	)
	if err != nil {
		log.Error("failed to load name resolver", "error", err)
		os.Exit(1)
	}
	log.Info("resolver loaded", "teams", len(res.Teams()), "players", len(res.Players()))

	var answers *cache.RedisCache
	if config.RedisURL != "" {
		answers, err = cache.NewRedisCache(config.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, serving without answer cache", "error", err)
			answers = nil
		} else {
			defer answers.Close()
			log.Info("answer cache connected")
		}
	}

	engine := query.NewEngine(db, res)
	server := rest.NewServer(config.Port, db, engine, res, answers)

	go func() {
		log.Info("rest api listening", "port", config.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("rest server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("rest server shutdown error", "error", err)
	}

	log.Info("stopped")
}

type Config struct {
	DBPath   string
	RedisURL string
	Port     string
	LogLevel string
}

func loadConfig() Config {
	return Config{
		DBPath:   os.Getenv("IPL_DB"),
		RedisURL: os.Getenv("REDIS_URL"),
		Port:     getEnv("REST_PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// findDatabase picks the delivery store to serve from. Priority: the
// configured path, ipl_data.duckdb in the working directory, any *.duckdb
// in the working directory, then ipl*.duckdb and *.duckdb one level up.
// Only files holding both populated tables qualify.
func findDatabase(configured string) (string, error) {
	var candidates []string
	if configured != "" {
		candidates = append(candidates, configured)
	}
	candidates = append(candidates, "ipl_data.duckdb")

	if matches, err := filepath.Glob("*.duckdb"); err == nil {
		candidates = append(candidates, matches...)
	}
	if matches, err := filepath.Glob(filepath.Join("..", "ipl*.duckdb")); err == nil {
		candidates = append(candidates, matches...)
	}
	if matches, err := filepath.Glob(filepath.Join("..", "*.duckdb")); err == nil {
		candidates = append(candidates, matches...)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		abs, err := filepath.Abs(cand)
		if err != nil {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}

		if looksLikeValidDB(abs) {
			return abs, nil
		}
	}

	return "", fmt.Errorf("no populated duckdb file found (set IPL_DB or place ipl_data.duckdb in the working directory)")
}

// looksLikeValidDB opens a candidate file and checks the required tables
// exist with nonzero rows
func looksLikeValidDB(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	db, err := store.NewDatabase(path)
	if err != nil {
		return false
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return db.ValidateSchema(ctx) == nil
}
