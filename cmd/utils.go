package cmd

import (
	"flag"
	"log"
	"log/slog"

	"eval-analytics/internal/config"
	"eval-analytics/internal/database"
	"eval-analytics/internal/logging"
	"eval-analytics/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// LoadEnvFile parses the command line, so commands must register their own
// flags before calling it.
func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// Bootstrap loads the env file and config, installs the logger and opens the
// database. The returned function flushes the logger.
func Bootstrap[T any](databaseURL func(T) string) (T, *gorm.DB, logging.ShutdownFunc) {
	LoadEnvFile()

	cfg, err := config.Load[T]()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	shutdown := logging.Setup()

	db, err := database.NewDatabase(databaseURL(cfg))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		log.Fatalf("failed to connect to database: %v", err)
	}

	return cfg, db, shutdown
}

func CreateObjectStore(cfg config.StorageConfig) storage.ObjectStore {
	store, err := cfg.NewObjectStore()
	if err != nil {
		log.Fatalf("failed to create object store: %v", err)
	}
	return store
}
