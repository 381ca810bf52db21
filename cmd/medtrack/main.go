package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"medication-tracking-service/internal/config"
	"medication-tracking-service/internal/database"
	"medication-tracking-service/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var envFile string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cobra.Command{
		Use:           "medtrack",
		Short:         "Medication process tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")

	rootCmd.AddCommand(serveCmd(), migrateCmd(), dayCmd(), qrCmd(), staffCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New("medtrack", cfg.LogLevel, cfg.LogPretty), nil
}

func openDatabase(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Open(ctx, database.Config{
		DSN:          cfg.DBDSN,
		Driver:       cfg.DBDriver,
		MaxOpenConns: cfg.DispatchParallelism * 4,
		MaxIdleConns: cfg.DispatchParallelism,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
