package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medication-tracking-service/internal/adapters"
	"medication-tracking-service/internal/api/handlers"
	"medication-tracking-service/internal/database"
	"medication-tracking-service/internal/domain/repositories"
	"medication-tracking-service/internal/services"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var relayWorkers int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the event relay and notification consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), relayWorkers)
		},
	}
	cmd.Flags().IntVar(&relayWorkers, "relay-workers", 2, "outbox relay publishing workers")
	return cmd
}

func runServer(ctx context.Context, relayWorkers int) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	outbox, err := adapters.OpenOutbox(cfg.OutboxPath)
	if err != nil {
		return err
	}
	defer outbox.Close()

	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var queue adapters.QueueAdapter
	if cfg.AMQPURL != "" {
		amqpQueue, err := adapters.DialAMQP(cfg.AMQPURL, 10, log)
		if err != nil {
			return err
		}
		checks["broker"] = func(context.Context) error { return amqpQueue.Ping() }
		queue = amqpQueue
	} else {
		log.Warn().Msg("amqp_disabled_using_in_memory_queue")
		queue = adapters.NewInMemoryQueueAdapter(256, log)
	}
	defer queue.Close()

	lineRepo := repositories.NewLineRepository(db)
	patientRepo := repositories.NewPatientRepository(db)
	processRepo := repositories.NewMedicationProcessRepository(db)

	days := services.NewDailyProcessService(repositories.NewDailyProcessRepository(db), cfg.Timezone, log)
	qrRegistry := services.NewQRRegistryService(repositories.NewQRCodeRepository(db), log)
	identity := services.NewIdentityService(repositories.NewStaffRepository(db), cfg.SessionTTL, log)
	patients := services.NewPatientService(patientRepo, lineRepo, log)
	processes := services.NewMedicationProcessService(processRepo, patientRepo, days, log)
	dispatch := services.NewDispatchService(qrRegistry, days, lineRepo, processRepo, outbox, log,
		services.WithParallelism(cfg.DispatchParallelism))

	relay := services.NewOutboxRelayService(outbox, queue, relayWorkers, 500*time.Millisecond, log)
	notifications := services.NewNotificationService(queue, 50, log)
	if err := notifications.Start(ctx); err != nil {
		return err
	}
	if err := relay.Start(ctx); err != nil {
		return err
	}

	app := handlers.NewApp(handlers.Dependencies{
		Identity:      identity,
		Dispatch:      dispatch,
		Days:          days,
		Processes:     processes,
		QRCodes:       qrRegistry,
		Patients:      patients,
		Notifications: notifications,
		HealthChecks:  checks,
		ScanRateLimit: cfg.ScanRateLimit,
		Logger:        log,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http_listening")
		listenErr <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown_requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var errs []error
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := relay.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("relay stop: %w", err))
	}
	if err := notifications.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("notifications stop: %w", err))
	}
	log.Info().Msg("shutdown_complete")
	return errors.Join(errs...)
}
