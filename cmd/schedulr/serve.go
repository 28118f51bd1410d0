package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/schedulr/internal/auth"
	"github.com/saltyorg/schedulr/internal/config"
	"github.com/saltyorg/schedulr/internal/database"
	"github.com/saltyorg/schedulr/internal/logging"
	"github.com/saltyorg/schedulr/internal/maintenance"
	"github.com/saltyorg/schedulr/internal/schedules"
	"github.com/saltyorg/schedulr/internal/web"
	"github.com/saltyorg/schedulr/internal/web/handlers"
)

// loadConfig resolves defaults, then environment, then explicitly set flags
func loadConfig(cmd *cobra.Command, service config.Service) (*config.Config, error) {
	cfg, err := config.Load(service)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("bind") {
		cfg.Bind = bind
	}
	if flags.Changed("allow-subnet") {
		cfg.AllowSubnet = allowSubnet
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func schemaFor(service config.Service) database.Schema {
	if service == config.ServiceAuth {
		return database.AuthSchema
	}
	return database.ScheduleSchema
}

func runService(cmd *cobra.Command, service config.Service) error {
	cfg, err := loadConfig(cmd, service)
	if err != nil {
		return err
	}

	level := logging.LevelFromVerbosity(verbosity, cfg.LogLevel)
	logging.Console(level)

	timeouts := config.DefaultTimeoutConfig()
	timeouts.Request = requestTimeout
	timeouts.Shutdown = shutdownTimeout
	config.SetGlobalTimeouts(timeouts)

	var allowedNet *net.IPNet
	if cfg.AllowSubnet != "" {
		_, allowedNet, err = net.ParseCIDR(cfg.AllowSubnet)
		if err != nil {
			return fmt.Errorf("invalid allow-subnet CIDR: %s", cfg.AllowSubnet)
		}
	}

	// Warn if binding to all interfaces without an allow list
	if (cfg.Bind == "" || cfg.Bind == "0.0.0.0" || cfg.Bind == "::") && cfg.AllowSubnet == "" {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(cfg.DBPath, schemaFor(service))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Rotation settings live in the database, so file logging starts only now
	loader := config.NewLoader(db)
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logging.FilePathForDB(cfg.DBPath, service)
	}
	logging.Apply(level, loader, logPath)

	log.Info().
		Str("version", version).
		Str("service", string(service)).
		Int("port", cfg.Port).
		Str("bind", cfg.Bind).
		Str("allow_subnet", cfg.AllowSubnet).
		Str("database", db.Path()).
		Msg("Starting Schedulr")

	maint := maintenance.New(db, loader.String(config.SettingMaintenanceSchedule, cfg.MaintenanceSchedule))
	if started, err := maint.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start database maintenance")
	} else if !started {
		log.Debug().Msg("Database maintenance disabled")
	} else if next := maint.NextRun(); next != nil {
		log.Debug().Time("next_run", *next).Msg("Next database maintenance")
	}
	defer maint.Stop()

	var registrar web.RouteRegistrar
	switch service {
	case config.ServiceAuth:
		authService := auth.NewAuthService(db, cfg.BcryptCost)
		if count, err := authService.UserCount(ctx); err == nil {
			log.Debug().Int("users", count).Msg("User registry loaded")
		}
		registrar = handlers.NewAuthHandlers(authService)
	case config.ServiceSchedules:
		scheduleService := schedules.NewService(db, cfg.Owner)
		log.Debug().Str("owner", scheduleService.Owner()).Msg("Schedule store loaded")
		registrar = handlers.NewScheduleHandlers(scheduleService)
	default:
		return fmt.Errorf("unknown service %q", service)
	}

	server := web.NewServer(web.Options{
		Port:           cfg.Port,
		Bind:           cfg.Bind,
		AllowedNet:     allowedNet,
		AllowedOrigins: cfg.AllowedOrigins(),
		Health:         db,
	}, registrar)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Str("service", string(service)).Msg("Schedulr stopped")
	return nil
}
