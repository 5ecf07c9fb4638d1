package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/landing-sop/contact-api/internal/auth"
	"github.com/landing-sop/contact-api/internal/config"
	"github.com/landing-sop/contact-api/internal/database"
	"github.com/landing-sop/contact-api/internal/logging"
	"github.com/landing-sop/contact-api/internal/notify"
	"github.com/landing-sop/contact-api/internal/server"
	"github.com/landing-sop/contact-api/internal/submission"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contact-api",
		Short: "Landing SOP contact-form backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().Int("max-field-length", defaults.GetInt("limits.max_field_length"), "Maximum stored length of free-text fields")
	cmd.PersistentFlags().String("notify-recipient", defaults.GetString("notify.recipient"), "Notification recipient address")
	cmd.PersistentFlags().Int("throttle-window-seconds", defaults.GetInt("notify.throttle_window_seconds"), "Minimum seconds between notification emails")
	cmd.PersistentFlags().String("smtp-host", defaults.GetString("smtp.host"), "SMTP server host (empty disables notifications)")
	cmd.PersistentFlags().String("redis-address", defaults.GetString("throttle.redis_address"), "Redis address for shared throttle state (empty uses in-process state)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("admin-signing-secret", "", "Admin token signing secret (overrides env; empty disables admin endpoints)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "limits.max_field_length", "max-field-length")
	bindFlag(cmd, "notify.recipient", "notify-recipient")
	bindFlag(cmd, "notify.throttle_window_seconds", "throttle-window-seconds")
	bindFlag(cmd, "smtp.host", "smtp-host")
	bindFlag(cmd, "throttle.redis_address", "redis-address")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "admin.signing_secret", "admin-signing-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	notifier, cleanup, err := buildNotifier(appConfig, logger)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	serviceConfig := submission.ServiceConfig{
		Database:       db,
		Clock:          time.Now,
		IDProvider:     submission.NewUUIDProvider(),
		MaxFieldLength: appConfig.MaxFieldLength,
		Logger:         logger,
	}
	if notifier != nil {
		serviceConfig.Notifier = notifier
	}
	submissionService, err := submission.NewService(serviceConfig)
	if err != nil {
		return err
	}

	var adminValidator *auth.TokenValidator
	if appConfig.AdminSigningSecret != "" {
		adminValidator, err = auth.NewTokenValidator(auth.TokenValidatorConfig{
			SigningSecret: []byte(appConfig.AdminSigningSecret),
		})
		if err != nil {
			return err
		}
	} else {
		logger.Info("admin endpoints disabled, no signing secret configured")
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Submissions:    submissionService,
		AdminValidator: adminValidator,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// buildNotifier assembles the notification pipeline. With no SMTP host the
// notifier is nil and accepted submissions are stored without email.
func buildNotifier(appConfig config.AppConfig, logger *zap.Logger) (*notify.Notifier, func(), error) {
	if appConfig.SMTPHost == "" {
		logger.Info("notifications disabled, no smtp host configured")
		return nil, nil, nil
	}

	var throttle notify.ThrottleStore
	var cleanup func()
	if appConfig.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: appConfig.RedisAddress})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		throttle = notify.NewRedisThrottle(client, "")
		cleanup = func() { client.Close() }
		logger.Info("throttle state backed by redis", zap.String("address", appConfig.RedisAddress))
	} else {
		throttle = notify.NewMemoryThrottle(time.Now)
	}

	sender := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUsername,
		Password: appConfig.SMTPPassword,
		From:     appConfig.SMTPFrom,
	})

	notifier, err := notify.New(notify.Config{
		Sender:    sender,
		Throttle:  throttle,
		Recipient: appConfig.NotifyRecipient,
		Subject:   appConfig.NotifySubject,
		Window:    appConfig.ThrottleWindow,
		StateTTL:  appConfig.ThrottleTTL,
		Logger:    logger,
	})
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, nil, err
	}
	return notifier, cleanup, nil
}
