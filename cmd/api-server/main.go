package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsletter/internal/api"
	"github.com/sungwon/newsletter/internal/assets"
	"github.com/sungwon/newsletter/internal/auth"
	"github.com/sungwon/newsletter/internal/bootstrap"
	"github.com/sungwon/newsletter/internal/broadcast"
	"github.com/sungwon/newsletter/internal/config"
	"github.com/sungwon/newsletter/internal/logger"
	"github.com/sungwon/newsletter/internal/mail"
	"github.com/sungwon/newsletter/internal/newsletter"
	"github.com/sungwon/newsletter/internal/storage"
)

const defaultSigningKey = "change-me-in-production-use-a-strong-secret"

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(logger.Config{
		Level:     cfg.Logging.Level,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	log.Info().Msg("starting newsletter API server")

	ctx := context.Background()
	db, err := storage.NewDB(ctx, cfg.Database.URL, cfg.Database.PoolMin, cfg.Database.PoolMax, cfg.Database.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("database connection established")

	redisClient := connectRedis(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	assetStore, err := assets.New(assets.Config{
		Type:          cfg.Assets.Type,
		Folder:        cfg.Assets.Folder,
		LocalPath:     cfg.Assets.LocalPath,
		PublicBaseURL: cfg.Assets.PublicBaseURL,
		S3Bucket:      cfg.Assets.S3Bucket,
		S3Region:      cfg.Assets.S3Region,
		S3Endpoint:    cfg.Assets.S3Endpoint,
		S3Prefix:      cfg.Assets.S3Prefix,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize asset store")
	}

	transport, err := mail.New(mail.Config{
		Provider:        cfg.Mail.Provider,
		From:            cfg.Mail.From,
		FromName:        cfg.Mail.FromName,
		Timeout:         cfg.Mail.Timeout,
		Region:          cfg.Mail.Region,
		AccessKeyID:     cfg.Mail.AccessKeyID,
		SecretAccessKey: cfg.Mail.SecretAccessKey,
		SMTPHost:        cfg.Mail.SMTPHost,
		SMTPPort:        cfg.Mail.SMTPPort,
		SMTPUsername:    cfg.Mail.SMTPUsername,
		SMTPPassword:    cfg.Mail.SMTPPassword,
		SMTPSecurity:    cfg.Mail.SMTPSecurity,
		APIKey:          cfg.Mail.APIKey,
		Endpoint:        cfg.Mail.Endpoint,
		OutputDir:       cfg.Mail.OutputDir,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize mail transport")
	}

	dispatcher := broadcast.NewDispatcher(transport, broadcast.Options{
		Concurrency:     cfg.Broadcast.Concurrency,
		DeliveryTimeout: cfg.Broadcast.DeliveryTimeout,
	}, log)

	renderer, err := newsletter.NewRenderer("")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse newsletter template")
	}

	newsletters := storage.NewNewsletterRepository(db.Pool)
	recipients := storage.NewRecipientDirectory(db.Pool)
	admins := storage.NewAdminStore(db.Pool)

	svc := newsletter.NewService(newsletters, recipients, assetStore, dispatcher, renderer,
		newsletter.Options{AssetFolder: cfg.Assets.Folder}, log)

	if err := bootstrap.SeedAdmin(ctx, admins, log, bootstrap.AdminSeed{
		Username: cfg.Bootstrap.AdminUsername,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}

	if cfg.Auth.SigningKey == "" || cfg.Auth.SigningKey == defaultSigningKey {
		log.Warn().Msg("JWT signing key is not set or using default value; set NEWSLETTER_AUTH_SIGNING_KEY in production")
	}
	tokens := auth.NewJWTService(auth.JWTConfig{
		SigningKey:  cfg.Auth.SigningKey,
		TokenExpiry: cfg.Auth.TokenExpiry,
		Issuer:      cfg.Auth.Issuer,
		Audience:    cfg.Auth.Audience,
	})
	rateLimiter := auth.NewRateLimiter(redisClient, auth.RateLimitConfig{
		LoginAttemptsLimit:   cfg.Auth.LoginAttemptsLimit,
		LoginLockoutDuration: cfg.Auth.LoginLockoutDuration,
		PublishLimit:         cfg.Auth.PublishLimit,
		PublishWindow:        cfg.Auth.PublishWindow,
	})

	var uploadsDir string
	if local, ok := assetStore.(*assets.LocalStore); ok {
		uploadsDir = local.BasePath()
	}

	router := api.NewRouter(api.RouterConfig{
		Newsletters:   svc,
		Recipients:    recipients,
		Admins:        admins,
		Tokens:        tokens,
		Verifier:      tokens,
		RateLimiter:   rateLimiter,
		DB:            db,
		Log:           log,
		CORSOrigins:   cfg.API.CORSOrigins,
		MaxUploadSize: cfg.API.MaxUploadSize,
		UploadsDir:    uploadsDir,
	})

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Str("mail_transport", transport.Name()).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// connectRedis returns nil when Redis is not configured or unreachable, which
// disables rate limiting.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info().Msg("redis not configured, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unreachable, rate limiting disabled")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", cfg.Addr).Msg("redis connection established")
	return client
}
