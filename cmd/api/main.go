// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gooddrive/autoparts-backend/internal/config"
	"github.com/gooddrive/autoparts-backend/internal/domain/user"
	"github.com/gooddrive/autoparts-backend/internal/infrastructure/database/postgres"
	redisdb "github.com/gooddrive/autoparts-backend/internal/infrastructure/database/redis"
	httpserver "github.com/gooddrive/autoparts-backend/internal/interfaces/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := newLogger(cfg)

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	if err := postgres.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	if err := postgres.SeedDefaults(db, log); err != nil {
		log.WithError(err).Fatal("failed to seed defaults")
	}
	if err := ensureAdminUser(cfg, db, log); err != nil {
		log.WithError(err).Fatal("failed to provision admin user")
	}

	cache, err := redisdb.NewConnection(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer cache.Close()

	server, err := httpserver.NewServer(cfg, db, cache, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

// newLogger configures logrus from the logging section
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// ensureAdminUser creates the first superuser on a fresh database when
// ADMIN_USERNAME and ADMIN_PASSWORD are set
func ensureAdminUser(cfg *config.Config, db *gorm.DB, log *logrus.Logger) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&user.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	users := user.NewService(db, cfg, log)
	created, err := users.CreateUser(username, os.Getenv("ADMIN_EMAIL"), password, true, true)
	if err != nil {
		return err
	}

	log.WithField("username", created.Username).Info("initial admin user created")
	return nil
}
