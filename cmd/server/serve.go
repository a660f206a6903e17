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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/carecompanion/carecompanion-api/internal/dao"
	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/metrics"
	"github.com/carecompanion/carecompanion-api/internal/notification"
	"github.com/carecompanion/carecompanion-api/internal/privacy"
	"github.com/carecompanion/carecompanion-api/internal/router"
	"github.com/carecompanion/carecompanion-api/internal/service"
)

func runServe(opts *rootOptions) error {
	// Gin runs in release mode unless GIN_MODE says otherwise
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting CareCompanion API Server...")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(&cfg.Database.Main, logger); err != nil {
			logger.WithError(err).Error("Database migration failed")
			return err
		}
	}

	db, err := database.Initialize(&cfg.Database.Main, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize database")
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Error("Database health check failed")
		return err
	}

	// DAOs
	escalationDAO := dao.NewEscalationDAO(db)
	userDAO := dao.NewUserDAO(db)
	auditDAO := dao.NewAuditLogDAO(db)
	notificationDAO := dao.NewNotificationLogDAO(db)

	pseudonymizer, err := privacy.NewPseudonymizer(cfg.Audit.PseudonymKey)
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	builder, err := notification.NewBuilder(cfg.Notification.Helplines)
	if err != nil {
		return fmt.Errorf("failed to build notification template: %w", err)
	}
	dispatcher, err := notification.NewDispatcher(&cfg.Notification, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize notification dispatcher")
		return err
	}
	logger.WithField("channel", dispatcher.Channel()).Info("Notification dispatcher initialized")

	// Services
	auditService := service.NewAuditService(auditDAO, pseudonymizer, m, logger)
	escalationService := service.NewEscalationService(service.EscalationDeps{
		Escalations:   escalationDAO,
		Users:         userDAO,
		Notifications: notificationDAO,
		Transactor:    db,
		Builder:       builder,
		Dispatcher:    dispatcher,
		Audit:         auditService,
		Metrics:       m,
	}, service.EscalationPolicy{
		RiskThreshold:             cfg.Escalation.RiskThreshold,
		RiskMood:                  cfg.Escalation.RiskMood,
		RequireConsentForApproval: cfg.Escalation.RequireConsentForApproval,
		QueueLimit:                cfg.Escalation.QueueLimit,
	}, logger)
	profileService := service.NewProfileService(userDAO, auditService, logger)

	ginRouter := router.SetupRouter(router.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Gatherer: registry,
		Signals:  escalationService,
		Review:   escalationService,
		Profiles: profileService,
		Audit:    auditService,
		Health:   db,
		Version:  version,
	})

	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", serverAddr).Info("Starting HTTP server...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("HTTP server failed")
			return err
		}
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}

func runMigrate(opts *rootOptions) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := database.Migrate(&cfg.Database.Main, logger); err != nil {
		logger.WithError(err).Error("Database migration failed")
		return err
	}
	return nil
}
