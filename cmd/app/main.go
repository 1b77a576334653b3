package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iris-api/internal/classifier"
	"iris-api/internal/config"
	"iris-api/internal/infrastructure/http"
	"iris-api/internal/infrastructure/http/handlers"
	"iris-api/internal/infrastructure/logger"
	"iris-api/internal/infrastructure/metrics"
	"iris-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewSlogLogger(cfg.LogLevel)
	logger.Info("Starting Iris Classifier API")

	metricsCollector := metrics.NewPrometheusMetrics()
	metricsCollector.Init(cfg.Model.Version, cfg.Model.Name)

	model, err := loadOrTrain(cfg, logger)
	if err != nil {
		// The process must not serve traffic without a usable model.
		logger.Error("Failed to obtain a model", slog.Any("error", err))
		os.Exit(1)
	}
	metricsCollector.SetModelAccuracy(cfg.Model.Name, model.Accuracy())
	logger.Info("Model ready", slog.Float64("accuracy", model.Accuracy()))

	predictionService := usecase.NewPredictionService(model, cfg.Model.Name, metricsCollector, logger)

	predictHandler := handlers.NewPredictHandler(predictionService, logger)
	systemHandler := handlers.NewSystemHandler(predictionService, cfg.Model.Version, logger)

	srv := http.NewServer(
		cfg,
		predictHandler,
		systemHandler,
		metricsCollector.Handler(),
		metricsCollector,
		logger,
	)

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", fmt.Sprintf(":%d", cfg.Server.Port)))
		if err := srv.Start(); err != nil {
			logger.Error("Server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("Server exited")
}

// loadOrTrain restores the model artifact when present, otherwise trains from
// the embedded dataset and saves the result for the next start.
func loadOrTrain(cfg *config.Config, logger logger.Logger) (*classifier.IrisClassifier, error) {
	model := classifier.New()

	loaded, err := model.Load(cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	if loaded {
		logger.Info("Loaded pre-trained model", slog.String("path", cfg.Model.Path), slog.Float64("accuracy", model.Accuracy()))
		return model, nil
	}

	logger.Info("No model artifact found, training")
	accuracy, err := model.Train()
	if err != nil {
		return nil, err
	}
	logger.Info("Model trained", slog.Float64("accuracy", accuracy))

	if err := model.Save(cfg.Model.Path); err != nil {
		return nil, err
	}
	logger.Info("Model saved", slog.String("path", cfg.Model.Path))

	return model, nil
}
