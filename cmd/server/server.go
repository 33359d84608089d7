package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TankWatch.api/internal/config"
	"TankWatch.api/internal/controller"
	"TankWatch.api/internal/observability"
	"TankWatch.api/internal/repository"
	"TankWatch.api/internal/routes"
	"TankWatch.api/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	metrics := observability.NewMetrics()
	sink, closeSink := setupMirror(cfg, metrics)
	defer closeSink()

	// Initialize store, service, and controller
	svc := service.NewDataService(repository.NewMemoryRepository(), sink, metrics)
	ctrl := controller.NewTankController(svc)

	handler := routes.NewHandler(routes.NewRouter(ctrl, metrics), cfg.AllowedOrigins, os.Stdout)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Water quality API listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// setupMirror connects the InfluxDB reading mirror when configured. An
// unreachable InfluxDB only disables the mirror. Background write failures
// are counted on metrics.
func setupMirror(cfg config.Config, metrics *observability.Metrics) (repository.Sink, func()) {
	if !cfg.MirrorEnabled() {
		log.Println("InfluxDB not configured, reading mirror disabled")
		return repository.NopSink{}, func() {}
	}

	repo := repository.NewInfluxDBRepository(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket,
		func(error) { metrics.MirrorFailed() })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repo.Ping(ctx); err != nil {
		log.Printf("Reading mirror disabled: %v", err)
		repo.Close()
		return repository.NopSink{}, func() {}
	}
	if err := repo.EnsureBucket(ctx); err != nil {
		log.Printf("Reading mirror disabled: %v", err)
		repo.Close()
		return repository.NopSink{}, func() {}
	}

	log.Printf("Mirroring readings to InfluxDB bucket '%s'", cfg.InfluxDBBucket)
	return repo, repo.Close
}
