// Command server runs the job board HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/jobboard/internal/config"
	"github.com/diewo77/jobboard/internal/db"
	"github.com/diewo77/jobboard/internal/media"
	"github.com/diewo77/jobboard/internal/mq"
	"github.com/diewo77/jobboard/internal/notifier"
	"github.com/diewo77/jobboard/internal/notify"
	"github.com/diewo77/jobboard/internal/obs"
	"github.com/diewo77/jobboard/internal/store"
	"github.com/diewo77/jobboard/internal/store/gormstore"
	"github.com/diewo77/jobboard/internal/store/mongostore"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed the admin account and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("Migrations completed successfully")
		closeStore(st)
		return
	}
	if err := db.SeedAdmin(ctx, st, cfg.Auth.SeedAdminEmail, cfg.Auth.SeedAdminPassword); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	if *seedOnlyFlag {
		log.Println("Seeding completed successfully")
		closeStore(st)
		return
	}

	shutdownTracer, err := obs.InitTracer(ctx, cfg.Tracing, cfg.App.Env)
	if err != nil {
		log.Printf("[otel] tracing disabled: %v", err)
	}

	sink, closeSink := eventSink(cfg)
	dispatcher := notify.NewDispatcher(sink, cfg.Broker.QueueSize, cfg.Mail.SendTimeout)
	dispatcher.Start()

	uploader := newUploader(cfg.Media)

	app := NewApp(NewRouterConfig(cfg, st, dispatcher, uploader))
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server starting on port %s (env=%s, store=%s)", cfg.Server.Port, cfg.App.Env, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Printf("[notify] drain: %v (%d events lost)", err, dispatcher.Pending())
	}
	closeSink()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("[otel] shutdown: %v", err)
	}
	closeStore(st)
	log.Println("Server stopped gracefully")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.Driver == config.DriverMongo {
		s, err := mongostore.Open(ctx, cfg.Database.MongoURI, cfg.Database.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return s, nil
	}
	gdb, err := db.Open(cfg.Database, cfg.App.Migrations || *migrateOnlyFlag)
	if err != nil {
		return nil, err
	}
	return gormstore.New(gdb), nil
}

func closeStore(st store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		log.Printf("[db] close: %v", err)
	}
}

// eventSink publishes to RabbitMQ when configured, otherwise mails from
// this process.
func eventSink(cfg *config.Config) (notify.Sink, func()) {
	if cfg.Broker.URL != "" {
		pub, err := mq.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err == nil {
			log.Printf("[notify] publishing to exchange %s", cfg.Broker.Exchange)
			return pub, func() {
				if err := pub.Close(); err != nil {
					log.Printf("[notify] close publisher: %v", err)
				}
			}
		}
		log.Printf("[notify] rabbitmq unavailable, mailing in-process: %v", err)
	}
	mailer, err := notifier.NewMailer(context.Background(), cfg.Mail)
	if err != nil {
		log.Printf("[notify] mailer %s unavailable, using console: %v", cfg.Mail.Driver, err)
		mailer = notifier.NewConsole()
	}
	return notify.NewLocalSink(notifier.NewService(mailer)), func() {}
}

func newUploader(cfg config.MediaConfig) media.Uploader {
	if cfg.CloudinaryURL == "" {
		log.Println("[media] CLOUDINARY_URL not set, uploads disabled")
		return media.Disabled{}
	}
	c, err := media.NewCloudinary(cfg.CloudinaryURL)
	if err != nil {
		log.Printf("[media] cloudinary: %v, uploads disabled", err)
		return media.Disabled{}
	}
	return c
}
