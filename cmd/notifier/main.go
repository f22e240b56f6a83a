// Command notifier consumes job-board events from RabbitMQ and sends the
// notification emails.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/jobboard/internal/config"
	"github.com/diewo77/jobboard/internal/mq"
	"github.com/diewo77/jobboard/internal/notifier"
	"github.com/diewo77/jobboard/internal/worker"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Broker.URL == "" {
		log.Fatal("[worker] RABBIT_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer, err := notifier.NewMailer(ctx, cfg.Mail)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	wcfg := worker.Config{
		RabbitURL: cfg.Broker.URL,
		Topology: mq.Topology{
			Exchange: cfg.Broker.Exchange,
			Queue:    cfg.Broker.Queue,
			Bindings: cfg.Broker.Bindings,
			Prefetch: cfg.Broker.Prefetch,
			DLX:      cfg.Broker.DLX,
			DLQ:      cfg.Broker.DLQ,
		},
		ServiceName:   "jobboard-notifier",
		HandleTimeout: cfg.Mail.SendTimeout * 2,
	}
	cons := worker.NewConsumer(wcfg, notifier.NewService(mailer))

	for {
		if err := cons.Connect(); err != nil {
			log.Printf("[worker] connect failed: %v; retry in 2s", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}
		break
	}
	defer cons.Close()

	log.Printf("[worker] started. queue=%s exchange=%s bindings=%v",
		wcfg.Topology.Queue, wcfg.Topology.Exchange, wcfg.Topology.Bindings)
	if err := cons.Run(ctx); err != nil {
		log.Printf("[worker] run error: %v", err)
	}
	log.Println("[worker] stopped")
}
